package entity

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errInvalidReference = errors.New("reference must be an id or an object")

// AuthorRef - ссылка на автора в запросе книги.
// Нормализованное хранилище ожидает id (число), денормализованное - имя и фамилию:
//
//	"author": 10
//	"author": {"name": "Nicolas", "lastName": "Valencia"}
type AuthorRef struct {
	ID       *int64
	Name     string
	LastName string
}

func AuthorByID(id int64) AuthorRef {
	return AuthorRef{ID: &id}
}

func (r *AuthorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = AuthorRef{}
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*r = AuthorByID(id)
		return nil
	}

	var obj struct {
		ID        *int64 `json:"id"`
		Name      string `json:"name"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errInvalidReference
	}

	name := obj.Name
	if name == "" {
		name = obj.FirstName
	}
	*r = AuthorRef{ID: obj.ID, Name: name, LastName: obj.LastName}
	return nil
}

func (r AuthorRef) MarshalJSON() ([]byte, error) {
	if r.ID != nil && r.Name == "" && r.LastName == "" {
		return json.Marshal(*r.ID)
	}
	return json.Marshal(struct {
		ID       *int64 `json:"id,omitempty"`
		Name     string `json:"name"`
		LastName string `json:"lastName"`
	}{r.ID, r.Name, r.LastName})
}

// CategoryRef - ссылка на категорию: id либо {"categoryName": "..."}
type CategoryRef struct {
	ID   *int64
	Name string
}

func CategoryByID(id int64) CategoryRef {
	return CategoryRef{ID: &id}
}

// CategoryRefs строит список ссылок по идентификаторам
func CategoryRefs(ids ...int64) []CategoryRef {
	refs := make([]CategoryRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, CategoryByID(id))
	}
	return refs
}

func (r *CategoryRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = CategoryRef{}
		return nil
	}

	var id int64
	if err := json.Unmarshal(data, &id); err == nil {
		*r = CategoryByID(id)
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*r = CategoryRef{Name: name}
		return nil
	}

	var obj struct {
		ID           *int64 `json:"id"`
		Name         string `json:"name"`
		CategoryName string `json:"categoryName"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errInvalidReference
	}

	name = obj.CategoryName
	if name == "" {
		name = obj.Name
	}
	*r = CategoryRef{ID: obj.ID, Name: name}
	return nil
}

func (r CategoryRef) MarshalJSON() ([]byte, error) {
	if r.ID != nil && r.Name == "" {
		return json.Marshal(*r.ID)
	}
	return json.Marshal(struct {
		ID           *int64 `json:"id,omitempty"`
		CategoryName string `json:"categoryName"`
	}{r.ID, r.Name})
}
