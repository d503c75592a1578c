package service

import (
	"errors"
)

// Виды ошибок вызывающей стороны. Все они отдаются клиенту с кодом 400.
var (
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

const (
	msgBookNotFound      = "Libro no encontrado"
	msgBookExists        = "El libro ya se encuentra registrado"
	msgBookFieldsMissing = "Faltan campos obligatorios del libro"
	msgNegativePrice     = "El precio no puede ser negativo"
	msgNegativeStock     = "El stock no puede ser negativo"
	msgPriceTooHigh      = "El precio supera el maximo permitido"
	msgValueOutOfRange   = "Un valor numerico esta fuera de rango"
	msgAuthorMissing     = "El autor no existe"
	msgAuthorNameMissing = "El nombre y apellido del autor son obligatorios"
	msgAuthorExists      = "El autor ya se encuentra registrado"
	msgAuthorNotFound    = "El autor no se encuentra registrado"
	msgCategoryMissing   = "La categoria no existe"
	msgCategoriesMissing = "Al menos una de las categorias no existe"
	msgCategoryNameEmpty = "El nombre de la categoria es obligatorio"
	msgCategoryExists    = "La categoria ya existe"
	msgCategoryNotFound  = "Categoria no encontrada"
	msgImageMissing      = "No se encontro la imagen a actualizar"
)

// Error - ошибка вызывающей стороны. Message отдается клиенту как есть.
type Error struct {
	Kind    error
	Message string

	// запрос ссылается на сущность, которой нет
	reference bool
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Is: повтор ключа и ссылка на несуществующую сущность - тоже ошибки валидации
func (e *Error) Is(target error) bool {
	if target != ErrValidation {
		return false
	}
	return e.Kind == ErrAlreadyExists || e.reference
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func notFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

func alreadyExistsError(message string) error {
	return &Error{Kind: ErrAlreadyExists, Message: message}
}

func referenceNotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message, reference: true}
}

// IsCallerError сообщает, что ошибку вызвал запрос, а не сбой хранилища
func IsCallerError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// KindOf - метка вида ошибки для метрик
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "validation"
	}
}
