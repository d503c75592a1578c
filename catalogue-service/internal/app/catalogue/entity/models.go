package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordStatus - состояние записи в нормализованном хранилище.
// Удаленные записи остаются в таблице, но не попадают ни в одну выборку.
type RecordStatus string

const (
	StatusActive  RecordStatus = "active"
	StatusDeleted RecordStatus = "deleted"
)

// Record - общие колонки всех сущностей каталога
type Record struct {
	ID        int64        `json:"id" gorm:"primaryKey;autoIncrement"`
	Status    RecordStatus `json:"-" gorm:"type:varchar(16);not null;default:active"`
	CreatedAt time.Time    `json:"createdDate" gorm:"autoCreateTime"`
	UpdatedAt time.Time    `json:"lastUpdateDate" gorm:"autoUpdateTime"`
}

type Author struct {
	Record
	FirstName string `json:"firstName" gorm:"size:255;not null"`
	LastName  string `json:"lastName" gorm:"size:255;not null"`
}

type Category struct {
	Record
	Name string `json:"categoryName" gorm:"size:255;not null"`
}

// Image принадлежит ровно одной книге; при обновлении заменяется новой записью
type Image struct {
	Record
	URL string `json:"urlImage" gorm:"column:url_image;type:text;not null"`
}

// Book - агрегат каталога. Автор и категории разделяются между книгами,
// изображение принадлежит книге.
type Book struct {
	Record
	Title         string          `json:"title" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	ISBN          string          `json:"isbn" gorm:"column:isbn;size:64;not null"`
	PublishedDate time.Time       `json:"publishedDate"`
	Stock         int             `json:"stock" gorm:"not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Rating        *float64        `json:"rating"`
	Visibility    bool            `json:"visibility" gorm:"not null"`
	AuthorID      int64           `json:"-"`
	Author        Author          `json:"author" gorm:"foreignKey:AuthorID"`
	ImageID       *int64          `json:"-"`
	Image         *Image          `json:"image" gorm:"foreignKey:ImageID"`
	Categories    []Category      `json:"category" gorm:"many2many:book_categories;"`
}

// ImageURL возвращает адрес изображения или пустую строку
func (b *Book) ImageURL() string {
	if b.Image == nil {
		return ""
	}
	return b.Image.URL
}

// CategoryIDs - идентификаторы категорий книги в исходном порядке
func (b *Book) CategoryIDs() []int64 {
	ids := make([]int64, 0, len(b.Categories))
	for _, c := range b.Categories {
		ids = append(ids, c.ID)
	}
	return ids
}
