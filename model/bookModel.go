// model/book.go
package model

import "time"

type BookStatus string

const (
	BookAvailable   BookStatus = "AVAILABLE"
	BookLoaned      BookStatus = "LOANED"
	BookUnderRepair BookStatus = "UNDER_REPAIR"
)

// Storable reports whether s may be written to books.status. LOANED is
// derived from open loans on read and never stored.
func (s BookStatus) Storable() bool {
	return s == BookAvailable || s == BookUnderRepair
}

type Book struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn"`
	Publisher       string     `json:"publisher"`
	PublicationYear int        `json:"publication_year"`
	CategoryID      int64      `json:"category_id"`
	Status          BookStatus `json:"status"`
	ImagePath       *string    `json:"image_path,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type BookFilter struct {
	CategoryID int64
}
