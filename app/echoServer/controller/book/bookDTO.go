package book

import "github.com/MANUEL666GAMER/Biblioteca/model"

// BookReq is accepted as JSON or as multipart/form-data with an optional
// "image" file part. A LOANED status is accepted so a fetched book can be
// sent back unchanged; it never overrides the stored status.
type BookReq struct {
	Title           string `json:"title" form:"title" validate:"required,max=255"`
	Author          string `json:"author" form:"author" validate:"required,max=255"`
	ISBN            string `json:"isbn" form:"isbn" validate:"omitempty,max=20"`
	Publisher       string `json:"publisher" form:"publisher" validate:"omitempty,max=255"`
	PublicationYear int    `json:"publication_year" form:"publication_year" validate:"omitempty,gte=1000,lte=9999"`
	CategoryID      int64  `json:"category_id" form:"category_id" validate:"required,gt=0"`
	Status          string `json:"status" form:"status" validate:"omitempty,oneof=AVAILABLE UNDER_REPAIR LOANED"`
}

func (r BookReq) toModel(id int64) *model.Book {
	return &model.Book{
		ID:              id,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		Publisher:       r.Publisher,
		PublicationYear: r.PublicationYear,
		CategoryID:      r.CategoryID,
		Status:          model.BookStatus(r.Status),
	}
}
