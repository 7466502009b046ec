package book

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/response"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	booksvc "github.com/MANUEL666GAMER/Biblioteca/service/book"
)

type Controller struct {
	Svc booksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// imageFrom returns the optional cover upload of a multipart request.
func imageFrom(c echo.Context) (*multipart.FileHeader, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	return fh, err
}

func (h *Controller) bindBook(c echo.Context) (*BookReq, *multipart.FileHeader, error) {
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return nil, nil, response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return nil, nil, response.Validation(c, h.Log, err)
	}
	img, err := imageFrom(c)
	if err != nil {
		if h.Log != nil {
			h.Log.Warn("image part unreadable", "path", c.Path(), "err", err)
		}
		return nil, nil, c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid image"})
	}
	return &req, img, nil
}

// List books
// @Summary      List books
// @Description  Status is LOANED while the book has an open loan
// @Tags         books
// @Produce      json
// @Security     BearerAuth
// @Param        category_id  query  int  false  "filter by category"
// @Success      200  {object}  map[string]any
// @Router       /api/libros [get]
func (h *Controller) List(c echo.Context) error {
	var f model.BookFilter
	if raw := c.QueryParam("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
		}
		f.CategoryID = id
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/libros/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// Create book
// @Summary      Create book
// @Tags         books
// @Accept       json,mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      BookReq  true   "Book"
// @Param        image    formData  file     false  "cover (jpg, jpeg, png)"
// @Success      201  {object}  model.Book
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any "category not found"
// @Router       /api/libros [post]
func (h *Controller) Create(c echo.Context) error {
	req, img, err := h.bindBook(c)
	if req == nil {
		return err
	}
	row := req.toModel(0)
	if err := h.Svc.Create(c.Request().Context(), row, img); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// PUT /api/libros/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	req, img, err := h.bindBook(c)
	if req == nil {
		return err
	}
	row := req.toModel(id)
	if err := h.Svc.Update(c.Request().Context(), row, img); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /api/libros/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}
