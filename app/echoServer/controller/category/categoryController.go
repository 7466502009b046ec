package category

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/response"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	categorysvc "github.com/MANUEL666GAMER/Biblioteca/service/category"
)

type CategoryReq struct {
	Name string `json:"name" validate:"required,max=100"`
}

type Controller struct {
	Svc categorysvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /api/categorias
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/categorias/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	row, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// POST /api/categorias
func (h *Controller) Create(c echo.Context) error {
	var req CategoryReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := &model.Category{Name: req.Name}
	if err := h.Svc.Create(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// PUT /api/categorias/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	var req CategoryReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := &model.Category{ID: id, Name: req.Name}
	if err := h.Svc.Update(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /api/categorias/:id
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
