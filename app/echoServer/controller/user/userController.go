package user

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/response"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	usersvc "github.com/MANUEL666GAMER/Biblioteca/service/user"
)

type UserReq struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=30"`
	Address   string `json:"address" validate:"omitempty,max=255"`
}

func (r UserReq) toModel(id int64) *model.User {
	return &model.User{
		ID:        id,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
	}
}

// Controller serves library patrons.
type Controller struct {
	Svc usersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// List users
// @Summary  List patrons
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200  {object}  map[string]any
// @Router   /api/usuarios [get]
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /api/usuarios/:id
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

// POST /api/usuarios
func (h *Controller) Create(c echo.Context) error {
	var req UserReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := req.toModel(0)
	if err := h.Svc.Create(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, row)
}

// PUT /api/usuarios/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok, err := response.ParseID(c)
	if !ok {
		return err
	}
	var req UserReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, h.Log, err)
	}
	if err := h.V.Struct(req); err != nil {
		return response.Validation(c, h.Log, err)
	}
	row := req.toModel(id)
	if err := h.Svc.Update(c.Request().Context(), row); err != nil {
		return response.Error(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, row)
}

// DELETE /api/usuarios/:id
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
