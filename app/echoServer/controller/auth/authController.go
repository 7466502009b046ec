package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/jwtx"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/response"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	authsvc "github.com/MANUEL666GAMER/Biblioteca/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Login
// @Summary      Login
// @Description  Login with email + password, returns JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  model.LoginReq  true  "Login payload"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      401  {object}  map[string]any
// @Failure      500  {object}  map[string]any
// @Router       /api/auth/login [post]
func (ct *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, ct.Log, err)
	}
	if err := ct.V.Struct(req); err != nil {
		return response.Validation(c, ct.Log, err)
	}

	l, token, err := ct.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, ct.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":     token,
		"librarian": l,
	})
}

// Register another librarian account
// @Summary      Register librarian
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body  model.RegisterReq  true  "Register payload"
// @Success      201  {object}  model.Librarian
// @Failure      400  {object}  map[string]any
// @Failure      409  {object}  map[string]any "email already registered"
// @Router       /api/auth/register [post]
func (ct *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return response.BadBody(c, ct.Log, err)
	}
	if err := ct.V.Struct(req); err != nil {
		return response.Validation(c, ct.Log, err)
	}

	l, err := ct.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return response.Error(c, ct.Log, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// Me
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  jwtx.Identity
// @Failure      401  {object}  map[string]any
// @Router       /api/auth/me [get]
func (ct *Controller) Me(c echo.Context) error {
	id, err := jwtx.IdentityFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	return c.JSON(http.StatusOK, id)
}
