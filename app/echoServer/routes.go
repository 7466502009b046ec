package echoServer

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/auth"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/book"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/category"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/loan"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/controller/user"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/jwtx"
	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Category  *category.Controller
	User      *user.Controller
	Loan      *loan.Controller
	JWTSecret string
}

// AuthGate verifies the bearer token. A request without credentials gets
// 401; a request whose token does not verify gets 403.
func AuthGate(secret string) []echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization,
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return jwtutil.Parse(raw, secret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" || errors.Is(err, jwtutil.ErrMissingToken) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		},
	})

	identity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get("user").(*jwtutil.Claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if err := jwtx.Set(c, claims); err != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
	return []echo.MiddlewareFunc{verify, identity}
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api")
	pub.POST("/auth/login", c.Auth.Login)

	// Everything else requires a librarian token
	api := e.Group("/api", AuthGate(c.JWTSecret)...)

	api.POST("/auth/register", c.Auth.Register)
	api.GET("/auth/me", c.Auth.Me)

	api.GET("/libros", c.Book.List)
	api.GET("/libros/:id", c.Book.Detail)
	api.POST("/libros", c.Book.Create)
	api.PUT("/libros/:id", c.Book.Update)
	api.DELETE("/libros/:id", c.Book.Delete)

	api.GET("/categorias", c.Category.List)
	api.GET("/categorias/:id", c.Category.Get)
	api.POST("/categorias", c.Category.Create)
	api.PUT("/categorias/:id", c.Category.Update)
	api.DELETE("/categorias/:id", c.Category.Delete)

	api.GET("/usuarios", c.User.List)
	api.GET("/usuarios/:id", c.User.Get)
	api.POST("/usuarios", c.User.Create)
	api.PUT("/usuarios/:id", c.User.Update)
	api.DELETE("/usuarios/:id", c.User.Delete)

	// static segments are matched before :id
	api.GET("/prestamos", c.Loan.List)
	api.GET("/prestamos/actividad", c.Loan.Activity)
	api.POST("/prestamos/vencidos", c.Loan.MarkOverdue)
	api.GET("/prestamos/:id", c.Loan.Get)
	api.POST("/prestamos", c.Loan.Create)
	api.PUT("/prestamos/:id", c.Loan.Update)
	api.POST("/prestamos/:id/devolucion", c.Loan.Return)
	api.DELETE("/prestamos/:id", c.Loan.Delete)
}
