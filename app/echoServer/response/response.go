// Package response turns service results into the JSON envelopes every
// controller shares.
package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

// ParseID reads the :id path param. ok is false after a 400 was written.
func ParseID(c echo.Context) (int64, bool, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false, c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	return id, true, nil
}

func BadBody(c echo.Context, log *slog.Logger, err error) error {
	if log != nil {
		log.Warn("bind failed", "path", c.Path(), "err", err)
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
}

// Validation reports struct tag failures. A missing required field wins
// over any other rule so clients can tell the two apart.
func Validation(c echo.Context, log *slog.Logger, err error) error {
	if log != nil {
		log.Warn("validation failed", "path", c.Path(), "err", err)
	}
	fields := echo.Map{}
	missing := false
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
			if fe.Tag() == "required" {
				missing = true
			}
		}
	}
	msg := "validation error"
	if missing {
		msg = "missing field"
	}
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msg, "errors": fields})
}

// Error maps a service error to its HTTP status. Unknown errors are logged
// and hidden behind a 500.
func Error(c echo.Context, log *slog.Logger, err error) error {
	switch apperr.Code(err) {
	case apperr.ErrMissingField:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing field"})
	case apperr.ErrValidation, apperr.ErrInvalidDateRange, apperr.ErrBookUnavailable, apperr.ErrInvalidImage:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case apperr.ErrInvalidCreds:
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	case apperr.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case apperr.ErrBookNotFound, apperr.ErrUserNotFound, apperr.ErrCategoryNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case apperr.ErrInUse:
		return c.JSON(http.StatusConflict, echo.Map{"message": "in use"})
	case apperr.ErrConflict, apperr.ErrEmailTaken, apperr.ErrLoanNotOpen:
		return c.JSON(http.StatusConflict, echo.Map{"message": err.Error()})
	}

	if log != nil {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		log.Error("request failed",
			"err", err,
			"req_id", rid,
			"path", c.Path(),
			"method", c.Request().Method,
		)
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}
