package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/validation"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

func run(t *testing.T, fn func(c echo.Context) error) (int, map[string]any) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, fn(c))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestError_Mapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.New(apperr.ErrMissingField, "x"), 400, "missing field"},
		{apperr.New(apperr.ErrInvalidDateRange, "invalid date range"), 400, "invalid date range"},
		{apperr.New(apperr.ErrBookUnavailable, "book unavailable"), 400, "book unavailable"},
		{apperr.New(apperr.ErrInvalidCreds), 401, "invalid email or password"},
		{apperr.New(apperr.ErrNotFound, "loan not found"), 404, "not found"},
		{apperr.New(apperr.ErrCategoryNotFound, "category not found"), 404, "category not found"},
		{apperr.New(apperr.ErrInUse, "book has loans"), 409, "in use"},
		{apperr.New(apperr.ErrLoanNotOpen, "loan not open"), 409, "loan not open"},
		{errors.New("pq: connection refused"), 500, "internal error"},
	}
	for _, tc := range cases {
		status, body := run(t, func(c echo.Context) error { return Error(c, nil, tc.err) })
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.msg, body["message"])
	}
}

type payload struct {
	Title string `json:"title" validate:"required"`
	Year  int    `json:"publication_year" validate:"omitempty,gte=1000"`
}

func TestValidation_MissingWinsOverOtherRules(t *testing.T) {
	v := validation.NewEngine()

	status, body := run(t, func(c echo.Context) error {
		return Validation(c, nil, v.Struct(payload{Year: 5}))
	})
	require.Equal(t, 400, status)
	require.Equal(t, "missing field", body["message"])
	require.Equal(t, map[string]any{"title": "required", "publication_year": "gte"}, body["errors"])

	_, body = run(t, func(c echo.Context) error {
		return Validation(c, nil, v.Struct(payload{Title: "t", Year: 5}))
	})
	require.Equal(t, "validation error", body["message"])
}

func TestParseID(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.SetParamNames("id")
		c.SetParamValues(raw)

		_, ok, err := ParseID(c)
		require.NoError(t, err)
		require.False(t, ok)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}
