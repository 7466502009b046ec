package user

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/validation"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

type svcMock struct {
	createFn func(ctx context.Context, u *model.User) error
	updateFn func(ctx context.Context, u *model.User) error
	deleteFn func(ctx context.Context, id int64) error
}

func (m *svcMock) List(ctx context.Context) ([]model.User, error)         { return []model.User{}, nil }
func (m *svcMock) Get(ctx context.Context, id int64) (*model.User, error) { return &model.User{ID: id}, nil }
func (m *svcMock) Create(ctx context.Context, u *model.User) error        { return m.createFn(ctx, u) }
func (m *svcMock) Update(ctx context.Context, u *model.User) error        { return m.updateFn(ctx, u) }
func (m *svcMock) Delete(ctx context.Context, id int64) error             { return m.deleteFn(ctx, id) }

func serve(h echo.HandlerFunc, method, body, id string) (int, string) {
	e := echo.New()
	req := httptest.NewRequest(method, "/api/usuarios", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != "" {
		c.SetParamNames("id")
		c.SetParamValues(id)
	}
	_ = h(c)
	return rec.Code, rec.Body.String()
}

func newController(m *svcMock) *Controller {
	return &Controller{Svc: m, V: validation.NewEngine(), Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestCreate(t *testing.T) {
	m := &svcMock{createFn: func(ctx context.Context, u *model.User) error {
		if u.Email == "dup@correo.mx" {
			return apperr.New(apperr.ErrEmailTaken, "email already registered")
		}
		u.ID = 5
		return nil
	}}
	h := newController(m)

	code, body := serve(h.Create, http.MethodPost, `{"first_name":"Ana","last_name":"Pérez","email":"ana@correo.mx"}`, "")
	require.Equal(t, http.StatusCreated, code)
	require.Contains(t, body, `"id":5`)

	code, body = serve(h.Create, http.MethodPost, `{"first_name":"Ana","last_name":"Pérez","email":"dup@correo.mx"}`, "")
	require.Equal(t, http.StatusConflict, code)
	require.Contains(t, body, "email already registered")

	code, body = serve(h.Create, http.MethodPost, `{"first_name":"Ana","email":"ana@correo.mx"}`, "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, `"last_name":"required"`)

	code, body = serve(h.Create, http.MethodPost, `{"first_name":"Ana","last_name":"P","email":"no-es-correo"}`, "")
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, body, "validation error")
}

func TestUpdateAndDelete(t *testing.T) {
	m := &svcMock{
		updateFn: func(ctx context.Context, u *model.User) error {
			require.Equal(t, int64(8), u.ID)
			return nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			return apperr.New(apperr.ErrInUse, "user has loans")
		},
	}
	h := newController(m)

	code, _ := serve(h.Update, http.MethodPut, `{"first_name":"Ana","last_name":"P","email":"ana@correo.mx"}`, "8")
	require.Equal(t, http.StatusOK, code)

	code, body := serve(h.Delete, http.MethodDelete, "", "8")
	require.Equal(t, http.StatusConflict, code)
	require.JSONEq(t, `{"message":"in use"}`, body)
}
