package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/jwtx"
	"github.com/MANUEL666GAMER/Biblioteca/app/echoServer/validation"
	"github.com/MANUEL666GAMER/Biblioteca/model"
	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

type svcMock struct {
	registerFn func(ctx context.Context, req model.RegisterReq) (*model.Librarian, error)
	loginFn    func(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error)
}

func (m *svcMock) Register(ctx context.Context, req model.RegisterReq) (*model.Librarian, error) {
	return m.registerFn(ctx, req)
}
func (m *svcMock) Login(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error) {
	return m.loginFn(ctx, req)
}

func do(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func TestLogin(t *testing.T) {
	ct := &Controller{
		V: validation.NewEngine(),
		Svc: &svcMock{loginFn: func(ctx context.Context, req model.LoginReq) (*model.Librarian, string, error) {
			if req.Password != "secreto" {
				return nil, "", apperr.New(apperr.ErrInvalidCreds, "invalid email or password")
			}
			return &model.Librarian{ID: 1, Email: req.Email}, "tok", nil
		}},
	}

	rec := do(ct.Login, `{"email":"ana@biblioteca.test","password":"secreto"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"token":"tok"`)

	rec = do(ct.Login, `{"email":"ana@biblioteca.test","password":"otro"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid email or password")

	rec = do(ct.Login, `{"email":"ana@biblioteca.test"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), `"password":"required"`)

	rec = do(ct.Login, `{"email":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_Conflict(t *testing.T) {
	ct := &Controller{
		V: validation.NewEngine(),
		Svc: &svcMock{registerFn: func(ctx context.Context, req model.RegisterReq) (*model.Librarian, error) {
			return nil, apperr.New(apperr.ErrEmailTaken, "email already registered")
		}},
	}
	rec := do(ct.Register, `{"name":"Ana","email":"ana@biblioteca.test","password":"secreto"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "email already registered")
}

func TestMe(t *testing.T) {
	ct := &Controller{}
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	tok, err := jwtutil.Issue("k", 3, "ana@biblioteca.test", time.Hour)
	require.NoError(t, err)
	claims, err := jwtutil.Parse(tok, "k")
	require.NoError(t, err)
	require.NoError(t, jwtx.Set(c, claims))

	require.NoError(t, ct.Me(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"id":3,"email":"ana@biblioteca.test"}`, rec.Body.String())
}
