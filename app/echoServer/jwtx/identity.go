// Package jwtx moves the verified token identity between echo and the
// request context.
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"

	jwtutil "github.com/MANUEL666GAMER/Biblioteca/util/jwt"
)

const identityKey = "identity"

var ErrNoIdentity = errors.New("no identity in context")

// Identity is the librarian a request acts for.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Set stores the claims on c and on the request context so services can
// read the actor without importing echo.
func Set(c echo.Context, claims *jwtutil.Claims) error {
	id, err := claims.LibrarianID()
	if err != nil {
		return err
	}
	c.Set(identityKey, Identity{ID: id, Email: claims.Email})
	c.SetRequest(c.Request().WithContext(jwtutil.NewContext(c.Request().Context(), claims)))
	return nil
}

func IdentityFromContext(c echo.Context) (Identity, error) {
	id, ok := c.Get(identityKey).(Identity)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
