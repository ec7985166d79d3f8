package session

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// HeaderName carries the guest session id between the storefront and the service.
const HeaderName = "X-Cart-Session"

const tokenContextKey = "user"

type CustomerClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWT validates a bearer token when one is sent. Requests without a token pass
// through as guests; a bad token is rejected.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(CustomerClaims)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, echojwt.ErrJWTMissing) {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired jwt")
		},
	})
}

// ID returns the cart session of the request: "customer:<subject>" for a
// signed-in customer, otherwise "guest:<uuid>" from the session header. A guest
// without a valid header gets a fresh id. The guest id is always echoed in the
// response header.
func ID(c echo.Context) string {
	if token, ok := c.Get(tokenContextKey).(*jwt.Token); ok && token.Valid {
		if claims, ok := token.Claims.(*CustomerClaims); ok {
			if claims.Subject != "" {
				return "customer:" + claims.Subject
			}
			if claims.Email != "" {
				return "customer:" + claims.Email
			}
		}
	}

	id, err := uuid.Parse(c.Request().Header.Get(HeaderName))
	if err != nil {
		id = uuid.New()
	}
	c.Response().Header().Set(HeaderName, id.String())
	return "guest:" + id.String()
}
