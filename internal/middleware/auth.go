package middleware

import (
	"github.com/alimikegami/fashion-store/cart-service/pkg/errs"
	"github.com/alimikegami/fashion-store/cart-service/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func jwtConfig(secret string, lookup string) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:  []byte(secret),
		TokenLookup: lookup,
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			return response.WriteErrorResponse(c, errs.ErrNotLoggedIn, nil)
		},
	}
}

// IsLoggedIn validates the bearer token in the Authorization header, echo's
// default lookup.
func IsLoggedIn(secret string) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(jwtConfig(secret, ""))
}

// IsLoggedInQuery validates a token passed as ?token=, for websocket handshakes.
func IsLoggedInQuery(secret string) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(jwtConfig(secret, "query:token"))
}
