package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// Definisikan tipe kustom untuk context key
type contextKey string

const (
	ContextKeyClaims contextKey = "claims"
)

// TokenValidator dipenuhi oleh *utils.TokenIssuer.
type TokenValidator interface {
	Validate(token string) (*utils.Claims, error)
}

// JWTMiddleware memvalidasi header Authorization: Bearer <token> dan menyimpan
// claims ke echo context.
func JWTMiddleware(v TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return utils.JSON(c, http.StatusUnauthorized, "Authorization header missing", nil)
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
				return utils.JSON(c, http.StatusUnauthorized, "Invalid authorization header", nil)
			}

			claims, err := v.Validate(parts[1])
			if err != nil {
				return utils.JSON(c, http.StatusUnauthorized, "Invalid token: "+err.Error(), nil)
			}

			c.Set(string(ContextKeyClaims), claims)
			return next(c)
		}
	}
}

// ClaimsFrom mengambil claims yang disimpan JWTMiddleware.
func ClaimsFrom(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(string(ContextKeyClaims)).(*utils.Claims)
	return claims, ok && claims != nil
}
