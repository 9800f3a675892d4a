package middlewares

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// RequireRole hanya meneruskan request kalau role di JWT termasuk salah satu role
// yang diizinkan. Admin selalu lolos. Harus dipasang setelah JWTMiddleware.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok {
				return utils.JSON(c, http.StatusUnauthorized, "Missing or invalid JWT claims", nil)
			}
			if claims.Role != utils.RoleAdmin && !slices.Contains(roles, claims.Role) {
				return utils.JSON(c, http.StatusForbidden, "Anda tidak memiliki hak akses", nil)
			}
			return next(c)
		}
	}
}
