package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/auth/controllers"
	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
)

func RegisterAuthRoutes(api *echo.Group, ac *controllers.AuthController, auth echo.MiddlewareFunc) {
	api.POST("/auth/login", ac.Login) // Tidak pakai JWT
	// RequireRole tanpa argumen: hanya admin
	api.POST("/auth/karyawan", ac.CreateKaryawan, auth, middlewares.RequireRole())
}
