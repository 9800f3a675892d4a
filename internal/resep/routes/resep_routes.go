package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/controllers"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

func RegisterResepRoutes(api *echo.Group, rc *controllers.ResepController, auth echo.MiddlewareFunc) {
	resep := api.Group("/prescriptions", auth)
	resep.POST("", rc.CreateResepHandler, middlewares.RequireRole(utils.RoleDoctor))
	resep.GET("/:id", rc.GetResepHandler)
	resep.POST("/notify", rc.NotifyHandler, middlewares.RequireRole(utils.RoleDoctor))
}
