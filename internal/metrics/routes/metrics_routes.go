package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/metrics/controllers"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// Dashboard: apoteker dan admin.
func RegisterMetricsRoutes(api *echo.Group, mc *controllers.MetricsController, auth echo.MiddlewareFunc) {
	metrics := api.Group("/metrics", auth, middlewares.RequireRole(utils.RolePharmacist))
	metrics.GET("/system", mc.System)
	metrics.GET("/prescriptions", mc.Prescriptions)
}
