package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/controllers"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// RegisterObatRoutes semua endpoint stok obat khusus apoteker.
func RegisterObatRoutes(api *echo.Group, oc *controllers.ObatController, auth echo.MiddlewareFunc) {
	obat := api.Group("/medicines", auth, middlewares.RequireRole(utils.RolePharmacist))
	obat.POST("/update-stock", oc.UpdateStock)
	obat.GET("/check-stock", oc.CheckStock)
	obat.GET("/used", oc.GetUsage)
	obat.GET("/stock", oc.GetStock)
}
