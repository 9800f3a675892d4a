package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/controllers"
	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// RegisterAntrianRoutes menghubungkan endpoint antrian apotek.
// Snapshot, display dan submit dari kiosk pasien tidak pakai JWT.
func RegisterAntrianRoutes(api *echo.Group, ac *controllers.AntrianController, auth echo.MiddlewareFunc) {
	pharmacist := []echo.MiddlewareFunc{auth, middlewares.RequireRole(utils.RolePharmacist)}

	queue := api.Group("/queue")
	queue.GET("", ac.ListQueue)
	queue.POST("", ac.AddToQueue)
	queue.GET("/display", ac.Display)
	queue.POST("/:id/ready", ac.MarkReady, pharmacist...)
	queue.POST("/:id/complete", ac.ConfirmPickup, pharmacist...)
	queue.DELETE("/:id", ac.Remove, pharmacist...)

	api.POST("/pharmacists/complete", ac.CompleteByPrescription, pharmacist...)
}
