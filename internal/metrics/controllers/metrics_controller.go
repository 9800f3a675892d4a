package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/metrics/models"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type Reporter interface {
	System(ctx context.Context) (models.SystemMetrics, error)
	Prescriptions(ctx context.Context) (models.PrescriptionMetrics, error)
}

type MetricsController struct {
	Service Reporter
}

func NewMetricsController(s Reporter) *MetricsController {
	return &MetricsController{Service: s}
}

// GET /api/metrics/system
func (mc *MetricsController) System(c echo.Context) error {
	m, err := mc.Service.System(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil metrics: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "System metrics", m)
}

// GET /api/metrics/prescriptions
func (mc *MetricsController) Prescriptions(c echo.Context) error {
	m, err := mc.Service.Prescriptions(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil metrics resep: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Prescription metrics", m)
}
