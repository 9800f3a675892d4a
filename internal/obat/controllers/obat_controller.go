package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/obat/models"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type StockService interface {
	UpdateStock(ctx context.Context, name string, needed int) (int, error)
	CheckStock(ctx context.Context) ([]models.Obat, error)
	GetUsage(ctx context.Context) ([]models.Usage, error)
	GetStock(ctx context.Context) ([]models.StockLevel, error)
}

type ObatController struct {
	Service StockService
}

func NewObatController(s StockService) *ObatController {
	return &ObatController{Service: s}
}

// POST /api/medicines/update-stock
func (oc *ObatController) UpdateStock(c echo.Context) error {
	var req models.UpdateStockRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	req.MedicineName = strings.TrimSpace(req.MedicineName)
	if err := req.Validate(); err != nil {
		return utils.JSON(c, http.StatusBadRequest, err.Error(), nil)
	}

	remaining, err := oc.Service.UpdateStock(c.Request().Context(), req.MedicineName, req.NeededQuantity)
	switch {
	case err == nil:
		return utils.JSON(c, http.StatusOK, "Stock updated successfully", models.UpdateStockResponse{UpdatedStockQuantity: remaining})
	case errors.Is(err, services.ErrMedicineNotFound):
		return utils.JSON(c, http.StatusNotFound, "Obat tidak ditemukan", nil)
	case errors.Is(err, services.ErrInsufficientStock):
		return utils.JSON(c, http.StatusConflict, err.Error(), models.UpdateStockResponse{UpdatedStockQuantity: remaining})
	default:
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengupdate stok: "+err.Error(), nil)
	}
}

// GET /api/medicines/check-stock
func (oc *ObatController) CheckStock(c echo.Context) error {
	list, err := oc.Service.CheckStock(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal memeriksa stok: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Obat dengan stok menipis", list)
}

// GET /api/medicines/used
func (oc *ObatController) GetUsage(c echo.Context) error {
	list, err := oc.Service.GetUsage(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil pemakaian obat: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Pemakaian obat", list)
}

// GET /api/medicines/stock
func (oc *ObatController) GetStock(c echo.Context) error {
	list, err := oc.Service.GetStock(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil stok: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Stok obat", list)
}
