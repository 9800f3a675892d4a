package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
	"github.com/c14220110/apotek-antrian-backend/internal/antrian/services"
	resepservices "github.com/c14220110/apotek-antrian-backend/internal/resep/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

// QueueService operasi antrian yang dipakai controller.
type QueueService interface {
	ListQueue(ctx context.Context) ([]models.QueueEntry, error)
	AddToQueue(ctx context.Context, req models.AddQueueRequest) (models.QueueEntry, error)
	MarkReady(ctx context.Context, id string) (models.QueueEntry, error)
	MarkReadyByPrescription(ctx context.Context, prescriptionID string) (models.QueueEntry, error)
	ConfirmPickup(ctx context.Context, id string) (models.QueueEntry, error)
	Remove(ctx context.Context, id string) error
	Display() models.DisplayBoard
}

type AntrianController struct {
	Service QueueService
}

func NewAntrianController(s QueueService) *AntrianController {
	return &AntrianController{Service: s}
}

// GET /api/queue
func (ac *AntrianController) ListQueue(c echo.Context) error {
	entries, err := ac.Service.ListQueue(c.Request().Context())
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil antrian: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Antrian berhasil diambil", entries)
}

// POST /api/queue
func (ac *AntrianController) AddToQueue(c echo.Context) error {
	var req models.AddQueueRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	req.PatientID = strings.TrimSpace(req.PatientID)
	req.PrescriptionID = strings.ToUpper(strings.TrimSpace(req.PrescriptionID))
	if err := req.Validate(); err != nil {
		return utils.JSON(c, http.StatusBadRequest, err.Error(), nil)
	}

	entry, err := ac.Service.AddToQueue(c.Request().Context(), req)
	if err != nil {
		return queueError(c, err)
	}
	return utils.JSON(c, http.StatusCreated, "Pasien berhasil masuk antrian apotek", entry)
}

// GET /api/queue/display
func (ac *AntrianController) Display(c echo.Context) error {
	return utils.JSON(c, http.StatusOK, "Display antrian", ac.Service.Display())
}

// POST /api/queue/:id/ready
func (ac *AntrianController) MarkReady(c echo.Context) error {
	entry, err := ac.Service.MarkReady(c.Request().Context(), c.Param("id"))
	if err != nil {
		return queueError(c, err)
	}
	return utils.JSON(c, http.StatusOK, "Obat siap diambil", entry)
}

// POST /api/queue/:id/complete
func (ac *AntrianController) ConfirmPickup(c echo.Context) error {
	entry, err := ac.Service.ConfirmPickup(c.Request().Context(), c.Param("id"))
	if err != nil {
		return queueError(c, err)
	}
	return utils.JSON(c, http.StatusOK, "Obat sudah diambil pasien", entry)
}

// DELETE /api/queue/:id
func (ac *AntrianController) Remove(c echo.Context) error {
	if err := ac.Service.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return queueError(c, err)
	}
	return utils.JSON(c, http.StatusOK, "Antrian dihapus", nil)
}

// POST /api/pharmacists/complete
func (ac *AntrianController) CompleteByPrescription(c echo.Context) error {
	var req models.CompleteRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if strings.TrimSpace(req.PrescriptionID) == "" {
		return utils.JSON(c, http.StatusBadRequest, "prescriptionId is required", nil)
	}

	entry, err := ac.Service.MarkReadyByPrescription(c.Request().Context(), strings.TrimSpace(req.PrescriptionID))
	if err != nil {
		return queueError(c, err)
	}
	return utils.JSON(c, http.StatusOK, "Resep selesai disiapkan", entry)
}

func queueError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, services.ErrEntryNotFound):
		return utils.JSON(c, http.StatusNotFound, "Antrian tidak ditemukan", nil)
	case errors.Is(err, resepservices.ErrPrescriptionNotFound):
		return utils.JSON(c, http.StatusNotFound, "Resep tidak ditemukan", nil)
	case errors.Is(err, resepservices.ErrPatientMismatch):
		return utils.JSON(c, http.StatusBadRequest, "Resep bukan milik pasien ini", nil)
	case errors.Is(err, services.ErrAlreadyQueued):
		return utils.JSON(c, http.StatusConflict, "Resep sudah ada di antrian", nil)
	case errors.Is(err, services.ErrStaleCompletion):
		return utils.JSON(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, services.ErrInvalidSeverity):
		return utils.JSON(c, http.StatusUnprocessableEntity, err.Error(), nil)
	default:
		return utils.JSON(c, http.StatusInternalServerError, "Internal server error: "+err.Error(), nil)
	}
}
