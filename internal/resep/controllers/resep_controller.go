package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/models"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type PrescriptionService interface {
	Create(ctx context.Context, doctorID string, req models.CreateResepRequest) (*models.Resep, error)
	Get(ctx context.Context, prescriptionID string) (*models.Resep, error)
	Notify(ctx context.Context, req models.NotifyRequest) error
}

type ResepController struct{ Service PrescriptionService }

func NewResepController(s PrescriptionService) *ResepController {
	return &ResepController{Service: s}
}

// POST /api/prescriptions
func (rc *ResepController) CreateResepHandler(c echo.Context) error {
	var req models.CreateResepRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}

	// --- ambil id_karyawan (dokter) dari JWT ---
	claims, ok := middlewares.ClaimsFrom(c)
	if !ok {
		return utils.JSON(c, http.StatusUnauthorized, "Invalid or missing token claims", nil)
	}

	if err := req.Validate(); err != nil {
		return utils.JSON(c, http.StatusBadRequest, err.Error(), nil)
	}

	resep, err := rc.Service.Create(c.Request().Context(), claims.IDKaryawan, req)
	if err != nil {
		return utils.JSON(c, http.StatusInternalServerError, "Gagal membuat resep: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusCreated, "Prescription created successfully", models.CreateResepResponse{
		ID:                 resep.PrescriptionID,
		PrescriptionNumber: resep.PrescriptionID,
	})
}

// GET /api/prescriptions/:id
func (rc *ResepController) GetResepHandler(c echo.Context) error {
	resep, err := rc.Service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrPrescriptionNotFound) {
			return utils.JSON(c, http.StatusNotFound, "Resep tidak ditemukan", nil)
		}
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengambil resep: "+err.Error(), nil)
	}
	return utils.JSON(c, http.StatusOK, "Resep berhasil diambil", resep)
}

// POST /api/prescriptions/notify
func (rc *ResepController) NotifyHandler(c echo.Context) error {
	var req models.NotifyRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	if req.PatientID == "" || req.PrescriptionNumber == "" {
		return utils.JSON(c, http.StatusBadRequest, "patientId and prescriptionNumber are required", nil)
	}

	switch err := rc.Service.Notify(c.Request().Context(), req); {
	case err == nil:
		return utils.JSON(c, http.StatusOK, "Notification sent", nil)
	case errors.Is(err, services.ErrPrescriptionNotFound):
		return utils.JSON(c, http.StatusNotFound, "Resep tidak ditemukan", nil)
	case errors.Is(err, services.ErrPatientMismatch):
		return utils.JSON(c, http.StatusBadRequest, "Resep bukan milik pasien ini", nil)
	default:
		return utils.JSON(c, http.StatusInternalServerError, "Gagal mengirim notifikasi: "+err.Error(), nil)
	}
}
