package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/apotek-antrian-backend/internal/auth/models"
	"github.com/c14220110/apotek-antrian-backend/internal/auth/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type Authenticator interface {
	Login(ctx context.Context, id, password string) (*models.LoginResponse, error)
	CreateKaryawan(ctx context.Context, req models.CreateKaryawanRequest) (*models.Karyawan, error)
}

type AuthController struct {
	Service Authenticator
}

func NewAuthController(s Authenticator) *AuthController {
	return &AuthController{Service: s}
}

// POST /api/auth/login
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" || req.Password == "" {
		return utils.JSON(c, http.StatusBadRequest, "id dan password wajib diisi", nil)
	}

	resp, err := ac.Service.Login(c.Request().Context(), req.ID, req.Password)
	switch {
	case err == nil:
		return utils.JSON(c, http.StatusOK, "Login berhasil", resp)
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.JSON(c, http.StatusUnauthorized, "ID atau password salah", nil)
	case errors.Is(err, services.ErrUnknownRole):
		return utils.JSON(c, http.StatusForbidden, "Anda tidak memiliki hak akses", nil)
	default:
		return utils.JSON(c, http.StatusInternalServerError, "Login gagal: "+err.Error(), nil)
	}
}

// POST /api/auth/karyawan
func (ac *AuthController) CreateKaryawan(c echo.Context) error {
	var req models.CreateKaryawanRequest
	if err := c.Bind(&req); err != nil {
		return utils.JSON(c, http.StatusBadRequest, "Invalid request payload: "+err.Error(), nil)
	}
	req.IDKaryawan = strings.TrimSpace(req.IDKaryawan)
	req.Nama = strings.TrimSpace(req.Nama)
	if req.IDKaryawan == "" || req.Nama == "" {
		return utils.JSON(c, http.StatusBadRequest, "id_karyawan dan nama wajib diisi", nil)
	}

	k, err := ac.Service.CreateKaryawan(c.Request().Context(), req)
	switch {
	case err == nil:
		return utils.JSON(c, http.StatusCreated, "Karyawan berhasil ditambahkan", k)
	case errors.Is(err, services.ErrKaryawanExists):
		return utils.JSON(c, http.StatusConflict, "ID karyawan sudah terdaftar", nil)
	case errors.Is(err, services.ErrUnknownRole), errors.Is(err, services.ErrWeakPassword):
		return utils.JSON(c, http.StatusBadRequest, err.Error(), nil)
	default:
		return utils.JSON(c, http.StatusInternalServerError, "Gagal menambahkan karyawan: "+err.Error(), nil)
	}
}
