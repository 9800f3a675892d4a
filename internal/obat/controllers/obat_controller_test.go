package controllers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/controllers"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/models"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/routes"
	"github.com/c14220110/apotek-antrian-backend/internal/obat/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type fakeStock map[string]int

func (f fakeStock) UpdateStock(_ context.Context, name string, needed int) (int, error) {
	have, ok := f[name]
	if !ok {
		return 0, services.ErrMedicineNotFound
	}
	if have < needed {
		return have, fmt.Errorf("%w: %s", services.ErrInsufficientStock, name)
	}
	f[name] = have - needed
	return f[name], nil
}

func (f fakeStock) CheckStock(context.Context) ([]models.Obat, error) {
	return []models.Obat{{IDObat: 1, Nama: "Amoxicillin", Stock: 1, Threshold: 10}}, nil
}

func (f fakeStock) GetUsage(context.Context) ([]models.Usage, error) {
	return []models.Usage{{Name: "Amoxicillin", UsedQuantity: 9}}, nil
}

func (f fakeStock) GetStock(context.Context) ([]models.StockLevel, error) {
	out := []models.StockLevel{}
	for name, qty := range f {
		out = append(out, models.StockLevel{Name: name, StockQuantity: qty})
	}
	return out, nil
}

func setup(t *testing.T) (*echo.Echo, string, string) {
	t.Helper()
	issuer, err := utils.NewTokenIssuer("rahasia", time.Hour)
	require.NoError(t, err)
	pharmacist, _ := issuer.Generate("P001", "Budi", utils.RolePharmacist)
	doctor, _ := issuer.Generate("D001", "dr. Sari", utils.RoleDoctor)

	e := echo.New()
	routes.RegisterObatRoutes(e.Group("/api"), controllers.NewObatController(fakeStock{"Amoxicillin": 10}), middlewares.JWTMiddleware(issuer))
	return e, pharmacist, doctor
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestUpdateStock(t *testing.T) {
	e, pharmacist, _ := setup(t)

	tests := []struct {
		name   string
		body   string
		status int
		left   float64
	}{
		{"decrement", `{"medicineName":"Amoxicillin","neededQuantity":4}`, http.StatusOK, 6},
		{"insufficient", `{"medicineName":"Amoxicillin","neededQuantity":100}`, http.StatusConflict, 6},
		{"unknown", `{"medicineName":"Xanax","neededQuantity":1}`, http.StatusNotFound, 0},
		{"zero quantity", `{"medicineName":"Amoxicillin","neededQuantity":0}`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		rec := call(e, http.MethodPost, "/api/medicines/update-stock", pharmacist, tt.body)
		assert.Equal(t, tt.status, rec.Code, tt.name)
		if tt.left > 0 {
			var body struct {
				Data map[string]float64 `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.left, body.Data["updatedStockQuantity"], tt.name)
		}
	}
}

func TestReadEndpoints(t *testing.T) {
	e, pharmacist, doctor := setup(t)
	for _, path := range []string{"/api/medicines/check-stock", "/api/medicines/used", "/api/medicines/stock"} {
		assert.Equal(t, http.StatusOK, call(e, http.MethodGet, path, pharmacist, "").Code, path)
		assert.Equal(t, http.StatusForbidden, call(e, http.MethodGet, path, doctor, "").Code, path)
	}
}
