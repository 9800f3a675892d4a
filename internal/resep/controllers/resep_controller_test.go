package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/apotek-antrian-backend/internal/common/middlewares"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/controllers"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/models"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/routes"
	"github.com/c14220110/apotek-antrian-backend/internal/resep/services"
	"github.com/c14220110/apotek-antrian-backend/pkg/utils"
)

type fakePrescriptions struct {
	store     map[string]*models.Resep
	createdBy string
}

func (f *fakePrescriptions) Create(_ context.Context, doctorID string, req models.CreateResepRequest) (*models.Resep, error) {
	f.createdBy = doctorID
	r := &models.Resep{PrescriptionID: "R424242", PatientID: req.PatientID, DoctorID: doctorID, SeverityImpact: req.Severity(), Medicines: req.Medicines}
	f.store[r.PrescriptionID] = r
	return r, nil
}

func (f *fakePrescriptions) Get(_ context.Context, id string) (*models.Resep, error) {
	r, ok := f.store[id]
	if !ok {
		return nil, services.ErrPrescriptionNotFound
	}
	return r, nil
}

func (f *fakePrescriptions) Notify(_ context.Context, req models.NotifyRequest) error {
	r, ok := f.store[req.PrescriptionNumber]
	if !ok {
		return services.ErrPrescriptionNotFound
	}
	if r.PatientID != req.PatientID {
		return services.ErrPatientMismatch
	}
	return nil
}

// Lewat route asli supaya JWT dan role ikut diuji.
func setup(t *testing.T) (*echo.Echo, *fakePrescriptions, *utils.TokenIssuer) {
	t.Helper()
	issuer, err := utils.NewTokenIssuer("rahasia", time.Hour)
	require.NoError(t, err)

	fake := &fakePrescriptions{store: map[string]*models.Resep{}}
	e := echo.New()
	routes.RegisterResepRoutes(e.Group("/api"), controllers.NewResepController(fake), middlewares.JWTMiddleware(issuer))
	return e, fake, issuer
}

func call(e *echo.Echo, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"patientId":"1234567890","severityImpact":8,"medicines":[{"name":"Amoxicillin","quantity":10,"dosage":"3x1"}]}`

func TestCreateResep(t *testing.T) {
	e, fake, issuer := setup(t)
	doctor, _ := issuer.Generate("D001", "dr. Sari", utils.RoleDoctor)

	rec := call(e, http.MethodPost, "/api/prescriptions", doctor, validBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "D001", fake.createdBy)

	var body struct {
		Data models.CreateResepResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "R424242", body.Data.PrescriptionNumber)
}

func TestCreateResep_Access(t *testing.T) {
	e, _, issuer := setup(t)
	pharmacist, _ := issuer.Generate("P001", "Budi", utils.RolePharmacist)

	assert.Equal(t, http.StatusUnauthorized, call(e, http.MethodPost, "/api/prescriptions", "", validBody).Code)
	assert.Equal(t, http.StatusForbidden, call(e, http.MethodPost, "/api/prescriptions", pharmacist, validBody).Code)
}

func TestCreateResep_InvalidPayload(t *testing.T) {
	e, _, issuer := setup(t)
	doctor, _ := issuer.Generate("D001", "dr. Sari", utils.RoleDoctor)

	rec := call(e, http.MethodPost, "/api/prescriptions", doctor, `{"patientId":"1234567890","medicines":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = call(e, http.MethodPost, "/api/prescriptions", doctor, `{"patientId":"1234567890","severityImpact":12,"medicines":[{"name":"A","quantity":1,"dosage":"1x1"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAndNotify(t *testing.T) {
	e, _, issuer := setup(t)
	doctor, _ := issuer.Generate("D001", "dr. Sari", utils.RoleDoctor)
	pharmacist, _ := issuer.Generate("P001", "Budi", utils.RolePharmacist)

	require.Equal(t, http.StatusCreated, call(e, http.MethodPost, "/api/prescriptions", doctor, validBody).Code)

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/api/prescriptions/R424242", pharmacist, "").Code)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/api/prescriptions/R000000", pharmacist, "").Code)

	assert.Equal(t, http.StatusOK,
		call(e, http.MethodPost, "/api/prescriptions/notify", doctor, `{"patientId":"1234567890","prescriptionNumber":"R424242"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		call(e, http.MethodPost, "/api/prescriptions/notify", doctor, `{"patientId":"0000000000","prescriptionNumber":"R424242"}`).Code)
	assert.Equal(t, http.StatusBadRequest,
		call(e, http.MethodPost, "/api/prescriptions/notify", doctor, `{}`).Code)
}
