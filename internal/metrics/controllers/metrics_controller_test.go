package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/apotek-antrian-backend/internal/metrics/models"
)

type fakeReporter struct{ err error }

func (f fakeReporter) System(context.Context) (models.SystemMetrics, error) {
	return models.SystemMetrics{QueueLength: 3, AverageWaitTime: 7.5}, f.err
}

func (f fakeReporter) Prescriptions(context.Context) (models.PrescriptionMetrics, error) {
	return models.PrescriptionMetrics{PrescriptionCount: 2, MedicineStats: []models.MedicineStat{}, StockLevels: []models.StockLevel{}}, f.err
}

func get(t *testing.T, h echo.HandlerFunc) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, h(c))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestMetricsController(t *testing.T) {
	mc := NewMetricsController(fakeReporter{})

	code, body := get(t, mc.System)
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 3, data["queueLength"])
	assert.EqualValues(t, 7.5, data["averageWaitTime"])

	code, body = get(t, mc.Prescriptions)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["data"].(map[string]interface{})["prescriptionCount"])
}

func TestMetricsController_Error(t *testing.T) {
	mc := NewMetricsController(fakeReporter{err: errors.New("db down")})

	code, body := get(t, mc.System)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Nil(t, body["data"])

	code, _ = get(t, mc.Prescriptions)
	assert.Equal(t, http.StatusInternalServerError, code)
}
