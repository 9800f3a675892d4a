package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{"status": status, "message": message, "data": data})
}

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/queue", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, "ok", []models.QueueEntry{entry("a", models.StatusProcessing)})
	})
	mux.HandleFunc("/api/queue/display", func(w http.ResponseWriter, r *http.Request) {
		ready := entry("r", models.StatusReady)
		writeEnvelope(w, http.StatusOK, "ok", models.DisplayBoard{NowServing: &ready})
	})
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "benar" {
			writeEnvelope(w, http.StatusUnauthorized, "ID atau password salah", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, "Login berhasil", map[string]string{"token": "tok-" + body["id"]})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAPIClient_Snapshot(t *testing.T) {
	c := NewAPIClient(apiServer(t).URL + "/")

	entries, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)

	board, err := c.Display(context.Background())
	require.NoError(t, err)
	require.NotNil(t, board.NowServing)
	assert.Equal(t, "r", board.NowServing.ID)
}

func TestAPIClient_Login(t *testing.T) {
	c := NewAPIClient(apiServer(t).URL)

	err := c.Login(context.Background(), "P001", "salah")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ID atau password salah")
	assert.Empty(t, c.Token)

	require.NoError(t, c.Login(context.Background(), "P001", "benar"))
	assert.Equal(t, "tok-P001", c.Token)
}
