package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/c14220110/apotek-antrian-backend/internal/antrian/models"
)

// APIClient client REST kecil untuk endpoint antrian dan login.
type APIClient struct {
	BaseURL string
	HTTP    *http.Client
	Token   string
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope[T any] struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func do[T any](ctx context.Context, c *APIClient, method, path string, body interface{}) (T, error) {
	var zero T

	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, err
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return zero, fmt.Errorf("%s %s: decode response (HTTP %d): %w", method, path, resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return zero, fmt.Errorf("%s %s: HTTP %d: %s", method, path, resp.StatusCode, env.Message)
	}
	return env.Data, nil
}

// Snapshot seluruh antrian aktif (GET /api/queue).
func (c *APIClient) Snapshot(ctx context.Context) ([]models.QueueEntry, error) {
	return do[[]models.QueueEntry](ctx, c, http.MethodGet, "/api/queue", nil)
}

// Display data layar pusat versi server (GET /api/queue/display).
func (c *APIClient) Display(ctx context.Context) (models.DisplayBoard, error) {
	return do[models.DisplayBoard](ctx, c, http.MethodGet, "/api/queue/display", nil)
}

// Login menyimpan token yang didapat untuk request berikutnya.
func (c *APIClient) Login(ctx context.Context, id, password string) error {
	resp, err := do[struct {
		Token string `json:"token"`
	}](ctx, c, http.MethodPost, "/api/auth/login", map[string]string{"id": id, "password": password})
	if err != nil {
		return err
	}
	c.Token = resp.Token
	return nil
}
