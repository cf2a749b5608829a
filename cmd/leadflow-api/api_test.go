package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"github.com/dukex/leadflow/pkg/persistence/file"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/dukex/leadflow/pkg/testutil"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) (*fiber.App, *testutil.RecordingPublisher) {
	t.Helper()

	persistence := file.NewPersistence(t.TempDir())
	_, err := services.SeedDefaults(context.Background(), persistence)
	require.NoError(t, err)

	publisher := &testutil.RecordingPublisher{}

	app := NewAPI(
		slog.Default(),
		persistence,
		publisher,
		metrics.New(),
		otelhelper.NoopTracer(),
	)

	return app.App(), publisher
}

func get(t *testing.T, app *fiber.App, target string) (int, string) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)

	defer func() {
		err := resp.Body.Close()
		if err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, string(body)
}

func TestAPI_RootEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	code, body := get(t, app, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "leadflow API", body)
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _ := setupTestApp(t)

	code, body := get(t, app, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK", body)

	code, body = get(t, app, "/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"healthy"`)
}

func TestAPI_SeededStatuses(t *testing.T) {
	app, _ := setupTestApp(t)

	code, body := get(t, app, "/statuses?entity_type=Lead")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"lead-new"`)
	assert.Contains(t, body, `"lead-lost-fake"`)
}

func TestAPI_MetricsEndpoint(t *testing.T) {
	app, publisher := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/entities/Lead/L1/status",
		strings.NewReader(`{"toStatusId":"lead-new"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Len(t, publisher.Published(), 2)

	code, body := get(t, app, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `leadflow_status_changes_total{entity_type="Lead",to_status="lead-new"} 1`)
}
