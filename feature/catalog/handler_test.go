package catalog_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"card-catalog/core/database"
	"card-catalog/feature/catalog"
	"card-catalog/feature/catalog/models"
	"card-catalog/feature/prices"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupApp(t *testing.T) *fiber.App {
	db, err := database.Connect(database.Config{
		Driver: "sqlite",
		Path:   "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	service := catalog.NewService(db, zap.NewNop(), nil)
	handler := catalog.NewHandler(service, prices.NewTrendCalculator(db))

	app := fiber.New()
	handler.RegisterRoutes(app)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (int, map[string]any) {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	return resp.StatusCode, decodeBody(t, resp.Body)
}

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	require.NoError(t, err)
	return resp.StatusCode, decodeBody(t, resp.Body)
}

func decodeBody(t *testing.T, body io.ReadCloser) map[string]any {
	t.Helper()
	defer body.Close()
	var decoded map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

func snapshotPayload() models.SnapshotInput {
	return models.SnapshotInput{
		Version: "v260829",
		Records: []models.PriceRecord{{
			ID:              "aaa-1",
			Name:            "Alpha",
			SetCode:         "one",
			CollectorNumber: "1",
			MarketPrice:     1.00,
			UpdatedAt:       "2026-08-29T10:00:00Z",
		}},
	}
}

func TestHandleStateBeforeAnySync(t *testing.T) {
	app := setupApp(t)

	status, body := getJSON(t, app, "/catalog/state")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "default_cards", body["dataset"])
	assert.Nil(t, body["currentVersion"])
	assert.EqualValues(t, 0, body["totalRecords"])
}

func TestHandleApplySnapshotThenState(t *testing.T) {
	app := setupApp(t)

	status, body := postJSON(t, app, "/catalog/snapshot", snapshotPayload())
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "v260829", body["toVersion"])
	assert.NotEmpty(t, body["stateHash"])

	status, body = getJSON(t, app, "/catalog/state")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "v260829", body["currentVersion"])
	assert.EqualValues(t, 1, body["totalRecords"])
}

func TestHandleApplyPatchWrongChainIs409(t *testing.T) {
	app := setupApp(t)

	_, _ = postJSON(t, app, "/catalog/snapshot", snapshotPayload())

	status, body := postJSON(t, app, "/catalog/patch", models.PatchInput{
		FromVersion: "v260820",
		ToVersion:   "v260830",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "version-chain", body["kind"])
}

func TestHandleApplySnapshotValidationIs400(t *testing.T) {
	app := setupApp(t)

	status, body := postJSON(t, app, "/catalog/snapshot", models.SnapshotInput{Version: ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["error"], "version")
}

func TestHandleApplySnapshotMalformedBodyIs400(t *testing.T) {
	app := setupApp(t)

	req := httptest.NewRequest("POST", "/catalog/snapshot", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetTrend(t *testing.T) {
	app := setupApp(t)

	_, _ = postJSON(t, app, "/catalog/snapshot", snapshotPayload())

	status, body := getJSON(t, app, "/catalog/trends/aaa-1?channel=tcg-mid")
	assert.Equal(t, fiber.StatusOK, status)
	// One observation: a current price but no direction yet.
	assert.Equal(t, "none", body["direction"])
	assert.EqualValues(t, 1.00, body["current"])
}

func TestHandleVerifyCleanReplica(t *testing.T) {
	app := setupApp(t)

	_, _ = postJSON(t, app, "/catalog/snapshot", snapshotPayload())

	status, _ := getJSON(t, app, "/catalog/verify")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestHandleReset(t *testing.T) {
	app := setupApp(t)

	_, _ = postJSON(t, app, "/catalog/snapshot", snapshotPayload())

	status, body := postJSON(t, app, "/catalog/reset", fiber.Map{})
	require.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, body["currentVersion"])

	status, body = getJSON(t, app, "/catalog/state")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Nil(t, body["currentVersion"])
}
