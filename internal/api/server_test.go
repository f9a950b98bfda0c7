package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crawlctl/coordinator/internal/api"
	"github.com/crawlctl/coordinator/internal/coordinator"
	"github.com/crawlctl/coordinator/internal/logger"
	"github.com/crawlctl/coordinator/internal/store"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	manager := coordinator.NewManager(store.NewMemoryStore(), coordinator.SystemClock{}, logger.NewNop())
	srv := api.NewServer(api.Params{Manager: manager, Log: logger.NewNop()})
	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSeedStartDispatchRoundTrip(t *testing.T) {
	handler := newTestServer(t)

	seedResp := doJSON(t, handler, http.MethodPost, "/runs/run-1/seed", map[string]any{
		"urls": []string{"https://a.test/p1", "https://B.test/P1/", "https://a.test/p1#x"},
	})
	require.Equal(t, http.StatusOK, seedResp.Code)

	var seed api.SeedResponse
	require.NoError(t, json.Unmarshal(seedResp.Body.Bytes(), &seed))
	assert.Equal(t, 2, seed.Admitted)
	assert.Equal(t, 0, seed.Rejected)
	assert.Equal(t, 2, seed.QueueSize)

	startResp := doJSON(t, handler, http.MethodPost, "/runs/run-1/start", nil)
	require.Equal(t, http.StatusOK, startResp.Code)

	workResp := doJSON(t, handler, http.MethodPost, "/request-work", map[string]any{
		"runId":     "run-1",
		"batchSize": 10,
	})
	require.Equal(t, http.StatusOK, workResp.Code)

	var batch struct {
		URLs      []map[string]any `json:"urls"`
		QueueSize int              `json:"queueSize"`
	}
	require.NoError(t, json.Unmarshal(workResp.Body.Bytes(), &batch))
	assert.Len(t, batch.URLs, 2)
	assert.Equal(t, 0, batch.QueueSize)
}

func TestRequestWorkMissingRunIDIsInvalidRequest(t *testing.T) {
	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodPost, "/request-work", map[string]any{"batchSize": 1})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPauseBeforeStartIsRunNotRunning(t *testing.T) {
	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodPost, "/runs/run-2/pause", nil)
	assert.Equal(t, http.StatusConflict, resp.Code)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "RUN_NOT_RUNNING", envelope.Error.Code)
}

func TestStatusReflectsLifecycle(t *testing.T) {
	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodGet, "/runs/run-3/status", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var status api.StatusResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &status))
	assert.Equal(t, "pending", string(status.Status))
}

func TestReportResultThenStats(t *testing.T) {
	handler := newTestServer(t)

	doJSON(t, handler, http.MethodPost, "/runs/run-4/seed", map[string]any{"urls": []string{"https://a.test/p1"}})
	doJSON(t, handler, http.MethodPost, "/runs/run-4/start", nil)
	doJSON(t, handler, http.MethodPost, "/request-work", map[string]any{"runId": "run-4", "batchSize": 10})

	reportResp := doJSON(t, handler, http.MethodPost, "/report-result", map[string]any{
		"runId":          "run-4",
		"url":            "https://a.test/p1",
		"depth":          0,
		"status":         200,
		"responseTimeMs": 100,
		"contentSize":    2048,
		"fetchedAt":      1,
	})
	require.Equal(t, http.StatusOK, reportResp.Code)

	statsResp := doJSON(t, handler, http.MethodGet, "/runs/run-4/stats", nil)
	require.Equal(t, http.StatusOK, statsResp.Code)

	var stats api.StatsResponse
	require.NoError(t, json.Unmarshal(statsResp.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats.Stats.URLsFetched)
	assert.EqualValues(t, 2048, stats.Stats.BytesDownloaded)
}

func TestOnCronTicksNamedRun(t *testing.T) {
	handler := newTestServer(t)

	doJSON(t, handler, http.MethodPost, "/runs/run-5/seed", map[string]any{"urls": []string{"https://a.test/p1"}})
	doJSON(t, handler, http.MethodPost, "/runs/run-5/start", nil)

	resp := doJSON(t, handler, http.MethodPost, "/on-cron", map[string]any{"runId": "run-5"})
	require.Equal(t, http.StatusOK, resp.Code)

	var cron api.OnCronResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cron))
	assert.Equal(t, 1, cron.QueueSize)
}

func TestOnCronMissingRunIDIsInvalidRequest(t *testing.T) {
	handler := newTestServer(t)

	resp := doJSON(t, handler, http.MethodPost, "/on-cron", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
