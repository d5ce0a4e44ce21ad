package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, poolSize int) (*httptest.Server, *MemoryStore, *DrawEngine) {
	t.Helper()
	store := NewMemoryStore()
	_, err := store.SeedPrizePool(context.Background(), poolSize)
	require.NoError(t, err)

	engine := NewDrawEngine(store, defaultWinRate)

	mux := http.NewServeMux()
	registerRoutes(mux, store, engine)
	srv := httptest.NewServer(corsMiddleware(mux))
	t.Cleanup(srv.Close)

	return srv, store, engine
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func TestDrawHandlerWin(t *testing.T) {
	srv, _, _ := newTestServer(t, 2)

	resp := postJSON(t, srv.URL+"/draw", DrawRequest{DeviceID: "d1", Rate: rate(1.0)})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body DrawResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Won)
	require.Empty(t, body.Reason)
	require.Equal(t, 1, body.Remaining)
}

func TestDrawHandlerAlreadyWinner(t *testing.T) {
	srv, _, _ := newTestServer(t, 2)

	resp := postJSON(t, srv.URL+"/draw", DrawRequest{DeviceID: "d1", Rate: rate(1.0)})
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/draw", DrawRequest{DeviceID: "d1", Rate: rate(1.0)})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body DrawResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Won)
	require.Equal(t, ReasonAlreadyWinner, body.Reason)
	require.Equal(t, 1, body.Remaining)
}

func TestDrawHandlerInvalidDeviceID(t *testing.T) {
	srv, store, _ := newTestServer(t, 1)

	for _, deviceID := range []string{"", "has space", "bad!chars"} {
		resp := postJSON(t, srv.URL+"/draw", DrawRequest{DeviceID: deviceID, Rate: rate(1.0)})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		require.Equal(t, "INVALID_DEVICE_ID", body.Error)
	}

	// rejected before any state transition
	remaining, err := store.RemainingPrizes(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, remaining)
}

func TestDrawHandlerBadJSON(t *testing.T) {
	srv, _, _ := newTestServer(t, 1)

	resp, err := http.Post(srv.URL+"/draw", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "INVALID_REQUEST", body.Error)
}

func TestDrawHandlerMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t, 1)

	resp, err := http.Get(srv.URL + "/draw")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusHandler(t *testing.T) {
	srv, _, _ := newTestServer(t, 3)

	resp := postJSON(t, srv.URL+"/draw", DrawRequest{DeviceID: "d1", Rate: rate(1.0)})
	resp.Body.Close()

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 3, body.PoolSize)
	require.Equal(t, 1, body.Awarded)
	require.Equal(t, 2, body.Remaining)
}

func TestHealthHandler(t *testing.T) {
	srv, _, _ := newTestServer(t, 1)

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv, _, _ := newTestServer(t, 1)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/draw", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
