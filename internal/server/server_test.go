package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamcast/jamcast/internal/config"
	"github.com/jamcast/jamcast/internal/live"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:              "test",
		Port:                "0",
		HeartbeatInterval:   25 * time.Second,
		CleanupInterval:     30 * time.Second,
		ClientTimeout:       5 * time.Minute,
		MaxActivities:       100,
		MaxRecentActivities: 50,
		MaxConnections:      100,
		MaxConnectionsPerIP: 10,
		ConnectionRate:      1000,
		ConnectionBurst:     1000,
	}
}

// testServer stands up the full HTTP surface backed by a real hub.
func testServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	if cfg == nil {
		cfg = testConfig()
	}

	clock := clockwork.NewRealClock()
	hub := live.NewHub(live.Options{
		HeartbeatInterval:   cfg.HeartbeatInterval,
		CleanupInterval:     cfg.CleanupInterval,
		ClientTimeout:       cfg.ClientTimeout,
		MaxActivities:       cfg.MaxActivities,
		MaxRecentActivities: cfg.MaxRecentActivities,
	}, clock)
	t.Cleanup(hub.Stop)

	srv := NewServer(cfg, hub, clock)
	ts := httptest.NewServer(srv.echo)
	t.Cleanup(ts.Close)

	return ts
}

func dialLive(t *testing.T, ts *httptest.Server) *ws.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live-music"
	conn, _, err := ws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readFrame reads one frame into a generic map, with a deadline so a missing
// frame fails the test instead of hanging it.
func readFrame(t *testing.T, conn *ws.Conn) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame map[string]any
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func getJSON(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestWebSocketConnectFlow(t *testing.T) {
	ts := testServer(t, nil)
	conn := dialLive(t, ts)

	welcome := readFrame(t, conn)
	assert.Equal(t, "connected", welcome["type"])
	assert.NotEmpty(t, welcome["clientId"])

	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"connect","username":"alice"}`)))

	ack := readFrame(t, conn)
	assert.Equal(t, "connected", ack["type"])
	assert.Equal(t, "alice", ack["username"])

	status, body := getJSON(t, ts.URL+"/api/live/users")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])
}

func TestWebSocketPerIPLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxConnectionsPerIP = 1
	ts := testServer(t, cfg)

	dialLive(t, ts)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live-music"
	_, resp, err := ws.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	ts := testServer(t, nil)

	status, body := getJSON(t, ts.URL+"/api/live/stats")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["connectedClients"])
	assert.Equal(t, float64(0), body["jamSessions"])
}

func TestJamSessionEndpointUnknownID(t *testing.T) {
	ts := testServer(t, nil)

	status, body := getJSON(t, ts.URL+"/api/live/jam-sessions/does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "jam session not found", body["error"])
}

func TestJamSessionListEndpoint(t *testing.T) {
	ts := testServer(t, nil)
	conn := dialLive(t, ts)

	readFrame(t, conn) // welcome
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"connect","username":"alice"}`)))
	readFrame(t, conn) // identify ack
	require.NoError(t, conn.WriteMessage(ws.TextMessage, []byte(`{"type":"jam_create","jamSessionName":"room"}`)))
	created := readFrame(t, conn)
	require.Equal(t, "jam_created", created["type"])

	status, body := getJSON(t, ts.URL+"/api/live/jam-sessions")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	session := created["jamSession"].(map[string]any)
	status, detail := getJSON(t, ts.URL+"/api/live/jam-sessions/"+session["id"].(string))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "room", detail["name"])
}

func TestHealthEndpoints(t *testing.T) {
	ts := testServer(t, nil)

	status, body := getJSON(t, ts.URL+"/health/live")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alive", body["status"])

	status, body = getJSON(t, ts.URL+"/health/ready")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ready", body["status"])

	status, body = getJSON(t, ts.URL+"/api/live/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "live-music", body["service"])
}
