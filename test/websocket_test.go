package test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialWS opens a dashboard WebSocket connection with the given token.
func dialWS(t *testing.T, env *testEnv, token string) (*websocket.Conn, *http.Response) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/v1/ws?token=" + token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, resp
	}
	t.Cleanup(func() { conn.Close() })
	return conn, resp
}

// readFrames returns the JSON objects in the next frame. The write pump
// batches queued messages into one frame separated by newlines.
func readFrames(t *testing.T, conn *websocket.Conn) []map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var out []map[string]interface{}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &msg))
		out = append(out, msg)
	}
	return out
}

// waitForEvent reads frames until an event on the given channel arrives.
func waitForEvent(t *testing.T, conn *websocket.Conn, channel string) map[string]interface{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		for _, msg := range readFrames(t, conn) {
			if msg["type"] == "event" && msg["channel"] == channel {
				return msg
			}
		}
	}
	t.Fatalf("no event received on channel %s", channel)
	return nil
}

func TestWebSocket_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	conn, resp := dialWS(t, env, "")
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, resp = dialWS(t, env, "not-a-token")
	assert.Nil(t, conn)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_SubscribeAndPing(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	conn, _ := dialWS(t, env, token)
	require.NotNil(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":    "subscribe",
		"channel": "reports",
	}))
	frames := readFrames(t, conn)
	require.NotEmpty(t, frames)
	assert.Equal(t, "ack", frames[0]["type"])
	assert.Equal(t, "subscribed", frames[0]["ack"])
	assert.Equal(t, "reports", frames[0]["channel"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	frames = readFrames(t, conn)
	require.NotEmpty(t, frames)
	assert.Equal(t, "pong", frames[0]["ack"])
}

func TestWebSocket_ReceivesSubmittedEvents(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	conn, _ := dialWS(t, env, token)
	require.NotNil(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":    "subscribe",
		"channel": "reports",
	}))
	frames := readFrames(t, conn)
	require.NotEmpty(t, frames)
	require.Equal(t, "ack", frames[0]["type"])

	reportID, _ := env.submitReport(t)

	event := waitForEvent(t, conn, "reports")
	data, ok := event["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "report.submitted", data["type"])
	assert.Equal(t, reportID, data["reportId"])
	assert.Equal(t, "corruption", data["category"])
	assert.Equal(t, "Satuan Pengawasan Internal (SPI)", data["unit"])
}

func TestWebSocket_PerReportChannel(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)
	reportID, pin := env.submitReport(t)

	conn, _ := dialWS(t, env, token)
	require.NotNil(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]string{
		"type":    "subscribe",
		"channel": "report:" + reportID,
	}))
	frames := readFrames(t, conn)
	require.NotEmpty(t, frames)
	require.Equal(t, "ack", frames[0]["type"])

	status := env.postJSON(t, "/v1/reports/"+reportID+"/messages", "", map[string]string{
		"pin":     pin,
		"content": "Ada bukti tambahan yang ingin saya sampaikan.",
	}, nil)
	require.Equal(t, http.StatusCreated, status)

	event := waitForEvent(t, conn, "report:"+reportID)
	data, ok := event["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "message.created", data["type"])
	assert.Equal(t, reportID, data["reportId"])
}
