// Package test hosts end-to-end tests that exercise the HTTP surface
// against the in-memory store. No database or Redis is required; the
// Postgres-specific paths are covered by the store contract tests.
package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"wbs/internal/api"
	"wbs/internal/auth"
	"wbs/internal/credential"
	"wbs/internal/model"
	"wbs/internal/notify"
	"wbs/internal/pipeline"
	"wbs/internal/pubsub"
	"wbs/internal/schema"
	"wbs/internal/store"
	"wbs/internal/ws"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// capturedNotifier records every intent the pipeline and webhook emit.
type capturedNotifier struct {
	mu      sync.Mutex
	intents []notify.Intent
}

func (n *capturedNotifier) Notify(ctx context.Context, intent notify.Intent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = append(n.intents, intent)
	return nil
}

func (n *capturedNotifier) sent() []notify.Intent {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Intent, len(n.intents))
	copy(out, n.intents)
	return out
}

func (n *capturedNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.intents = nil
}

type testEnv struct {
	server   *httptest.Server
	store    store.Store
	auth     *auth.JWTConfig
	hub      *ws.Hub
	notifier *capturedNotifier
	manager  *model.User
}

// newTestEnv wires the full stack on the memory store and seeds one
// manager account (manager / rahasia123).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := zap.NewNop()
	st := store.NewMemory()
	notifier := &capturedNotifier{}

	hub := ws.NewHub(logger)
	go hub.Run()

	bus := pubsub.New(nil, logger)
	bus.SetWSHub(hub)

	creds := credential.NewManager(st)
	pipe := pipeline.New(st, creds, notifier, bus, logger)

	jwtCfg := auth.NewJWTConfig("test-secret")

	hash, err := auth.HashPassword("rahasia123")
	require.NoError(t, err)
	manager := &model.User{
		Username:     "manager",
		PasswordHash: hash,
		FullName:     "Dewi Lestari",
		Role:         "manager",
		Unit:         "Satuan Pengawasan Internal (SPI)",
		IsActive:     true,
	}
	require.NoError(t, st.CreateUser(context.Background(), manager))

	srv := httptest.NewServer(api.Routes(api.Dependencies{
		Pipeline: pipe,
		Store:    st,
		Auth:     jwtCfg,
		Schema:   schema.NewCompilerWithCache(16),
		Hub:      hub,
		Notifier: notifier,
		Log:      logger,
	}))
	t.Cleanup(srv.Close)

	return &testEnv{
		server:   srv,
		store:    st,
		auth:     jwtCfg,
		hub:      hub,
		notifier: notifier,
		manager:  manager,
	}
}

func (e *testEnv) url(path string) string {
	return e.server.URL + path
}

// postJSON sends a JSON body and decodes the JSON response into out
// (out may be nil). token, when set, goes into the Authorization header.
func (e *testEnv) postJSON(t *testing.T, path, token string, body, out interface{}) int {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, e.url(path), bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decodeBody(t, resp.Body, out)
	return resp.StatusCode
}

func (e *testEnv) getJSON(t *testing.T, path, token string, out interface{}) int {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, e.url(path), nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decodeBody(t, resp.Body, out)
	return resp.StatusCode
}

func decodeBody(t *testing.T, r io.Reader, out interface{}) {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	if out == nil {
		return
	}
	require.NoError(t, json.Unmarshal(data, out), "response body: %s", data)
}

// login returns a bearer token for the seeded manager account.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()

	var resp struct {
		Token string     `json:"token"`
		User  model.User `json:"user"`
	}
	status := e.postJSON(t, "/v1/auth/login", "", map[string]string{
		"username": "manager",
		"password": "rahasia123",
	}, &resp)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// submitReport pushes a well-formed corruption report through the API
// and returns the issued report ID and PIN.
func (e *testEnv) submitReport(t *testing.T) (string, string) {
	t.Helper()

	var result model.SubmitResult
	status := e.postJSON(t, "/v1/reports", "", validSubmissionBody(), &result)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, result.Success, "submit failed: %s", result.Error)
	require.NotEmpty(t, result.ReportID)
	require.NotEmpty(t, result.PIN)
	return result.ReportID, result.PIN
}

func validSubmissionBody() map[string]interface{} {
	return map[string]interface{}{
		"what":        "Dugaan korupsi berupa suap dan gratifikasi dalam proses pengadaan barang",
		"where":       "Kantor pusat, divisi pengadaan",
		"when":        "Sepanjang kuartal pertama 2026",
		"who":         "Kepala divisi pengadaan dan dua orang staf",
		"how":         "Meminta imbalan uang atas setiap persetujuan kontrak, diterima berulang melalui rekening pribadi",
		"contactInfo": fmt.Sprintf("pelapor-%d@example.com", testCounter()),
	}
}

var counterMu sync.Mutex
var counter int

func testCounter() int {
	counterMu.Lock()
	defer counterMu.Unlock()
	counter++
	return counter
}
