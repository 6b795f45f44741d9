package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	recipient string
	subject   string
	body      string
	err       error
}

func (s *recordingSender) Send(ctx context.Context, recipient, subject, body string) error {
	s.recipient = recipient
	s.subject = subject
	s.body = body
	return s.err
}

func TestRender_ReportConfirmation(t *testing.T) {
	subject, body := Render(TemplateReportConfirmation, map[string]string{
		"report_id": "WBS-2026-000042",
		"pin":       "123456",
	})

	assert.Equal(t, "Konfirmasi Laporan WBS - WBS-2026-000042", subject)
	assert.Contains(t, body, "WBS-2026-000042")
	assert.Contains(t, body, "123456")
	assert.Contains(t, body, "Identitas Anda tetap terlindungi")
}

func TestRender_SLABreach(t *testing.T) {
	subject, body := Render(TemplateSLABreach, map[string]string{
		"report_id":  "WBS-2026-000001",
		"sla_hours":  "4",
		"escalation": "Ketua BPKH",
	})

	assert.Equal(t, "SLA Terlampaui - WBS-2026-000001", subject)
	assert.Contains(t, body, "Eskalasi ke: Ketua BPKH")
}

func TestRender_Raw(t *testing.T) {
	subject, body := Render(TemplateRaw, map[string]string{"body": "halo"})

	assert.Equal(t, "Notifikasi WBS", subject)
	assert.Equal(t, "halo", body)
}

func TestNotify_RoutesByChannel(t *testing.T) {
	email := &recordingSender{}
	wa := &recordingSender{}
	n := New(email, wa, zap.NewNop())

	err := n.Notify(context.Background(), Intent{
		Channel:   ChannelWhatsApp,
		Recipient: "62812@c.us",
		Template:  TemplateRaw,
		Params:    map[string]string{"body": "tes"},
	})
	require.NoError(t, err)

	assert.Equal(t, "62812@c.us", wa.recipient)
	assert.Empty(t, email.recipient)
}

func TestNotify_DisabledChannelDropsSilently(t *testing.T) {
	n := New(nil, nil, zap.NewNop())

	err := n.Notify(context.Background(), Intent{
		Channel:  ChannelEmail,
		Template: TemplateRaw,
	})
	assert.NoError(t, err)
}

func TestNotify_SenderErrorPropagates(t *testing.T) {
	email := &recordingSender{err: errors.New("smtp down")}
	n := New(email, nil, zap.NewNop())

	err := n.Notify(context.Background(), Intent{Channel: ChannelEmail, Template: TemplateRaw})
	assert.Error(t, err)
}

func TestNotify_UnknownChannel(t *testing.T) {
	n := New(nil, nil, zap.NewNop())
	err := n.Notify(context.Background(), Intent{Channel: Channel("pigeon")})
	assert.Error(t, err)
}

func TestWhatsAppSender_SendsWAHARequest(t *testing.T) {
	var got struct {
		ChatID  string `json:"chatId"`
		Text    string `json:"text"`
		Session string `json:"session"`
	}
	var gotAuth, gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sender := NewWhatsAppSender(srv.URL, "default", "secret-key")
	err := sender.Send(context.Background(), "62812@c.us", "Subjek", "isi pesan")
	require.NoError(t, err)

	assert.Equal(t, "/api/sendText", gotPath)
	assert.Equal(t, "Bearer secret-key", gotAuth)
	assert.Equal(t, "62812@c.us", got.ChatID)
	assert.Equal(t, "default", got.Session)
	assert.Contains(t, got.Text, "isi pesan")
}

func TestWhatsAppSender_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "session not started", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	sender := NewWhatsAppSender(srv.URL, "default", "")
	err := sender.Send(context.Background(), "62812@c.us", "Subjek", "isi")
	assert.Error(t, err)
}
