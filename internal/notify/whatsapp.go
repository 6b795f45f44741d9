package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender talks to a WAHA (WhatsApp HTTP API) server.
type WhatsAppSender struct {
	baseURL string
	session string
	apiKey  string
	client  *http.Client
}

// NewWhatsAppSender configures a WAHA client.
func NewWhatsAppSender(baseURL, session, apiKey string) *WhatsAppSender {
	return &WhatsAppSender{
		baseURL: baseURL,
		session: session,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts a text message. The subject line is folded into the body since
// WhatsApp has no subject concept.
func (w *WhatsAppSender) Send(ctx context.Context, recipient, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"chatId":  recipient,
		"text":    fmt.Sprintf("*%s*\n\n%s", subject, body),
		"session": w.session,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/api/sendText", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+w.apiKey)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("waha request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("waha send failed: status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
