package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"wbs/internal/model"
	"wbs/internal/notify"
)

// wahaEvent is the subset of a WAHA webhook payload we care about.
type wahaEvent struct {
	Event   string `json:"event"`
	Session string `json:"session"`
	Payload struct {
		From   string `json:"from"`
		Body   string `json:"body"`
		FromMe bool   `json:"fromMe"`
	} `json:"payload"`
}

const wahaGuidance = "Selamat datang di layanan Whistleblowing System.\n\n" +
	"Untuk membuat laporan, kirim satu pesan dengan format:\n" +
	"LAPOR#apa yang terjadi#lokasi#waktu#pihak terlibat#bagaimana kejadiannya\n\n" +
	"Untuk cek status laporan:\n" +
	"STATUS <Report ID> <PIN>"

// wahaWebhook handles inbound WhatsApp messages from a WAHA instance.
// Structured LAPOR messages become submissions, STATUS messages return
// the sanitized status, everything else gets the guidance text. The
// webhook always acknowledges with 200 so WAHA does not retry.
func (d Dependencies) wahaWebhook(w http.ResponseWriter, r *http.Request) {
	var event wahaEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid webhook payload", d.Log)
		return
	}

	if event.Event != "message" || event.Payload.FromMe || event.Payload.From == "" {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	body := strings.TrimSpace(event.Payload.Body)
	from := event.Payload.From

	switch {
	case strings.HasPrefix(strings.ToUpper(body), "LAPOR#"):
		d.handleWahaSubmission(r, from, body)
	case strings.HasPrefix(strings.ToUpper(body), "STATUS "):
		d.handleWahaStatus(r, from, body)
	default:
		d.replyWhatsApp(r, from, wahaGuidance)
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (d Dependencies) handleWahaSubmission(r *http.Request, from, body string) {
	parts := strings.Split(body, "#")
	if len(parts) < 6 {
		d.replyWhatsApp(r, from,
			"Format laporan tidak lengkap. Dibutuhkan 5 bagian dipisah tanda #:\n"+
				"LAPOR#apa#lokasi#waktu#pihak#bagaimana")
		return
	}

	sub := model.Submission{
		What:          strings.TrimSpace(parts[1]),
		Where:         strings.TrimSpace(parts[2]),
		When:          strings.TrimSpace(parts[3]),
		Who:           strings.TrimSpace(parts[4]),
		How:           strings.TrimSpace(strings.Join(parts[5:], " ")),
		ContactInfo:   from,
		SourceChannel: model.ChannelWhatsApp,
	}

	result := d.Pipeline.Submit(r.Context(), sub)
	if !result.Success {
		d.replyWhatsApp(r, from, "Laporan belum dapat diterima:\n"+result.Error)
		return
	}
	// The confirmation with report ID and PIN goes out through the
	// pipeline's own notification intents.
}

func (d Dependencies) handleWahaStatus(r *http.Request, from, body string) {
	fields := strings.Fields(body)
	if len(fields) != 3 {
		d.replyWhatsApp(r, from, "Format cek status: STATUS <Report ID> <PIN>")
		return
	}

	view, err := d.Pipeline.StatusView(r.Context(), strings.ToUpper(fields[1]), fields[2])
	if err != nil {
		d.replyWhatsApp(r, from, "Report ID atau PIN tidak valid.")
		return
	}

	d.replyWhatsApp(r, from, fmt.Sprintf(
		"Status laporan %s: %s\nKategori: %s\nUnit penangan: %s",
		view.ReportID, view.StatusName, view.Category, view.AssignedUnit))
}

func (d Dependencies) replyWhatsApp(r *http.Request, recipient, text string) {
	if d.Notifier == nil {
		return
	}
	_ = d.Notifier.Notify(r.Context(), notify.Intent{
		Channel:   notify.ChannelWhatsApp,
		Recipient: recipient,
		Template:  notify.TemplateRaw,
		Params:    map[string]string{"body": text},
	})
}
