// Package notify delivers notification intents over email and WhatsApp.
// Delivery is best-effort: a failure is logged and surfaced as a warning,
// never as a submission error.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Channel selects a delivery transport.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// Intent is a notification the core wants delivered. The core emits
// intents; transports are someone else's problem.
type Intent struct {
	Channel   Channel           `json:"channel"`
	Recipient string            `json:"recipient"`
	Template  string            `json:"template"`
	Params    map[string]string `json:"params,omitempty"`
}

// Template names understood by Render.
const (
	TemplateReportConfirmation = "report_confirmation"
	TemplateUnitNotification   = "unit_notification"
	TemplateStatusUpdate       = "status_update"
	TemplateSLABreach          = "sla_breach"
	TemplateRaw                = "raw"
)

// Sender delivers a rendered notification over one transport.
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Notifier fans intents out to the configured transports.
type Notifier struct {
	email    Sender
	whatsapp Sender
	log      *zap.Logger
}

// New builds a notifier. Nil senders mean the channel is disabled; intents
// for a disabled channel are dropped with a log line.
func New(email, whatsapp Sender, log *zap.Logger) *Notifier {
	return &Notifier{email: email, whatsapp: whatsapp, log: log}
}

// Notify renders and delivers an intent. Errors are returned so the job
// layer can retry, but callers on the submit path must not propagate them.
func (n *Notifier) Notify(ctx context.Context, intent Intent) error {
	subject, body := Render(intent.Template, intent.Params)

	var sender Sender
	switch intent.Channel {
	case ChannelEmail:
		sender = n.email
	case ChannelWhatsApp:
		sender = n.whatsapp
	default:
		return fmt.Errorf("unknown notification channel: %s", intent.Channel)
	}

	if sender == nil {
		n.log.Info("Notification channel disabled, dropping intent",
			zap.String("channel", string(intent.Channel)),
			zap.String("template", intent.Template))
		return nil
	}

	if err := sender.Send(ctx, intent.Recipient, subject, body); err != nil {
		n.log.Warn("Notification delivery failed",
			zap.String("channel", string(intent.Channel)),
			zap.String("recipient", intent.Recipient),
			zap.Error(err))
		return err
	}
	return nil
}

// Render produces subject and body for a template. Unknown templates get a
// generic envelope rather than an error.
func Render(template string, params map[string]string) (subject, body string) {
	get := func(key string) string { return params[key] }

	switch template {
	case TemplateReportConfirmation:
		subject = fmt.Sprintf("Konfirmasi Laporan WBS - %s", get("report_id"))
		body = fmt.Sprintf(
			"Laporan Anda telah kami terima.\n\n"+
				"Report ID: %s\nPIN Akses: %s\n\n"+
				"Simpan Report ID dan PIN untuk memantau status laporan. "+
				"Identitas Anda tetap terlindungi.",
			get("report_id"), get("pin"))
	case TemplateUnitNotification:
		subject = fmt.Sprintf("Laporan Baru %s - %s", get("severity"), get("report_id"))
		body = fmt.Sprintf(
			"Laporan baru masuk untuk unit %s.\n\n"+
				"Report ID: %s\nKategori: %s\nSeverity: %s\nBatas SLA: %s jam",
			get("unit"), get("report_id"), get("category"), get("severity"), get("sla_hours"))
	case TemplateStatusUpdate:
		subject = fmt.Sprintf("Update Status Laporan - %s", get("report_id"))
		body = fmt.Sprintf("Status laporan %s berubah menjadi: %s", get("report_id"), get("status"))
	case TemplateSLABreach:
		subject = fmt.Sprintf("SLA Terlampaui - %s", get("report_id"))
		body = fmt.Sprintf(
			"Laporan %s belum ditindaklanjuti dalam batas SLA %s jam. Eskalasi ke: %s",
			get("report_id"), get("sla_hours"), get("escalation"))
	case TemplateRaw:
		subject = get("subject")
		if subject == "" {
			subject = "Notifikasi WBS"
		}
		body = get("body")
	default:
		subject = "Notifikasi WBS"
		body = fmt.Sprintf("Template: %s", template)
	}
	return subject, body
}
