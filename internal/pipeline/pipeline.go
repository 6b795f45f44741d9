// Package pipeline orchestrates the report intake flow: validation,
// classification, routing, summarization, credential issuance and
// persistence. It is the only package that sequences the core stages;
// HTTP handlers and webhook adapters call into it and nothing else.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"wbs/internal/classify"
	"wbs/internal/credential"
	"wbs/internal/model"
	"wbs/internal/notify"
	"wbs/internal/route"
	"wbs/internal/store"
	"wbs/internal/summarize"
	"wbs/internal/validate"

	"go.uber.org/zap"
)

// EventBus publishes dashboard events. Implementations must not block.
type EventBus interface {
	PublishReports(event map[string]interface{}) error
	PublishReport(reportID string, event map[string]interface{}) error
}

// JobClient schedules background work. Nil means synchronous best-effort
// delivery on the submit path.
type JobClient interface {
	ScheduleSLACheck(reportID string, deadline time.Time) error
	EnqueueNotification(intent notify.Intent) error
}

// Notifier delivers a single notification intent.
type Notifier interface {
	Notify(ctx context.Context, intent notify.Intent) error
}

// Pipeline wires the core stages around a Store.
type Pipeline struct {
	store       store.Store
	credentials *credential.Manager
	notifier    Notifier
	bus         EventBus
	jobClient   JobClient
	log         *zap.Logger
	now         func() time.Time
}

func New(s store.Store, creds *credential.Manager, notifier Notifier, bus EventBus, log *zap.Logger) *Pipeline {
	return &Pipeline{
		store:       s,
		credentials: creds,
		notifier:    notifier,
		bus:         bus,
		log:         log,
		now:         time.Now,
	}
}

// SetJobClient sets the job client for scheduling background jobs
func (p *Pipeline) SetJobClient(client JobClient) {
	p.jobClient = client
}

// WithClock overrides the time source. Tests only.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	p.now = now
	return p
}

// Submit runs a raw submission through the full intake flow. Validation
// errors reject the submission; validation warnings travel with the
// successful result. Notification failures never fail a submit.
func (p *Pipeline) Submit(ctx context.Context, sub model.Submission) model.SubmitResult {
	validation := validate.Validate(sub)
	if !validation.IsValid {
		return model.SubmitResult{
			Success:  false,
			Warnings: validation.Warnings,
			Error:    strings.Join(validation.Errors, "; "),
		}
	}

	cls := classify.Classify(sub)
	now := p.now()
	routing := route.Route(cls.Category, cls.Severity, now)
	summary := summarize.Summarize(sub, cls)

	// Weighted blend of the four process dimensions. Only the
	// completeness score varies per submission; the anonymity,
	// non-retaliation and escalation dimensions are structural.
	compliance := round2(0.25*validation.ComplianceScore + 0.25*95 + 0.25*100 + 0.25*90)

	report, pin, err := p.persistReport(ctx, sub, cls, routing, summary, compliance)
	if err != nil {
		p.log.Error("Report persistence failed", zap.Error(err))
		return model.SubmitResult{Success: false, Error: "gagal menyimpan laporan, silakan coba lagi"}
	}

	// Conversation channel exists from the moment the report does.
	if _, err := p.store.GetOrCreateConversation(ctx, report.ReportID); err != nil {
		p.log.Warn("Conversation bootstrap failed", zap.String("reportId", report.ReportID), zap.Error(err))
	}

	p.dispatchNotifications(ctx, report, sub, pin, routing)

	if p.jobClient != nil && report.SLADeadline != nil {
		if err := p.jobClient.ScheduleSLACheck(report.ReportID, *report.SLADeadline); err != nil {
			p.log.Warn("SLA check scheduling failed", zap.String("reportId", report.ReportID), zap.Error(err))
		}
	}

	if p.bus != nil {
		_ = p.bus.PublishReports(map[string]interface{}{
			"type":     "report.submitted",
			"reportId": report.ReportID,
			"category": string(report.Category),
			"severity": string(report.Severity),
			"unit":     report.AssignedUnit,
		})
	}

	p.log.Info("Report submitted",
		zap.String("reportId", report.ReportID),
		zap.String("category", string(report.Category)),
		zap.String("severity", string(report.Severity)),
		zap.String("unit", report.AssignedUnit))

	return model.SubmitResult{
		Success:         true,
		ReportID:        report.ReportID,
		PIN:             pin,
		ComplianceScore: compliance,
		Warnings:        validation.Warnings,
	}
}

// persistReport issues credentials and inserts the report. A unique
// violation on the report ID (two submissions racing the same sequence
// backend) gets exactly one retry with a fresh credential.
func (p *Pipeline) persistReport(ctx context.Context, sub model.Submission, cls model.Classification, routing model.RoutingResult, summary model.Summary, compliance float64) (*model.Report, string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		reportID, pin, pinHash, err := p.credentials.Issue(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to issue credentials: %w", err)
		}

		now := p.now()
		deadline := routing.SLADeadline
		report := &model.Report{
			ReportID:            reportID,
			PINHash:             pinHash,
			What:                sub.What,
			Where:               sub.Where,
			When:                sub.When,
			Who:                 sub.Who,
			How:                 sub.How,
			EvidenceDescription: sub.EvidenceDescription,
			Category:            cls.Category,
			Severity:            cls.Severity,
			RiskScore:           cls.RiskScore,
			Summary:             summary.Text,
			Status:              model.StatusSubmitted,
			AssignedUnit:        routing.AssignedUnit,
			SourceChannel:       channelOrDefault(sub.SourceChannel),
			ComplianceScore:     compliance,
			SLADeadline:         &deadline,
			CreatedAt:           now,
			UpdatedAt:           now,
		}

		if err := p.store.InsertReport(ctx, report); err != nil {
			lastErr = err
			p.log.Warn("Report insert collision, retrying",
				zap.String("reportId", reportID), zap.Error(err))
			continue
		}

		if sub.ContactInfo != "" {
			if err := p.store.StoreCredential(ctx, reportID, pinHash, sub.ContactInfo); err != nil {
				p.log.Warn("Contact info persistence failed", zap.String("reportId", reportID), zap.Error(err))
			}
		}
		return report, pin, nil
	}
	return nil, "", fmt.Errorf("failed to insert report after retry: %w", lastErr)
}

// dispatchNotifications emits the reporter confirmation and per-unit
// alerts. With a job client the intents go through the queue; without
// one they are delivered inline, best effort.
func (p *Pipeline) dispatchNotifications(ctx context.Context, report *model.Report, sub model.Submission, pin string, routing model.RoutingResult) {
	var intents []notify.Intent

	if sub.ContactInfo != "" {
		channel := notify.ChannelEmail
		if sub.SourceChannel == model.ChannelWhatsApp {
			channel = notify.ChannelWhatsApp
		}
		intents = append(intents, notify.Intent{
			Channel:   channel,
			Recipient: sub.ContactInfo,
			Template:  notify.TemplateReportConfirmation,
			Params: map[string]string{
				"report_id": report.ReportID,
				"pin":       pin,
			},
		})
	}

	for _, unit := range routing.NotificationList {
		intents = append(intents, notify.Intent{
			Channel:   notify.ChannelEmail,
			Recipient: unit,
			Template:  notify.TemplateUnitNotification,
			Params: map[string]string{
				"report_id": report.ReportID,
				"unit":      unit,
				"category":  string(report.Category),
				"severity":  string(report.Severity),
				"sla_hours": fmt.Sprintf("%d", routing.SLAHours),
			},
		})
	}

	for _, intent := range intents {
		if p.jobClient != nil {
			if err := p.jobClient.EnqueueNotification(intent); err != nil {
				p.log.Warn("Notification enqueue failed", zap.String("template", intent.Template), zap.Error(err))
			}
			continue
		}
		if p.notifier != nil {
			_ = p.notifier.Notify(ctx, intent)
		}
	}
}

// StatusView returns the sanitized reporter view of a report, gated on
// the report ID / PIN pair. Wrong ID and wrong PIN are indistinguishable.
func (p *Pipeline) StatusView(ctx context.Context, reportID, pin string) (*model.ReportStatusView, error) {
	if err := p.credentials.Verify(ctx, reportID, pin); err != nil {
		return nil, err
	}
	report, err := p.store.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	view := report.StatusView()
	return &view, nil
}

// Report returns the full report for manager use. Never expose this
// through a PIN-gated path.
func (p *Pipeline) Report(ctx context.Context, reportID string) (*model.Report, error) {
	return p.store.GetReport(ctx, reportID)
}

// ListReports returns reports for the manager dashboard.
func (p *Pipeline) ListReports(ctx context.Context, f store.ListFilter) ([]model.Report, error) {
	return p.store.ListReports(ctx, f)
}

// UpdateStatus moves a report through its lifecycle and records the
// transition as a system message in the report conversation.
func (p *Pipeline) UpdateStatus(ctx context.Context, reportID string, status model.Status, notes string) error {
	if !model.ValidStatus(status) {
		return fmt.Errorf("status tidak valid: %s", status)
	}
	if err := p.store.UpdateStatus(ctx, reportID, status, notes); err != nil {
		return err
	}

	p.systemMessage(ctx, reportID, fmt.Sprintf("Status laporan diubah menjadi: %s", model.StatusDisplayName(status)), model.MessageStatusUpdate)

	if p.bus != nil {
		_ = p.bus.PublishReport(reportID, map[string]interface{}{
			"type":     "report.status_changed",
			"reportId": reportID,
			"status":   string(status),
		})
	}
	return nil
}

// AssignInvestigator assigns a manager account to a report.
func (p *Pipeline) AssignInvestigator(ctx context.Context, reportID string, userID int64) error {
	user, err := p.store.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("investigator not found: %w", err)
	}
	if err := p.store.AssignInvestigator(ctx, reportID, userID); err != nil {
		return err
	}

	p.systemMessage(ctx, reportID, fmt.Sprintf("Laporan ditugaskan kepada: %s", user.FullName), model.MessageNotification)

	if p.bus != nil {
		_ = p.bus.PublishReport(reportID, map[string]interface{}{
			"type":       "report.assigned",
			"reportId":   reportID,
			"assignedTo": userID,
		})
	}
	return nil
}

// SendMessage appends a chat message to the report conversation. Reporter
// callers must already be PIN-verified at the transport layer.
func (p *Pipeline) SendMessage(ctx context.Context, reportID string, sender model.SenderType, senderID *int64, content string) (*model.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("pesan tidak boleh kosong")
	}

	conv, err := p.store.GetOrCreateConversation(ctx, reportID)
	if err != nil {
		return nil, err
	}
	msg, err := p.store.AppendMessage(ctx, conv.ID, sender, senderID, content, model.MessageChat)
	if err != nil {
		return nil, err
	}

	if p.bus != nil {
		_ = p.bus.PublishReport(reportID, map[string]interface{}{
			"type":       "message.created",
			"reportId":   reportID,
			"messageId":  msg.ID,
			"senderType": string(sender),
		})
	}
	return msg, nil
}

// Messages lists the conversation of a report, oldest first.
func (p *Pipeline) Messages(ctx context.Context, reportID string, limit, offset int) ([]model.Message, error) {
	conv, err := p.store.GetOrCreateConversation(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return p.store.ListMessages(ctx, conv.ID, limit, offset)
}

// MarkRead marks the opposite party's messages as read and returns the
// number of messages flipped.
func (p *Pipeline) MarkRead(ctx context.Context, reportID string, reader model.SenderType) (int, error) {
	conv, err := p.store.GetOrCreateConversation(ctx, reportID)
	if err != nil {
		return 0, err
	}
	return p.store.MarkRead(ctx, conv.ID, reader)
}

// VerifyAccess checks a report ID / PIN pair without returning report data.
func (p *Pipeline) VerifyAccess(ctx context.Context, reportID, pin string) error {
	return p.credentials.Verify(ctx, reportID, pin)
}

// Statistics returns dashboard counters.
func (p *Pipeline) Statistics(ctx context.Context) (*model.Statistics, error) {
	return p.store.GetStatistics(ctx)
}

func (p *Pipeline) systemMessage(ctx context.Context, reportID, content string, kind model.MessageType) {
	conv, err := p.store.GetOrCreateConversation(ctx, reportID)
	if err != nil {
		p.log.Warn("Conversation lookup failed", zap.String("reportId", reportID), zap.Error(err))
		return
	}
	if _, err := p.store.AppendMessage(ctx, conv.ID, model.SenderSystem, nil, content, kind); err != nil {
		p.log.Warn("System message append failed", zap.String("reportId", reportID), zap.Error(err))
	}
}

func channelOrDefault(c model.SourceChannel) model.SourceChannel {
	if c == "" {
		return model.ChannelWeb
	}
	return c
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
