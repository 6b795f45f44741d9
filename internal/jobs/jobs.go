// Package jobs runs background work over asynq: SLA breach checks
// scheduled at each report's deadline, and queued notification delivery.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wbs/internal/model"
	"wbs/internal/notify"
	"wbs/internal/pubsub"
	"wbs/internal/store"
	"wbs/internal/taxonomy"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TaskSLACheck       = "sla:check"
	TaskNotifyDispatch = "notify:dispatch"
)

type JobServer struct {
	server   *asynq.Server
	client   *asynq.Client
	store    store.Store
	notifier *notify.Notifier
	bus      *pubsub.Bus
	log      *zap.Logger
}

func NewJobServer(redisAddr string, s store.Store, notifier *notify.Notifier, bus *pubsub.Bus, log *zap.Logger) (*JobServer, *asynq.Client) {
	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	client := asynq.NewClient(redisOpt)

	return &JobServer{
		server:   server,
		client:   client,
		store:    s,
		notifier: notifier,
		bus:      bus,
		log:      log,
	}, client
}

func (js *JobServer) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskSLACheck, js.handleSLACheck)
	mux.HandleFunc(TaskNotifyDispatch, js.handleNotifyDispatch)

	return js.server.Start(mux)
}

func (js *JobServer) Stop() {
	js.server.Shutdown()
	js.client.Close()
}

// Job handlers

// handleSLACheck fires at a report's SLA deadline. A report still sitting
// in submitted state gets escalated: a system message in its conversation,
// a breach notification to the escalation target, and a dashboard event.
func (js *JobServer) handleSLACheck(ctx context.Context, t *asynq.Task) error {
	reportID := string(t.Payload())

	report, err := js.store.GetReport(ctx, reportID)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	// Anything past submitted is being handled.
	if report.Status != model.StatusSubmitted {
		return nil
	}

	level, ok := taxonomy.SeverityLevels[report.Severity]
	if !ok {
		level = taxonomy.SeverityLevels[model.SeverityMedium]
	}

	conv, err := js.store.GetOrCreateConversation(ctx, reportID)
	if err == nil {
		content := fmt.Sprintf("SLA terlampaui. Laporan dieskalasi ke: %s", level.EscalationTo)
		if _, err := js.store.AppendMessage(ctx, conv.ID, model.SenderSystem, nil, content, model.MessageNotification); err != nil {
			js.log.Warn("SLA escalation message failed", zap.String("report_id", reportID), zap.Error(err))
		}
	}

	if js.notifier != nil {
		_ = js.notifier.Notify(ctx, notify.Intent{
			Channel:   notify.ChannelEmail,
			Recipient: level.EscalationTo,
			Template:  notify.TemplateSLABreach,
			Params: map[string]string{
				"report_id":  reportID,
				"sla_hours":  fmt.Sprintf("%d", level.SLAHours),
				"escalation": level.EscalationTo,
			},
		})
	}

	if js.bus != nil {
		_ = js.bus.PublishReports(map[string]interface{}{
			"type":       "report.sla_breached",
			"reportId":   reportID,
			"severity":   string(report.Severity),
			"escalation": level.EscalationTo,
		})
	}

	js.log.Info("SLA breach escalated",
		zap.String("report_id", reportID),
		zap.String("escalation", level.EscalationTo))
	return nil
}

func (js *JobServer) handleNotifyDispatch(ctx context.Context, t *asynq.Task) error {
	var intent notify.Intent
	if err := json.Unmarshal(t.Payload(), &intent); err != nil {
		return fmt.Errorf("failed to decode notification intent: %w", err)
	}

	if err := js.notifier.Notify(ctx, intent); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	js.log.Info("Notification delivered",
		zap.String("channel", string(intent.Channel)),
		zap.String("template", intent.Template))
	return nil
}

// Schedule jobs

func ScheduleSLACheck(client *asynq.Client, reportID string, deadline time.Time) error {
	if deadline.Before(time.Now()) {
		return nil // Already past deadline
	}

	task := asynq.NewTask(TaskSLACheck, []byte(reportID))
	_, err := client.Enqueue(task, asynq.ProcessIn(time.Until(deadline)), asynq.Queue("critical"))
	return err
}

func EnqueueNotification(client *asynq.Client, intent notify.Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskNotifyDispatch, payload)
	_, err = client.Enqueue(task, asynq.MaxRetry(3))
	return err
}
