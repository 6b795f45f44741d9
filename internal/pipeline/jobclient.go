package pipeline

import (
	"time"

	"wbs/internal/jobs"
	"wbs/internal/notify"

	"github.com/hibiken/asynq"
)

// AsynqJobClient implements JobClient using asynq
type AsynqJobClient struct {
	client *asynq.Client
}

func NewAsynqJobClient(client *asynq.Client) *AsynqJobClient {
	return &AsynqJobClient{client: client}
}

func (c *AsynqJobClient) ScheduleSLACheck(reportID string, deadline time.Time) error {
	return jobs.ScheduleSLACheck(c.client, reportID, deadline)
}

func (c *AsynqJobClient) EnqueueNotification(intent notify.Intent) error {
	return jobs.EnqueueNotification(c.client, intent)
}
