package scheduler

import (
	"context"
	"log"
	"time"

	agentsvc "support-desk/internal/service/agent"
	notificationsvc "support-desk/internal/service/notification"
)

const (
	JobOutboxRetry = "outbox-retry"
	JobIdleAgents  = "idle-agents"
)

// OutboxRetryJob resends queued e-mails.
func OutboxRetryJob(spec string, notifier *notificationsvc.Service) Job {
	return Job{
		Name: JobOutboxRetry,
		Spec: spec,
		Run: func(ctx context.Context) error {
			result, err := notifier.RetryOutbox(ctx)
			if result.Sent > 0 || result.Failed > 0 {
				log.Printf("[SCHEDULER] outbox retry: %d sent, %d still failing", result.Sent, result.Failed)
			}
			return err
		},
	}
}

// IdleAgentsJob sets offline the agents idle for longer than idleAfter with no live socket.
func IdleAgentsJob(spec string, idleAfter time.Duration, agents *agentsvc.Service, isLive func(agentID string) bool) Job {
	return Job{
		Name: JobIdleAgents,
		Spec: spec,
		Run: func(ctx context.Context) error {
			swept, err := agents.MarkIdleOffline(ctx, idleAfter, isLive)
			if swept > 0 {
				log.Printf("[SCHEDULER] %d idle agents set offline", swept)
			}
			return err
		},
	}
}
