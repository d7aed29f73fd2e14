package main

import (
	"context"
	"fmt"

	"support-desk/internal/service/notification"

	"github.com/spf13/cobra"
)

type outboxRetrier interface {
	RetryOutbox(ctx context.Context) (notification.RetryResult, error)
}

// openOutbox is swapped out by tests.
var openOutbox = func(configPath string) (outboxRetrier, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return notification.NewFromConfig(cfg.Mail, cfg.Alerts)
}

func newOutboxCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outbox",
		Short: "Inspect the e-mail outbox",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "retry",
		Short: "Resend e-mails that were written to the outbox",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOutboxRetry(cmd, *configPath)
		},
	})
	return cmd
}

func runOutboxRetry(cmd *cobra.Command, configPath string) error {
	svc, err := openOutbox(configPath)
	if err != nil {
		return err
	}
	res, err := svc.RetryOutbox(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Resent %d e-mail(s), %d still queued\n", res.Sent, res.Failed)
	return nil
}
