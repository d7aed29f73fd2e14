package notification

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSent     = "sent"
	resultOutboxed = "outboxed"
	resultFailed   = "failed"
	resultResent   = "resent"
)

var emailsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "support_emails_total",
		Help: "E-mails handled by the notification service, by outcome.",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(emailsTotal)
}

func countEmail(result string) {
	emailsTotal.WithLabelValues(result).Inc()
}
