// Package notification sends alert and appointment e-mails, mirrors alerts to
// chat-ops channels and keeps an on-disk outbox for e-mails that failed.
package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"support-desk/internal/config"
	"support-desk/internal/model"
	"support-desk/internal/validation"
)

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

// Error is a notification failure. MissingFields is set when required fields
// were absent.
type Error struct {
	Code          ErrorCode
	Message       string
	MissingFields []string
	Err           error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

type NotifyParams struct {
	Query      string
	UserName   string
	UserEmail  string
	Mobile     string
	Category   string
	ForceAlert bool
}

type NotifyResult struct {
	Category string
	Sent     bool
	// OutboxPath is set when the e-mail was queued for a later retry.
	OutboxPath string
	SinkErrors []error
}

type Options struct {
	Mailer       Mailer
	Outbox       *Outbox
	Sinks        []AlertSink
	SMS          SMSSender
	From         string
	Receiver     string
	CompanyEmail string
	Now          func() time.Time
}

type Service struct {
	mailer       Mailer
	outbox       *Outbox
	sinks        []AlertSink
	sms          SMSSender
	from         string
	receiver     string
	companyEmail string
	now          func() time.Time
}

func New(opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Outbox == nil {
		opts.Outbox = NewOutbox("email_logs", opts.Now)
	}
	if opts.CompanyEmail == "" {
		opts.CompanyEmail = opts.Receiver
	}
	return &Service{
		mailer:       opts.Mailer,
		outbox:       opts.Outbox,
		sinks:        opts.Sinks,
		sms:          opts.SMS,
		from:         opts.From,
		receiver:     opts.Receiver,
		companyEmail: opts.CompanyEmail,
		now:          opts.Now,
	}
}

// NewFromConfig builds the SMTP mailer and every alert channel that has
// credentials configured.
func NewFromConfig(mail config.MailConfig, alerts config.AlertsConfig) (*Service, error) {
	opts := Options{
		Mailer:       NewSMTPMailer(mail),
		Outbox:       NewOutbox(mail.OutboxDir, time.Now),
		From:         mail.From,
		Receiver:     mail.Receiver,
		CompanyEmail: mail.CompanyEmail,
	}

	if alerts.Slack.BotToken != "" {
		sink, err := NewSlackSink(alerts.Slack.BotToken, alerts.Slack.ChannelID)
		if err != nil {
			return nil, err
		}
		opts.Sinks = append(opts.Sinks, sink)
	}
	if alerts.Discord.BotToken != "" {
		sink, err := NewDiscordSink(alerts.Discord.BotToken, alerts.Discord.ChannelID)
		if err != nil {
			return nil, err
		}
		opts.Sinks = append(opts.Sinks, sink)
	}
	if alerts.SMS.AccountSID != "" {
		sms, err := NewTwilioSMS(alerts.SMS.AccountSID, alerts.SMS.AuthToken, alerts.SMS.From)
		if err != nil {
			return nil, err
		}
		opts.SMS = sms
	}

	return New(opts), nil
}

func (s *Service) Outbox() *Outbox {
	return s.outbox
}

var errNoReceiver = errors.New("notification: mail.receiver is not configured")

// Notify e-mails an alert for a widget query. A failed send is written to the
// outbox and still counts as accepted.
func (s *Service) Notify(ctx context.Context, params NotifyParams) (NotifyResult, error) {
	query := strings.TrimSpace(params.Query)
	userName := strings.TrimSpace(params.UserName)
	userEmail := strings.TrimSpace(params.UserEmail)

	var missing []string
	if query == "" {
		missing = append(missing, "query")
	}
	if userName == "" {
		missing = append(missing, "userName")
	}
	if userEmail == "" {
		missing = append(missing, "userEmail")
	}
	if len(missing) > 0 {
		err := newError(ErrorCodeValidation, "Missing required fields", nil)
		err.MissingFields = missing
		return NotifyResult{}, err
	}
	if !validation.IsEmail(userEmail) {
		return NotifyResult{}, newError(ErrorCodeValidation, "Invalid email format", nil)
	}
	if s.receiver == "" {
		return NotifyResult{}, newError(ErrorCodeInternal, "Failed to send email notification", errNoReceiver)
	}

	category := strings.TrimSpace(params.Category)
	if category == "" {
		category = DefaultCategory
	}
	if params.ForceAlert {
		category = CategoryCanceledForm
	}

	subject, body, err := renderAlert(alertData{
		Category: category,
		Query:    query,
		UserName: userName,
		Email:    userEmail,
		Mobile:   strings.TrimSpace(params.Mobile),
		Time:     formatAlertTime(s.now()),
	})
	if err != nil {
		return NotifyResult{}, newError(ErrorCodeInternal, "Failed to send email notification", err)
	}

	result := NotifyResult{Category: category}
	email := Email{From: s.from, To: s.receiver, Subject: subject, HTML: body}
	path, err := s.deliver(ctx, category, email)
	if err != nil {
		return NotifyResult{}, newError(ErrorCodeInternal, "Failed to send email notification", err)
	}
	result.Sent = path == ""
	result.OutboxPath = path

	summary := fmt.Sprintf("%s from %s <%s>: %s", category, userName, userEmail, query)
	for _, sink := range s.sinks {
		if err := sink.Post(ctx, summary); err != nil {
			result.SinkErrors = append(result.SinkErrors, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return result, nil
}

// AppointmentBooked sends the customer confirmation and the company notice,
// plus an SMS when a sender is configured. Failed e-mails go to the outbox and
// the first failure is returned.
func (s *Service) AppointmentBooked(ctx context.Context, appointment model.AppointmentItem) error {
	customerHTML, err := renderAppointment(customerAppointmentBody, appointment)
	if err != nil {
		return err
	}
	companyHTML, err := renderAppointment(companyAppointmentBody, appointment)
	if err != nil {
		return err
	}

	emails := []Email{
		{From: s.from, To: appointment.Email, Subject: "Appointment Confirmation", HTML: customerHTML},
		{From: s.from, To: s.companyEmail, Subject: "New Appointment: " + appointment.Name, HTML: companyHTML},
	}

	var errs []error
	for _, email := range emails {
		if email.To == "" {
			continue
		}
		if err := s.send(ctx, email); err != nil {
			errs = append(errs, err)
			if _, outErr := s.outbox.Write(CategoryAppointment, email, err); outErr != nil {
				countEmail(resultFailed)
				errs = append(errs, outErr)
			} else {
				countEmail(resultOutboxed)
			}
		}
	}

	if s.sms != nil && appointment.Mobile != "" {
		body := fmt.Sprintf("Your appointment on %s at %s is booked. We will contact you to confirm.", appointment.Date, appointment.Time)
		if err := s.sms.SendSMS(ctx, "+"+strings.TrimPrefix(appointment.Mobile, "+"), body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RetryOutbox resends queued e-mails.
func (s *Service) RetryOutbox(ctx context.Context) (RetryResult, error) {
	if s.mailer == nil {
		return RetryResult{}, errors.New("notification: no mailer configured")
	}
	return s.outbox.Retry(ctx, s.mailer)
}

// deliver sends the e-mail and falls back to the outbox. It returns the
// outbox path when the e-mail was queued.
func (s *Service) deliver(ctx context.Context, category string, email Email) (string, error) {
	sendErr := s.send(ctx, email)
	if sendErr == nil {
		return "", nil
	}
	path, err := s.outbox.Write(category, email, sendErr)
	if err != nil {
		countEmail(resultFailed)
		return "", errors.Join(sendErr, err)
	}
	countEmail(resultOutboxed)
	return path, nil
}

func (s *Service) send(ctx context.Context, email Email) error {
	if s.mailer == nil {
		return errors.New("notification: no mailer configured")
	}
	if err := s.mailer.Send(ctx, email); err != nil {
		return err
	}
	countEmail(resultSent)
	return nil
}
