package notification

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type twilioMessages interface {
	CreateMessage(params *twilioapi.CreateMessageParams) (*twilioapi.ApiV2010Message, error)
}

type TwilioSMS struct {
	messages twilioMessages
	from     string
}

func NewTwilioSMS(accountSID, authToken, from string) (*TwilioSMS, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("twilio: account sid, auth token and sender are required")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &TwilioSMS{messages: client.Api, from: from}, nil
}

func (t *TwilioSMS) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.from)
	params.SetBody(body)
	if _, err := t.messages.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio: send sms: %w", err)
	}
	return nil
}
