package notification

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	slackapi "github.com/slack-go/slack"
)

// AlertSink mirrors alert summaries to a chat-ops channel.
type AlertSink interface {
	Name() string
	Post(ctx context.Context, text string) error
}

type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

type SlackSink struct {
	client    slackClient
	channelID string
}

func NewSlackSink(botToken, channelID string) (*SlackSink, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("slack: bot token and channel id are required")
	}
	return &SlackSink{client: slackapi.New(botToken), channelID: channelID}, nil
}

func (s *SlackSink) Name() string { return "slack" }

func (s *SlackSink) Post(ctx context.Context, text string) error {
	if _, _, err := s.client.PostMessageContext(ctx, s.channelID, slackapi.MsgOptionText(text, false)); err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}

type discordSession interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordSink struct {
	session   discordSession
	channelID string
}

// NewDiscordSink uses the REST API only; no gateway connection is opened.
func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("discord: bot token and channel id are required")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (d *DiscordSink) Name() string { return "discord" }

func (d *DiscordSink) Post(ctx context.Context, text string) error {
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: send message: %w", err)
	}
	return nil
}
