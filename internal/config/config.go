// Package config provides YAML-based configuration loading for the support servers.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"support-desk/internal/env"

	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverDynamo = "dynamo"
)

// Config is the top-level configuration, loaded from support.yaml.
type Config struct {
	Servers  ServersConfig  `yaml:"servers"`
	Queue    QueueConfig    `yaml:"queue"`
	CORS     CORSConfig     `yaml:"cors"`
	Storage  StorageConfig  `yaml:"storage"`
	Redis    RedisConfig    `yaml:"redis"`
	Mail     MailConfig     `yaml:"mail"`
	Alerts   AlertsConfig   `yaml:"alerts"`
	Chat     ChatConfig     `yaml:"chat"`
	Schedule ScheduleConfig `yaml:"schedule"`
}

type ServersConfig struct {
	Client string `yaml:"client"`
	Public string `yaml:"public"`
	WS     string `yaml:"ws"`
}

type QueueConfig struct {
	Size    int `yaml:"size"`
	Workers int `yaml:"workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig selects the document store backing every repository.
type StorageConfig struct {
	Driver string       `yaml:"driver"`
	Mongo  MongoConfig  `yaml:"mongo"`
	Dynamo DynamoConfig `yaml:"dynamo"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type DynamoConfig struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

type RedisConfig struct {
	Chat RedisEndpoint `yaml:"chat"`
	Auth RedisEndpoint `yaml:"auth"`
	// Presence keeps the user/agent socket registry in Redis instead of process memory.
	Presence bool `yaml:"presence"`
	// PresenceTTL bounds how long a socket mapping survives without being refreshed.
	PresenceTTL time.Duration `yaml:"presence_ttl"`
}

type RedisEndpoint struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

// MailConfig holds SMTP settings for alert and appointment e-mails.
type MailConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"-"`
	From         string `yaml:"from"`
	Receiver     string `yaml:"receiver"`
	CompanyEmail string `yaml:"company_email"`
	OutboxDir    string `yaml:"outbox_dir"`
}

type AlertsConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	SMS     SMSConfig     `yaml:"sms"`
}

type SlackConfig struct {
	ChannelID string `yaml:"channel_id"`
	BotToken  string `yaml:"-"`
}

type DiscordConfig struct {
	ChannelID string `yaml:"channel_id"`
	BotToken  string `yaml:"-"`
}

type SMSConfig struct {
	From       string `yaml:"from"`
	AccountSID string `yaml:"-"`
	AuthToken  string `yaml:"-"`
}

type ChatConfig struct {
	DeliveryDelay time.Duration `yaml:"delivery_delay"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
}

type ScheduleConfig struct {
	OutboxRetry string        `yaml:"outbox_retry"`
	IdleAgents  string        `yaml:"idle_agents"`
	IdleAfter   time.Duration `yaml:"idle_after"`
}

// Load reads a YAML config file from path and returns a validated Config.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Parse(nil)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets environment variables override connection settings and carry secrets.
func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v := env.Get(key); v != "" {
			*dst = v
		}
	}
	override(&c.Storage.Mongo.URI, env.MongoURI)
	override(&c.Storage.Mongo.Database, env.MongoDB)
	override(&c.Storage.Dynamo.Region, env.AWSRegion)
	override(&c.Storage.Dynamo.Endpoint, env.DynamoDBEndpoint)
	override(&c.Redis.Chat.Addr, env.ChatRedisURL)
	override(&c.Redis.Chat.Password, env.ChatRedisPass)
	override(&c.Redis.Auth.Addr, env.AuthRedisURL)
	override(&c.Redis.Auth.Password, env.AuthRedisPass)

	c.Mail.Password = env.Get(env.SMTPPassword)
	c.Alerts.Slack.BotToken = env.Get(env.SlackBotToken)
	c.Alerts.Discord.BotToken = env.Get(env.DiscordBotToken)
	c.Alerts.SMS.AccountSID = env.Get(env.TwilioAccountSID)
	c.Alerts.SMS.AuthToken = env.Get(env.TwilioAuthToken)
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Servers.Client == "" {
		c.Servers.Client = ":81"
	}
	if c.Servers.Public == "" {
		c.Servers.Public = ":82"
	}
	if c.Servers.WS == "" {
		c.Servers.WS = ":83"
	}
	if c.Queue.Size <= 0 {
		c.Queue.Size = 10
	}
	if c.Queue.Workers <= 0 {
		c.Queue.Workers = 10
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMongo
	}
	if c.Storage.Mongo.URI == "" {
		c.Storage.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Storage.Mongo.Database == "" {
		c.Storage.Mongo.Database = "chat-support"
	}
	if c.Storage.Dynamo.Region == "" {
		c.Storage.Dynamo.Region = "eu-central-1"
	}
	if c.Redis.Auth.Addr == "" {
		c.Redis.Auth.Addr = c.Redis.Chat.Addr
		c.Redis.Auth.Password = c.Redis.Chat.Password
	}
	if c.Redis.PresenceTTL <= 0 {
		c.Redis.PresenceTTL = 24 * time.Hour
	}
	if c.Mail.Host == "" {
		c.Mail.Host = "smtp.gmail.com"
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 465
	}
	if c.Mail.From == "" {
		c.Mail.From = c.Mail.Username
	}
	if c.Mail.CompanyEmail == "" {
		c.Mail.CompanyEmail = c.Mail.Receiver
	}
	if c.Mail.OutboxDir == "" {
		c.Mail.OutboxDir = "email_logs"
	}
	if c.Chat.DeliveryDelay <= 0 {
		c.Chat.DeliveryDelay = 2 * time.Second
	}
	if c.Chat.TokenTTL <= 0 {
		c.Chat.TokenTTL = 24 * time.Hour
	}
	if c.Schedule.OutboxRetry == "" {
		c.Schedule.OutboxRetry = "*/10 * * * *"
	}
	if c.Schedule.IdleAgents == "" {
		c.Schedule.IdleAgents = "*/5 * * * *"
	}
	if c.Schedule.IdleAfter <= 0 {
		c.Schedule.IdleAfter = 30 * time.Minute
	}
}

func (c *Config) validate() error {
	var errs []string

	switch c.Storage.Driver {
	case DriverMongo, DriverDynamo:
	default:
		errs = append(errs, fmt.Sprintf("storage.driver must be %q or %q, got %q", DriverMongo, DriverDynamo, c.Storage.Driver))
	}
	if c.Queue.Workers > c.Queue.Size*10 {
		errs = append(errs, "queue.workers is unreasonably large for queue.size")
	}
	if c.Mail.Receiver != "" && !strings.Contains(c.Mail.Receiver, "@") {
		errs = append(errs, "mail.receiver must be an e-mail address")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}
