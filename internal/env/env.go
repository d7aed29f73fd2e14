package env

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ConfigPath       = "SUPPORT_CONFIG"
	AWSRegion        = "AWS_REGION"
	AWSID            = "AWS_ID"
	AWSSecret        = "AWS_SECRET"
	AWSToken         = "AWS_TOKEN"
	DynamoDBEndpoint = "DYNAMODB_ENDPOINT"
	MongoURI         = "MONGO_URI"
	MongoDB          = "MONGO_DB"
	AgentSecretKey   = "AGENT_SECRET"
	AdminSecretKey   = "ADMIN_SECRET"
	AuthRedisURL     = "AUTH_REDIS_URL"
	AuthRedisPass    = "AUTH_REDIS_PASS"
	ChatRedisURL     = "CHAT_REDIS_URL"
	ChatRedisPass    = "CHAT_REDIS_PASS"
	SMTPPassword     = "SMTP_PASSWORD"
	SlackBotToken    = "SLACK_BOT_TOKEN"
	DiscordBotToken  = "DISCORD_BOT_TOKEN"
	TwilioAccountSID = "TWILIO_ACCOUNT_SID"
	TwilioAuthToken  = "TWILIO_AUTH_TOKEN"
)

var required = []string{
	AgentSecretKey,
	AdminSecretKey,
	ChatRedisURL,
}

// Load reads an optional .env file and then checks that every required key is set.
func Load(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("env: load %s: %w", f, err)
		}
	}

	var missing []string
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("env: required environment variables not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
