package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr string

	KafkaBrokers  []string
	ConsumerGroup string

	// One queue per ingress channel.
	QueueNameBackend string // JSON-origin requests
	QueueNameAPIM    string // SOAP-origin requests

	// Shared-secret Authorization token for the inbound endpoint.
	Token string

	PublishAckTimeout time.Duration

	SMTPHost   string
	SMTPPort   string
	SMTPUser   string
	SMTPPass   string
	SMTPUseTLS bool

	SMSGatewayURL    string
	SMSApplicationID string
	SMSPassword      string

	DatabaseURL string // optional; empty disables the delivery audit log
	RedisAddr   string
	RedisPass   string
}

func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("Relay: No .env file found, relying on system env vars")
	}
	return AppConfig{
		HTTPAddr: getEnv("HTTP_ADDR", ":3000"),

		KafkaBrokers:  strings.Split(getEnv("KAFKA_BROKERS", "kafka:9092"), ","),
		ConsumerGroup: getEnv("CONSUMER_GROUP", "notification-relay"),

		QueueNameBackend: getEnv("QUEUE_NAME_BACKEND", "notifications.backend"),
		QueueNameAPIM:    getEnv("QUEUE_NAME_APIM", "notifications.apim"),

		Token: getEnv("TOKEN", ""),

		PublishAckTimeout: getDuration("PUBLISH_ACK_TIMEOUT", 30*time.Second),

		SMTPHost:   getEnv("EMAIL_IP", ""),
		SMTPPort:   getEnv("EMAIL_PORT", "25"),
		SMTPUser:   getEnv("EMAIL_USER", ""),
		SMTPPass:   getEnv("EMAIL_PASS", ""),
		SMTPUseTLS: getEnv("EMAIL_TLS", "false") == "true",

		SMSGatewayURL:    getEnv("SMS_URL", ""),
		SMSApplicationID: getEnv("SMS_ApplicationID", ""),
		SMSPassword:      getEnv("SMS_Password", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:   getEnv("REDIS_PASS", ""),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Relay: invalid duration in %s, using default %s", key, fallback)
	}
	return fallback
}
