package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	aws_pkg "comart-backend/aws"

	"github.com/joho/godotenv"
)

// Config holds everything the process reads from the environment. Secrets can
// optionally be overlaid from AWS Secrets Manager when AWS_USE_SECRETS=true.
type Config struct {
	Port           string
	Env            string
	Proxy          string
	AllowedOrigins []string

	MongoURI string
	MongoDB  string

	JWTSecret string

	ChapaSecretKey     string
	ChapaWebhookSecret string
	ChapaBaseURL       string

	RedisURL string

	KafkaBrokers     []string
	OrderEventsTopic string

	SNSTopicArn   string
	S3PhotoBucket string

	AllowNegativeStock bool
}

func LoadConfig() (*Config, error) {
	// Missing .env is fine in containers; the environment is already set.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		Env:                getEnv("APP_ENV", "development"),
		Proxy:              os.Getenv("TRUSTED_PROXY"),
		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:            getEnv("MONGO_DB", "comart"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		ChapaSecretKey:     os.Getenv("CHAPA_SECRET_KEY"),
		ChapaWebhookSecret: os.Getenv("CHAPA_WEBHOOK_SECRET"),
		ChapaBaseURL:       getEnv("CHAPA_BASE_URL", "https://api.chapa.co"),
		RedisURL:           os.Getenv("REDIS_URL"),
		OrderEventsTopic:   getEnv("ORDER_EVENTS_TOPIC", "order.events"),
		SNSTopicArn:        os.Getenv("SNS_ORDER_TOPIC_ARN"),
		S3PhotoBucket:      os.Getenv("S3_PHOTO_BUCKET"),
		AllowNegativeStock: getEnv("ALLOW_NEGATIVE_STOCK", "false") == "true",
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	for _, origin := range strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)

			if secrets, err := sm.GetSecretMap(context.Background(), "comart/APP_SECRETS"); err == nil {
				if v := secrets["JWT_SECRET"]; v != "" {
					cfg.JWTSecret = v
				}
				if v := secrets["CHAPA_SECRET_KEY"]; v != "" {
					cfg.ChapaSecretKey = v
				}
				if v := secrets["CHAPA_WEBHOOK_SECRET"]; v != "" {
					cfg.ChapaWebhookSecret = v
				}
				if v := secrets["MONGO_URI"]; v != "" {
					cfg.MongoURI = v
				}
			}
		}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ChapaSecretKey == "" {
		return nil, fmt.Errorf("CHAPA_SECRET_KEY is required")
	}
	if cfg.ChapaWebhookSecret == "" {
		return nil, fmt.Errorf("CHAPA_WEBHOOK_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
