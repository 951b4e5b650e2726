package config

import (
	"fmt"
	"os"
)

type Config struct {
	GinMode string
	GinPort string

	DBDSN     string
	JWTSecret string

	// M-Pesa Daraja credentials
	MpesaConsumerKey    string
	MpesaConsumerSecret string
	MpesaShortCode      string
	MpesaPasskey        string
	MpesaEnvironment    string // sandbox | production
	MpesaCallbackURL    string

	// Optional S3 photo storage; uploads disabled when bucket is empty
	S3Region        string
	S3Bucket        string
	S3Prefix        string
	S3PublicBaseURL string
}

func Load() (*Config, error) {
	getEnv := func(key string, required bool) (string, error) {
		value := os.Getenv(key)
		if value == "" && required {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg := &Config{}
	var err error

	cfg.GinMode = os.Getenv("GIN_MODE")
	if cfg.GinMode == "" {
		cfg.GinMode = "debug"
	}
	cfg.GinPort = os.Getenv("GIN_PORT")
	if cfg.GinPort == "" {
		cfg.GinPort = "8080"
	}

	if cfg.DBDSN, err = getEnv("DB_DSN", true); err != nil {
		return nil, err
	}
	if cfg.JWTSecret, err = getEnv("JWT_SECRET", true); err != nil {
		return nil, err
	}

	if cfg.MpesaConsumerKey, err = getEnv("MPESA_CONSUMER_KEY", true); err != nil {
		return nil, err
	}
	if cfg.MpesaConsumerSecret, err = getEnv("MPESA_CONSUMER_SECRET", true); err != nil {
		return nil, err
	}
	if cfg.MpesaShortCode, err = getEnv("MPESA_BUSINESS_SHORT_CODE", true); err != nil {
		return nil, err
	}
	if cfg.MpesaPasskey, err = getEnv("MPESA_PASSKEY", true); err != nil {
		return nil, err
	}
	if cfg.MpesaCallbackURL, err = getEnv("MPESA_CALLBACK_URL", true); err != nil {
		return nil, err
	}
	cfg.MpesaEnvironment = os.Getenv("MPESA_ENVIRONMENT")
	if cfg.MpesaEnvironment == "" {
		cfg.MpesaEnvironment = "sandbox"
	}
	if cfg.MpesaEnvironment != "sandbox" && cfg.MpesaEnvironment != "production" {
		return nil, fmt.Errorf("MPESA_ENVIRONMENT must be sandbox or production, got %q", cfg.MpesaEnvironment)
	}

	cfg.S3Region = os.Getenv("S3_REGION")
	cfg.S3Bucket = os.Getenv("S3_BUCKET")
	cfg.S3Prefix = os.Getenv("S3_PREFIX")
	cfg.S3PublicBaseURL = os.Getenv("S3_PUBLIC_BASE_URL")

	return cfg, nil
}
