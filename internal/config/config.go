package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string

	// Google service account (inline JSON, file path or base64 JSON)
	GoogleCredentials string

	// Spreadsheet destinations
	LeadsSheetID            string
	LeadsSheetRange         string
	FeedbackSheetID         string
	FeedbackSheetRange      string
	FeedbackFormSheetID     string
	FeedbackFormSheetRange  string
	FeedbackRequireApproval bool

	// Notifications
	NotifyEnabled       bool
	NotifyEmailTo       []string
	NotifyEmailFrom     string
	NotifyEmailReplyTo  string
	NotifySubjectPrefix string
	NotifyWebhookURL    string
	EmailProvider       string
	ResendAPIKey        string
	SendGridAPIKey      string

	// AWS (SES email provider)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Chat handoff webhook
	BotpressWebhookSecret string
	RedisAddr             string
	RedisPassword         string
	RedisTLS              bool

	// News
	NewsFeeds    string
	NewsCacheTTL time.Duration

	// Support contact shown in generic failure messages
	SupportEmail string
	SupportPhone string

	FormRateLimitRPS   float64
	FormRateLimitBurst int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: SplitList(getEnv("CORS_ALLOWED_ORIGINS", "")),

		GoogleCredentials: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		LeadsSheetID:            getEnv("LEADS_SHEET_ID", ""),
		LeadsSheetRange:         getEnv("LEADS_SHEET_RANGE", "Leads!A1"),
		FeedbackSheetID:         getEnv("FEEDBACK_SHEET_ID", ""),
		FeedbackSheetRange:      getEnv("FEEDBACK_SHEET_RANGE", "Feedback!A1"),
		FeedbackFormSheetID:     getEnv("FEEDBACK_FORM_SHEET_ID", ""),
		FeedbackFormSheetRange:  getEnv("FEEDBACK_FORM_SHEET_RANGE", "Form Responses 1!A2:I"),
		FeedbackRequireApproval: isTruthy(getEnv("FEEDBACK_REQUIRE_APPROVAL", "")),

		NotifyEnabled:       !isFalsy(getEnv("NOTIFY_ENABLED", "")),
		NotifyEmailTo:       SplitList(getEnv("NOTIFY_EMAIL_TO", "")),
		NotifyEmailFrom:     strings.TrimSpace(getEnv("NOTIFY_EMAIL_FROM", "")),
		NotifyEmailReplyTo:  strings.TrimSpace(getEnv("NOTIFY_EMAIL_REPLY_TO", "")),
		NotifySubjectPrefix: strings.TrimSpace(getEnv("NOTIFY_SUBJECT_PREFIX", "Fixam")),
		NotifyWebhookURL:    strings.TrimSpace(getEnv("NOTIFY_WEBHOOK_URL", "")),
		EmailProvider:       strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "auto"))),
		ResendAPIKey:        strings.TrimSpace(getEnv("RESEND_API_KEY", "")),
		SendGridAPIKey:      strings.TrimSpace(getEnv("SENDGRID_API_KEY", "")),

		AWSRegion:           getEnv("AWS_REGION", "eu-west-2"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		BotpressWebhookSecret: strings.TrimSpace(getEnv("BOTPRESS_WEBHOOK_SECRET", "")),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		RedisPassword:         getEnv("REDIS_PASSWORD", ""),
		RedisTLS:              getEnvAsBool("REDIS_TLS", false),

		NewsFeeds:    getEnv("NEWS_FEEDS", ""),
		NewsCacheTTL: getEnvAsDuration("NEWS_CACHE_TTL", 30*time.Minute),

		SupportEmail: getEnv("SUPPORT_EMAIL", "info@fixam.co.uk"),
		SupportPhone: getEnv("SUPPORT_PHONE", "+44 7733 738545"),

		FormRateLimitRPS:   getEnvAsFloat("FORM_RATE_LIMIT_RPS", 0.2),
		FormRateLimitBurst: getEnvAsInt("FORM_RATE_LIMIT_BURST", 5),
	}
}

// SplitList splits a comma separated value, trimming entries and dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// isTruthy mirrors the form checkbox literals: true, on, 1, yes.
func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "on", "1", "yes":
		return true
	}
	return false
}

// isFalsy reports the kill-switch literals: false, 0, off.
func isFalsy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "off":
		return true
	}
	return false
}
