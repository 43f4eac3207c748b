package config

import "os"

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
	PublicURL  string
}

type Config struct {
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRedirectURI   string
	ListingClientID     string
	ListingClientSecret string
	ListingRedirectURI  string
	ListingAPIURL       string
	GenerationAPIURL    string
	GenerationAPIKey    string
	PaymentWebhookKey   string
	PostgresURI         string
	RedisURI            string
	FrontendURL         string
	R2                  R2
	SecretKey           string
	CookieName          string
}

func LoadConfig() *Config {
	return &Config{
		GoogleClientID:      getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURI:   getEnv("GOOGLE_REDIRECT_URI", ""),
		ListingClientID:     getEnv("LISTING_CLIENT_ID", ""),
		ListingClientSecret: getEnv("LISTING_CLIENT_SECRET", ""),
		ListingRedirectURI:  getEnv("LISTING_REDIRECT_URI", ""),
		ListingAPIURL:       getEnv("LISTING_API_URL", ""),
		GenerationAPIURL:    getEnv("GENERATION_API_URL", ""),
		GenerationAPIKey:    getEnv("GENERATION_API_KEY", ""),
		PaymentWebhookKey:   getEnv("PAYMENT_WEBHOOK_KEY", ""),
		PostgresURI:         getEnv("POSTGRES_URI", ""),
		RedisURI:            getEnv("REDIS_URI", ""),
		FrontendURL:         getEnv("FRONTEND_URL", "http://localhost:5173"),
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
			PublicURL:  getEnv("R2_PUBLIC_URL", ""),
		},
		SecretKey:  getEnv("SECRET_KEY", ""),
		CookieName: getEnv("COOKIE_NAME", "listforge_session"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
