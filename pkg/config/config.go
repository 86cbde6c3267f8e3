package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Login rate limit in ulule/limiter notation, e.g. "10-M".
	LoginRateLimit string

	// External document rendering service.
	RendererBaseURL string
	RendererTimeout time.Duration

	// Tracker import (OAuth2 client credentials).
	TrackerBaseURL      string
	TrackerTokenURL     string `mapstructure:"TRACKER_TOKEN_URL"`
	TrackerClientID     string `mapstructure:"TRACKER_CLIENT_ID"`
	TrackerClientSecret string `mapstructure:"TRACKER_CLIENT_SECRET"`

	PosthogAPIKey   string `mapstructure:"POSTHOG_API_KEY"`
	PosthogEndpoint string `mapstructure:"POSTHOG_ENDPOINT"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "billing-ops-app")
	viper.SetDefault("LOGIN_RATE_LIMIT", "10-M")
	viper.SetDefault("RENDERER_BASE_URL", "")
	viper.SetDefault("RENDERER_TIMEOUT", "30s")
	viper.SetDefault("TRACKER_BASE_URL", "")
	viper.SetDefault("TRACKER_TOKEN_URL", "")
	viper.SetDefault("TRACKER_CLIENT_ID", "")
	viper.SetDefault("TRACKER_CLIENT_SECRET", "")
	viper.SetDefault("POSTHOG_API_KEY", "")
	viper.SetDefault("POSTHOG_ENDPOINT", "https://app.posthog.com")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")

	cfg.RendererBaseURL = viper.GetString("RENDERER_BASE_URL")
	if cfg.RendererBaseURL == "" {
		log.Println("Warning: RENDERER_BASE_URL not set. Document rendering will be skipped.")
	}
	rendererTimeoutStr := viper.GetString("RENDERER_TIMEOUT")
	rendererTimeout, err := time.ParseDuration(rendererTimeoutStr)
	if err != nil {
		rendererTimeout = 30 * time.Second
		log.Printf("Warning: Invalid value for RENDERER_TIMEOUT ('%s'). Defaulting to %s.\n", rendererTimeoutStr, rendererTimeout.String())
	}
	cfg.RendererTimeout = rendererTimeout

	cfg.TrackerBaseURL = viper.GetString("TRACKER_BASE_URL")
	cfg.TrackerTokenURL = viper.GetString("TRACKER_TOKEN_URL")
	cfg.TrackerClientID = viper.GetString("TRACKER_CLIENT_ID")
	cfg.TrackerClientSecret = viper.GetString("TRACKER_CLIENT_SECRET")
	if cfg.TrackerBaseURL != "" && (cfg.TrackerTokenURL == "" || cfg.TrackerClientID == "") {
		log.Println("Warning: TRACKER_BASE_URL is set but token credentials are incomplete. Tracker import will not function.")
	}

	cfg.PosthogAPIKey = viper.GetString("POSTHOG_API_KEY")
	cfg.PosthogEndpoint = viper.GetString("POSTHOG_ENDPOINT")

	return cfg, nil
}
