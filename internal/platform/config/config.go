package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	EventSinkLog      = "log"
	EventSinkKafka    = "kafka"
	EventSinkRabbitMQ = "rabbitmq"
	EventSinkEmail    = "email"

	// DefaultBankOrganizationID matches the bank row seeded by the migrations.
	DefaultBankOrganizationID = "00000000-0000-0000-0000-000000000001"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	EnableDBCheck     bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	StorageDriver      string
	BankOrganizationID string

	// Domain event delivery
	EventSink       string
	EventBufferSize int
	KafkaBroker     string `mapstructure:"KAFKA_BROKER"`
	KafkaTopic      string `mapstructure:"KAFKA_TOPIC"`
	RabbitMQURL     string `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue   string `mapstructure:"RABBITMQ_QUEUE"`
	SMTPAddr        string `mapstructure:"SMTP_ADDR"`
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPUser        string `mapstructure:"SMTP_USER"`
	SMTPPassword    string `mapstructure:"SMTP_PASSWORD"`
	NotifyFrom      string `mapstructure:"NOTIFY_FROM"`
	NotifyTo        []string

	MaturitySweepSchedule string
	RateLimit             string
	CORSAllowedOrigins    []string
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
	viper.SetDefault("JWT_ISSUER", "invoice-finance-app")
	viper.SetDefault("STORAGE_DRIVER", StorageDriverPostgres)
	viper.SetDefault("BANK_ORGANIZATION_ID", DefaultBankOrganizationID)
	viper.SetDefault("EVENT_SINK", EventSinkLog)
	viper.SetDefault("EVENT_BUFFER_SIZE", 256)
	viper.SetDefault("KAFKA_TOPIC", "invoice-events")
	viper.SetDefault("RABBITMQ_QUEUE", "invoice-events")
	viper.SetDefault("MATURITY_SWEEP_SCHEDULE", "@every 1h")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// This allows overriding defaults with .env file values, which can then be overridden by actual environment variables.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "a-very-secret-key-should-be-longer-and-random" // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	// Load JWT Expiry Duration (e.g., "60m", "1h")
	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		if jwtExpiryStr != "" {
			log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
		}
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration

	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")
	if cfg.JWTIssuer == "" {
		cfg.JWTIssuer = "invoice-finance-app"
		log.Printf("Warning: JWT_ISSUER not set. Defaulting to %s.\n", cfg.JWTIssuer)
	}

	cfg.StorageDriver = strings.ToLower(viper.GetString("STORAGE_DRIVER"))
	switch cfg.StorageDriver {
	case StorageDriverPostgres:
		if cfg.DatabaseURL == "" {
			log.Println("Warning: PGSQL_URL environment variable not set.")
		}
	case StorageDriverMemory:
		log.Println("Warning: STORAGE_DRIVER=memory, data is lost on restart.")
	default:
		log.Printf("Warning: unknown STORAGE_DRIVER ('%s'). Defaulting to %s.\n", cfg.StorageDriver, StorageDriverPostgres)
		cfg.StorageDriver = StorageDriverPostgres
	}

	cfg.BankOrganizationID = viper.GetString("BANK_ORGANIZATION_ID")
	if cfg.BankOrganizationID == "" {
		cfg.BankOrganizationID = DefaultBankOrganizationID
	}

	cfg.EventSink = strings.ToLower(viper.GetString("EVENT_SINK"))
	cfg.EventBufferSize = viper.GetInt("EVENT_BUFFER_SIZE")
	if cfg.EventBufferSize <= 0 {
		log.Printf("Warning: Invalid EVENT_BUFFER_SIZE (%d). Defaulting to 256.\n", cfg.EventBufferSize)
		cfg.EventBufferSize = 256
	}
	cfg.KafkaBroker = viper.GetString("KAFKA_BROKER")
	cfg.KafkaTopic = viper.GetString("KAFKA_TOPIC")
	cfg.RabbitMQURL = viper.GetString("RABBITMQ_URL")
	cfg.RabbitMQQueue = viper.GetString("RABBITMQ_QUEUE")
	cfg.SMTPAddr = viper.GetString("SMTP_ADDR")
	cfg.SMTPHost = viper.GetString("SMTP_HOST")
	cfg.SMTPUser = viper.GetString("SMTP_USER")
	cfg.SMTPPassword = viper.GetString("SMTP_PASSWORD")
	cfg.NotifyFrom = viper.GetString("NOTIFY_FROM")
	cfg.NotifyTo = splitList(viper.GetString("NOTIFY_TO"))

	switch cfg.EventSink {
	case EventSinkLog:
	case EventSinkKafka:
		if cfg.KafkaBroker == "" {
			log.Println("Warning: EVENT_SINK=kafka but KAFKA_BROKER not set. Falling back to log sink.")
			cfg.EventSink = EventSinkLog
		}
	case EventSinkRabbitMQ:
		if cfg.RabbitMQURL == "" {
			log.Println("Warning: EVENT_SINK=rabbitmq but RABBITMQ_URL not set. Falling back to log sink.")
			cfg.EventSink = EventSinkLog
		}
	case EventSinkEmail:
		if cfg.SMTPAddr == "" || len(cfg.NotifyTo) == 0 {
			log.Println("Warning: EVENT_SINK=email but SMTP_ADDR or NOTIFY_TO not set. Falling back to log sink.")
			cfg.EventSink = EventSinkLog
		}
	default:
		log.Printf("Warning: unknown EVENT_SINK ('%s'). Defaulting to %s.\n", cfg.EventSink, EventSinkLog)
		cfg.EventSink = EventSinkLog
	}

	cfg.MaturitySweepSchedule = viper.GetString("MATURITY_SWEEP_SCHEDULE")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
