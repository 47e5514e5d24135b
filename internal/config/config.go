package config

import (
	"time"

	"callscribe/pkg/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Gemini struct {
		APIKey  string `yaml:"api_key" env:"GEMINI_API_KEY"`
		Model   string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
		BaseURL string `yaml:"base_url" env:"GEMINI_BASE_URL" env-default:"https://generativelanguage.googleapis.com"`
	} `yaml:"gemini"`

	Job struct {
		LanguageMode string        `yaml:"language_mode" env:"LANGUAGE_MODE" env-default:"english-india"`
		MinSpeakers  int           `yaml:"min_speakers" env:"MIN_SPEAKERS" env-default:"2"`
		MaxSpeakers  int           `yaml:"max_speakers" env:"MAX_SPEAKERS" env-default:"2"`
		FetchTimeout time.Duration `yaml:"fetch_timeout" env:"FETCH_TIMEOUT" env-default:"30s"`
		CallTimeout  time.Duration `yaml:"call_timeout" env:"CALL_TIMEOUT" env-default:"120s"`
	} `yaml:"job"`

	Retry struct {
		MaxAttempts     int           `yaml:"max_attempts" env:"RETRY_MAX_ATTEMPTS" env-default:"1"`
		InitialInterval time.Duration `yaml:"initial_interval" env:"RETRY_INITIAL_INTERVAL" env-default:"2s"`
		MaxInterval     time.Duration `yaml:"max_interval" env:"RETRY_MAX_INTERVAL" env-default:"30s"`
	} `yaml:"retry"`

	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute" env:"RATE_LIMIT_RPM" env-default:"15"`
	} `yaml:"rate_limit"`

	Worker struct {
		Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"1"`
	} `yaml:"worker"`

	S3 struct {
		Endpoint  string `yaml:"endpoint" env:"S3_ENDPOINT"`
		AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`
		SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`
		Region    string `yaml:"region" env:"S3_REGION" env-default:"ru-central1"`
	} `yaml:"s3"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
		DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	} `yaml:"redis"`

	Postgres struct {
		DSN string `yaml:"dsn" env:"POSTGRES_DSN"`
	} `yaml:"postgres"`

	RabbitMQ struct {
		URL string `yaml:"url" env:"RABBITMQ_URL"`
	} `yaml:"rabbitmq"`

	Telegram struct {
		Token  string `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
		ChatID int64  `yaml:"chat_id" env:"TELEGRAM_CHAT_ID"`
	} `yaml:"telegram"`
}

func LoadConfig() (*Config, error) {
	// Load .env file
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadConfig("configs/config.yaml", &cfg); err != nil {
		// Fall back to pure env configuration when the yaml file is absent.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		logger.Info("Config loaded from environment")
		return &cfg, nil
	}

	if err := cleanenv.UpdateEnv(&cfg); err != nil {
		return nil, err
	}

	logger.Info("Config loaded successfully")
	return &cfg, nil
}
