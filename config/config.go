package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App        AppConfig
	DB         DBConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Scheduling SchedulingConfig
	SMTP       SMTPConfig
	Translate  TranslateConfig
}

type AppConfig struct {
	Port string
	Env  string
	// ClientBaseURL prefixes reschedule links sent to patients
	ClientBaseURL  string
	RateLimitRPS   float64
	RateLimitBurst int
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

type SchedulingConfig struct {
	SlotLength        int    // minutes
	LunchStart        string // "HH:MM"
	LunchLength       int    // minutes
	TokenTTL          time.Duration
	LockTTL           time.Duration
	NotifyConcurrency int
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type TranslateConfig struct {
	Endpoint string
	APIKey   string
	CacheTTL time.Duration
	Timeout  time.Duration
}

func init() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("CLIENT_BASE_URL", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("SLOT_LENGTH_MINUTES", 15)
	viper.SetDefault("LUNCH_START", "13:00")
	viper.SetDefault("LUNCH_LENGTH_MINUTES", 45)
	viper.SetDefault("NOTIFY_CONCURRENCY", 8)
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("SMTP_FROM", "no-reply@hospital.local")
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// a missing .env is fine, the environment alone can configure the service
	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			ClientBaseURL:  viper.GetString("CLIENT_BASE_URL"),
			RateLimitRPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			RateLimitBurst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: durationOr("JWT_ACCESS_EXPIRY", 12*time.Hour),
		},
		Scheduling: SchedulingConfig{
			SlotLength:        viper.GetInt("SLOT_LENGTH_MINUTES"),
			LunchStart:        viper.GetString("LUNCH_START"),
			LunchLength:       viper.GetInt("LUNCH_LENGTH_MINUTES"),
			TokenTTL:          durationOr("RESCHEDULE_TOKEN_TTL", 24*time.Hour),
			LockTTL:           durationOr("SLOT_LOCK_TTL", 5*time.Second),
			NotifyConcurrency: viper.GetInt("NOTIFY_CONCURRENCY"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetString("SMTP_PORT"),
			Username: viper.GetString("SMTP_USERNAME"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		Translate: TranslateConfig{
			Endpoint: viper.GetString("TRANSLATE_ENDPOINT"),
			APIKey:   viper.GetString("TRANSLATE_API_KEY"),
			CacheTTL: durationOr("TRANSLATE_CACHE_TTL", 24*time.Hour),
			Timeout:  durationOr("TRANSLATE_TIMEOUT", 5*time.Second),
		},
	}

	return config, nil
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
