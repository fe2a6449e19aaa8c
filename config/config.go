package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Suna       SunaConfig       `mapstructure:"suna"`
	Generation GenerationConfig `mapstructure:"generation"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Google     GoogleConfig     `mapstructure:"google"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port" validate:"required"`
	Mode           string   `mapstructure:"mode" validate:"oneof=debug release test"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres mongo"`
	Host            string        `mapstructure:"host" validate:"required_if=Driver postgres"`
	Port            string        `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required_if=Driver postgres"`
	SSLMode         string        `mapstructure:"sslmode"`
	TimeZone        string        `mapstructure:"timezone"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	ConnectAttempts uint          `mapstructure:"connect_attempts" validate:"gte=1"`
	LogSQL          bool          `mapstructure:"log_sql"`
}

// DSN cho PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SupabaseConfig struct {
	URL           string `mapstructure:"url" validate:"required,url"`
	AnonKey       string `mapstructure:"anon_key"`
	ServiceKey    string `mapstructure:"service_key" validate:"required"`
	JWTSecret     string `mapstructure:"jwt_secret"`
	StorageBucket string `mapstructure:"storage_bucket" validate:"required"`
}

type SunaConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GenerationConfig struct {
	StoryProvider string `mapstructure:"story_provider" validate:"oneof=suna gemini"`
	AudioProvider string `mapstructure:"audio_provider" validate:"oneof=suna google_tts"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key" validate:"required_if=Enabled true"`
	Model  string `mapstructure:"model"`
	// Load gán từ generation.story_provider
	Enabled bool `mapstructure:"-"`
}

type GoogleConfig struct {
	CredentialsFile string `mapstructure:"credentials_file" validate:"required_if=Enabled true"`
	Enabled         bool   `mapstructure:"-"`
}

type AuthConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// giữ nguyên tên biến môi trường của bản deploy đang chạy
var envBindings = map[string]string{
	"server.port":               "PORT",
	"database.host":             "DB_HOST",
	"database.port":             "DB_PORT",
	"database.user":             "DB_USER",
	"database.password":         "DB_PASSWORD",
	"database.name":             "DB_NAME",
	"supabase.url":              "SUPABASE_URL",
	"supabase.anon_key":         "SUPABASE_KEY",
	"supabase.service_key":      "SUPABASE_SERVICE_ROLE_KEY",
	"supabase.jwt_secret":       "SUPABASE_JWT_SECRET",
	"suna.base_url":             "SUNA_API_BASE_URL",
	"gemini.api_key":            "GEMINI_API_KEY",
	"google.credentials_file":   "GOOGLE_CREDENTIALS_JSON",
	"mongo.uri":                 "MONGODB_URI",
	"redis.addr":                "REDIS_ADDR",
	"redis.password":            "REDIS_PASSWORD",
	"generation.story_provider": "STORY_PROVIDER",
	"generation.audio_provider": "AUDIO_PROVIDER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", 10*time.Minute)
	v.SetDefault("database.connect_attempts", 5)

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "storybook")

	v.SetDefault("supabase.storage_bucket", "uploads")
	v.SetDefault("suna.base_url", "https://suna-1.learnwise.app")
	v.SetDefault("suna.timeout", 2*time.Minute)

	v.SetDefault("generation.story_provider", "suna")
	v.SetDefault("generation.audio_provider", "suna")
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("auth.cache_ttl", 5*time.Minute)

	v.SetDefault("log.file", "storybook.log")
	v.SetDefault("log.level", "info")
}

// Load đọc config.yaml (nếu có) rồi ghi đè bằng biến môi trường
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Gemini.Enabled = cfg.Generation.StoryProvider == "gemini"
	cfg.Google.Enabled = cfg.Generation.AudioProvider == "google_tts"

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
