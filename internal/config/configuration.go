package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT"`
	RateLimitRPS  int `mapstructure:"RATE_LIMIT_RPS"`

	// Database Configuration. An empty DSN selects the in-memory store.
	DatabaseDSN     string `mapstructure:"DATABASE_DSN"`
	DatabaseRetries int    `mapstructure:"DATABASE_RETRIES"`

	// External Tool Configuration
	YtdlpPath          string `mapstructure:"YTDLP_PATH" validate:"required"`
	FfmpegPath         string `mapstructure:"FFMPEG_PATH"`
	CookiesFile        string `mapstructure:"COOKIES_FILE" validate:"omitempty,file"`
	CookiesFromBrowser string `mapstructure:"COOKIES_FROM_BROWSER"`
	TmpDir             string `mapstructure:"TMP_DIR"`

	// Extraction Configuration
	ProbeTimeoutSeconds int `mapstructure:"PROBE_TIMEOUT_SECONDS" validate:"gt=0"`
	ToolTimeoutSeconds  int `mapstructure:"TOOL_TIMEOUT_SECONDS" validate:"gt=0"`

	// Sample Fallback Configuration
	SampleFallbackEnabled bool   `mapstructure:"SAMPLE_FALLBACK_ENABLED"`
	SampleMediaURL        string `mapstructure:"SAMPLE_MEDIA_URL" validate:"omitempty,url"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}

		// Handle nested structs
		if field.Type.Kind() == reflect.Struct && tag == "" {
			nestedTyp := fieldVal.Type()
			for j := 0; j < fieldVal.NumField(); j++ {
				nestedField := nestedTyp.Field(j)
				nestedTag := nestedField.Tag.Get("mapstructure")
				if nestedTag != "" {
					viper.BindEnv(nestedTag)
				}
			}
		}
	}
	slog.Info("Environment variables bound", "config", c)
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8080)
	viper.SetDefault("RATE_LIMIT_RPS", 20)
	viper.SetDefault("DATABASE_RETRIES", 10)
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("PROBE_TIMEOUT_SECONDS", 4)
	viper.SetDefault("TOOL_TIMEOUT_SECONDS", 60)
	viper.SetDefault("SAMPLE_FALLBACK_ENABLED", true)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "config", cfg)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
