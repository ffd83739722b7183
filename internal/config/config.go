package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	S3     S3Config
	App    AppConfig
}

type ServerConfig struct {
	Host string
	Port string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	BucketName      string
	Region          string
}

type AppConfig struct {
	AuthToken   string
	WebhookURL  string
	MaxFiles    int
	MaxFileSize int64
	LogPath     string
}

func Load() (*Config, error) {
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_ACCESS_KEY_ID", "")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_USE_SSL", true)
	viper.SetDefault("S3_BUCKET_NAME", "")
	viper.SetDefault("S3_REGION", "eu-west-2")
	viper.SetDefault("APP_TOKEN", "")
	viper.SetDefault("WEBHOOK_URL", "")
	viper.SetDefault("APP_MAX_FILES", 20)
	viper.SetDefault("APP_MAX_FILE_SIZE", 12*1024*1024) // 12 MiB
	viper.SetDefault("LOG_PATH", "")

	viper.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("SERVER_HOST"),
			Port: viper.GetString("SERVER_PORT"),
		},
		S3: S3Config{
			Endpoint:        viper.GetString("S3_ENDPOINT"),
			AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
			UseSSL:          viper.GetBool("S3_USE_SSL"),
			BucketName:      viper.GetString("S3_BUCKET_NAME"),
			Region:          viper.GetString("S3_REGION"),
		},
		App: AppConfig{
			AuthToken:   viper.GetString("APP_TOKEN"),
			WebhookURL:  viper.GetString("WEBHOOK_URL"),
			MaxFiles:    viper.GetInt("APP_MAX_FILES"),
			MaxFileSize: viper.GetInt64("APP_MAX_FILE_SIZE"),
			LogPath:     viper.GetString("LOG_PATH"),
		},
	}

	return cfg, nil
}

// MissingRequired reports which of the operationally required values are
// unset. The server still starts without them so that the health endpoint
// stays available; requests touching the missing service will fail.
func (c *Config) MissingRequired() []string {
	var missing []string
	if c.S3.BucketName == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	if c.App.WebhookURL == "" {
		missing = append(missing, "WEBHOOK_URL")
	}
	if c.App.AuthToken == "" {
		missing = append(missing, "APP_TOKEN")
	}
	return missing
}
