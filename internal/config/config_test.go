package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, 20, cfg.App.MaxFiles)
	require.Equal(t, int64(12*1024*1024), cfg.App.MaxFileSize)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "listing-photos")
	t.Setenv("WEBHOOK_URL", "https://hooks.test/listing")
	t.Setenv("APP_TOKEN", "secret")
	t.Setenv("APP_MAX_FILE_SIZE", "1024")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "listing-photos", cfg.S3.BucketName)
	require.Equal(t, "https://hooks.test/listing", cfg.App.WebhookURL)
	require.Equal(t, "secret", cfg.App.AuthToken)
	require.Equal(t, int64(1024), cfg.App.MaxFileSize)
	require.Empty(t, cfg.MissingRequired())
}

func TestMissingRequired(t *testing.T) {
	t.Setenv("S3_BUCKET_NAME", "")
	t.Setenv("WEBHOOK_URL", "")
	t.Setenv("APP_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	require.ElementsMatch(t,
		[]string{"S3_BUCKET_NAME", "WEBHOOK_URL", "APP_TOKEN"},
		cfg.MissingRequired())
}
