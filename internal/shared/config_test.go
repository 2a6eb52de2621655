package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Storage.Bucket != "spotify-streaming-etl-pipeline" {
			t.Errorf("expected default bucket, got %s", config.Storage.Bucket)
		}
		if config.Storage.LandingPrefix != "raw_data/to_process/" {
			t.Errorf("expected landing prefix raw_data/to_process/, got %s", config.Storage.LandingPrefix)
		}
		if config.Storage.ArchivePrefix != "raw_data/processed/" {
			t.Errorf("expected archive prefix raw_data/processed/, got %s", config.Storage.ArchivePrefix)
		}
		if config.Storage.OutputPrefix != "transformed_data/" {
			t.Errorf("expected output prefix transformed_data/, got %s", config.Storage.OutputPrefix)
		}
		if config.Jobs.TransformName != "transform_spotify_data" {
			t.Errorf("expected job name transform_spotify_data, got %s", config.Jobs.TransformName)
		}
		if config.Jobs.LeaseTTL != 30*time.Minute {
			t.Errorf("expected lease ttl 30m, got %v", config.Jobs.LeaseTTL)
		}
		if config.Extract.PlaylistID != "4Q8uTgbO8BRVVVqemK9KId" {
			t.Errorf("expected default playlist id, got %s", config.Extract.PlaylistID)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[storage]
driver = "s3"
bucket = "etl-test"
endpoint = "minio:9000"

[jobs]
lease_ttl = "5m"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Storage.Driver != "s3" || config.Storage.Bucket != "etl-test" {
			t.Errorf("expected s3 driver with bucket etl-test, got %s/%s", config.Storage.Driver, config.Storage.Bucket)
		}
		if config.Jobs.LeaseTTL != 5*time.Minute {
			t.Errorf("expected lease ttl 5m, got %v", config.Jobs.LeaseTTL)
		}
		if config.Storage.LandingPrefix != "raw_data/to_process/" {
			t.Errorf("missing values should keep defaults, got landing prefix %q", config.Storage.LandingPrefix)
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		config := DefaultConfig()
		env := map[string]string{
			"CLIENT_ID":     "env-id",
			"CLIENT_SECRET": " env-secret ",
			"NATS_URL":      "",
		}

		config.ApplyEnv(func(k string) string { return env[k] })

		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("expected env-id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env-secret" {
			t.Errorf("expected trimmed env-secret, got %q", config.Credentials.Spotify.ClientSecret)
		}
		if config.Events.NATSURL != "" {
			t.Errorf("empty variables should not override, got %q", config.Events.NATSURL)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "ftp" }},
		{name: "s3 without endpoint", mutate: func(c *Config) { c.Storage.Driver = "s3"; c.Storage.Endpoint = "" }},
		{name: "fs without root", mutate: func(c *Config) { c.Storage.Driver = "fs"; c.Storage.Root = "" }},
		{name: "empty bucket", mutate: func(c *Config) { c.Storage.Bucket = "" }},
		{name: "prefix without slash", mutate: func(c *Config) { c.Storage.LandingPrefix = "raw_data/to_process" }},
		{name: "same landing and archive", mutate: func(c *Config) { c.Storage.ArchivePrefix = c.Storage.LandingPrefix }},
		{name: "empty job name", mutate: func(c *Config) { c.Jobs.TransformName = "" }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			err := config.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
