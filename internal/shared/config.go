package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Extract     ExtractConfig     `toml:"extract"`
	Storage     StorageConfig     `toml:"storage"`
	Jobs        JobsConfig        `toml:"jobs"`
	Events      EventsConfig      `toml:"events"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API client credentials and endpoints.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	APIURL       string `toml:"api_url"`
}

// Map returns the credentials in the form accepted by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"token_url":     s.TokenURL,
		"api_url":       s.APIURL,
	}
}

// ExtractConfig selects the playlist pulled by the extractor.
type ExtractConfig struct {
	PlaylistID        string  `toml:"playlist_id"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// StorageConfig describes the bucket and the prefixes used inside it.
//
// Driver is one of "s3", "fs" or "memory".
type StorageConfig struct {
	Driver        string `toml:"driver"`
	Bucket        string `toml:"bucket"`
	Root          string `toml:"root"`
	Endpoint      string `toml:"endpoint"`
	Region        string `toml:"region"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	UseSSL        bool   `toml:"use_ssl"`
	LandingPrefix string `toml:"landing_prefix"`
	ArchivePrefix string `toml:"archive_prefix"`
	OutputPrefix  string `toml:"output_prefix"`
}

// JobsConfig names the transform job and bounds its landing lease.
type JobsConfig struct {
	TransformName string        `toml:"transform_name"`
	LeaseTTL      time.Duration `toml:"lease_ttl"`
}

// EventsConfig configures object-created notifications over NATS.
//
// An empty NATSURL disables the NATS transport.
type EventsConfig struct {
	NATSURL    string `toml:"nats_url"`
	Topic      string `toml:"topic"`
	QueueGroup string `toml:"queue_group"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the defaults from the embedded example config.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
//
// getenv defaults to [os.Getenv]. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}

	overrides := []struct {
		name   string
		target *string
	}{
		{"CLIENT_ID", &c.Credentials.Spotify.ClientID},
		{"CLIENT_SECRET", &c.Credentials.Spotify.ClientSecret},
		{"S3_ACCESS_KEY", &c.Storage.AccessKey},
		{"S3_SECRET_KEY", &c.Storage.SecretKey},
		{"NATS_URL", &c.Events.NATSURL},
	}

	for _, o := range overrides {
		if v := strings.TrimSpace(getenv(o.name)); v != "" {
			*o.target = v
		}
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "s3":
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("%w: storage.endpoint is required for the s3 driver", ErrInvalidConfig)
		}
	case "fs":
		if c.Storage.Root == "" {
			return fmt.Errorf("%w: storage.root is required for the fs driver", ErrInvalidConfig)
		}
	case "memory":
	default:
		return fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	if c.Storage.Bucket == "" {
		return fmt.Errorf("%w: storage.bucket is required", ErrInvalidConfig)
	}

	prefixes := map[string]string{
		"landing_prefix": c.Storage.LandingPrefix,
		"archive_prefix": c.Storage.ArchivePrefix,
		"output_prefix":  c.Storage.OutputPrefix,
	}
	for name, prefix := range prefixes {
		if prefix == "" || !strings.HasSuffix(prefix, "/") {
			return fmt.Errorf("%w: storage.%s must be non-empty and end with /", ErrInvalidConfig, name)
		}
	}
	if c.Storage.LandingPrefix == c.Storage.ArchivePrefix {
		return fmt.Errorf("%w: landing and archive prefixes must differ", ErrInvalidConfig)
	}

	if c.Jobs.TransformName == "" {
		return fmt.Errorf("%w: jobs.transform_name is required", ErrInvalidConfig)
	}

	return nil
}
