package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for custody.
type Config struct {
	BaseDir        string           `toml:"base_dir"`
	TranscriptsDir string           `toml:"transcripts_dir"`
	MirrorDir      string           `toml:"mirror_dir,omitempty"`
	LogDir         string           `toml:"log_dir"`
	Database       DatabaseConfig   `toml:"database"`
	Notary         NotaryConfig     `toml:"notary"`
	Encryption     EncryptionConfig `toml:"encryption"`
	Search         SearchConfig     `toml:"search"`
	S3             S3Config         `toml:"s3"`
}

// S3Config holds settings shared by all s3-type storage locations.
// Empty credentials fall back to the default AWS credential chain.
type S3Config struct {
	Region    string `toml:"region,omitempty"`
	AccessKey string `toml:"access_key,omitempty"`
	SecretKey string `toml:"secret_key,omitempty"`
}

// DatabaseConfig represents configuration for the metadata database.
// This uses a tagged union pattern - the Type field determines which other
// fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NotaryConfig holds credentials and endpoints for notarization services.
// Endpoints default to the public services when empty; tests point them at
// local servers.
type NotaryConfig struct {
	GistToken    string `toml:"gist_token,omitempty"`
	GistEndpoint string `toml:"gist_endpoint,omitempty"`
	OTSEndpoint  string `toml:"ots_endpoint,omitempty"`
	WebhookURL   string `toml:"webhook_url,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for encrypted
// backup copies.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// SearchConfig holds settings for the full-text transcript index.
type SearchConfig struct {
	Enabled   bool   `toml:"enabled"`
	IndexPath string `toml:"index_path,omitempty"`
}

// NewConfig creates a Config with the provided base directory and default
// sub-paths.
func NewConfig(baseDir string) *Config {
	return &Config{
		BaseDir:        baseDir,
		TranscriptsDir: filepath.Join(baseDir, "transcripts"),
		LogDir:         filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "custody.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "custody.key"),
		},
		Search: SearchConfig{
			Enabled:   true,
			IndexPath: filepath.Join(baseDir, "index.bleve"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the
// provided Config. Fails if a config file already exists there.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
