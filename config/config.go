// Package config loads the confirmation page configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"confirmflow/credential"
)

// Source kinds.
const (
	SourceSheets   = "sheets"
	SourceXLSX     = "xlsx"
	SourcePostgres = "postgres"
)

// Config holds all confirmflow configuration.
type Config struct {
	Server      ServerConfig              `yaml:"server"`
	Source      SourceConfig              `yaml:"source"`
	Credentials credential.ServiceAccount `yaml:"gservice_account"`
	Form        FormConfig                `yaml:"form"`
	Attachments AttachmentsConfig         `yaml:"attachments"`
	Logging     LoggingConfig             `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
}

// SourceConfig selects and configures the order data source.
type SourceConfig struct {
	Kind          string `yaml:"kind"` // sheets, xlsx, postgres
	SpreadsheetID string `yaml:"ordenes_bordado_sheet_id"`
	Worksheet     string `yaml:"worksheet"`
	XLSXPath      string `yaml:"xlsx_path"`
	DatabaseURL   string `yaml:"database_url"`
	Table         string `yaml:"table"`
}

// FormConfig configures the decision form token.
type FormConfig struct {
	TokenSecret string `yaml:"token_secret"`
	TokenTTL    string `yaml:"token_ttl"`
}

// AttachmentsConfig configures how design attachments are classified.
type AttachmentsConfig struct {
	Probe        bool   `yaml:"probe"` // HEAD-probe URLs without an image extension
	ProbeTimeout string `yaml:"probe_timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "10s",
			WriteTimeout: "30s",
		},
		Source: SourceConfig{
			Kind:      SourceSheets,
			Worksheet: "OrdenesBordado",
			Table:     "ordenes_bordado",
		},
		Form: FormConfig{
			TokenTTL: "2h",
		},
		Attachments: AttachmentsConfig{
			Probe:        true,
			ProbeTimeout: "3s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults;
// environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if kind := os.Getenv("ORDER_SOURCE"); kind != "" {
		c.Source.Kind = kind
	}
	if id := os.Getenv("ORDENES_BORDADO_SHEET_ID"); id != "" {
		c.Source.SpreadsheetID = id
	}
	if path := os.Getenv("ORDER_XLSX_PATH"); path != "" {
		c.Source.XLSXPath = path
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Source.DatabaseURL = url
	}
	if secret := os.Getenv("FORM_TOKEN_SECRET"); secret != "" {
		c.Form.TokenSecret = secret
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	// Secret stores commonly hold the key outside the YAML block.
	if key := os.Getenv("GSERVICE_ACCOUNT_PRIVATE_KEY"); key != "" {
		c.Credentials.PrivateKey = key
	}
}

// ValidSources lists the supported order sources.
var ValidSources = []string{SourceSheets, SourceXLSX, SourcePostgres}

// Validate checks that the selected source has what it needs. Credential
// completeness for the sheets source is checked by the credential loader at
// request time so the page can report it.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceSheets:
		if c.Source.SpreadsheetID == "" {
			return fmt.Errorf("sheets source requires ordenes_bordado_sheet_id (or ORDENES_BORDADO_SHEET_ID)")
		}
	case SourceXLSX:
		if c.Source.XLSXPath == "" {
			return fmt.Errorf("xlsx source requires xlsx_path (or ORDER_XLSX_PATH)")
		}
	case SourcePostgres:
		if c.Source.DatabaseURL == "" {
			return fmt.Errorf("postgres source requires database_url (or DATABASE_URL)")
		}
	default:
		return fmt.Errorf("invalid order source: %q (valid: %v)", c.Source.Kind, ValidSources)
	}
	return nil
}

// GetReadTimeout returns the server read timeout.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 10*time.Second)
}

// GetWriteTimeout returns the server write timeout.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 30*time.Second)
}

// GetTokenTTL returns the form token lifetime.
func (c *Config) GetTokenTTL() time.Duration {
	return parseDuration(c.Form.TokenTTL, 2*time.Hour)
}

// GetProbeTimeout returns the attachment probe timeout.
func (c *Config) GetProbeTimeout() time.Duration {
	return parseDuration(c.Attachments.ProbeTimeout, 3*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
