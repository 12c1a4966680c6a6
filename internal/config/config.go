// internal/config/config.go
//
// This package handles configuration and the .lineage directory structure.
// Every vault that uses lineage gets a .lineage/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each vault
	Dir = ".lineage"

	defaultRootMarker = "Void"
	defaultLocale     = "und"
	defaultAckTimeout = 2 * time.Second
)

const defaultProjectConfigYAML = `# lineage vault configuration
version: 1

# BCP 47 tag used to order documents inside a partition ("und" = root collation).
locale: und

# A partition whose path contains this marker is the root partition: dotless
# names must match a document name exactly there.
root_marker: Void

partitions:
  void:
    path: Void/
    alias:
      founder: Founder
      ancestor: Ancestor
      father: Father
  celestia:
    path: Celestia/
    alias:
      founder: Founder
      ancestor: Ancestor
      father: Father

# Cadence anchors. templates name the document anchoring each cadence inside
# the hierarchy; celestia_paths name its genesis document in the celestia partition.
periodic:
  templates:
    weekly: Events.Weekly
    monthly: Events.Monthly
    quarterly: Events.Quarterly
    yearly: Events.Yearly
  celestia_paths:
    weekly: Genesis.Weekly
    monthly: Genesis.Monthly
    quarterly: Genesis.Quarterly
    yearly: Genesis.Yearly

storage:
  # How long a create waits for the vault watcher to acknowledge the new file.
  ack_timeout: 2s
`

// AliasConfig is the template bundle attached to a partition.
type AliasConfig struct {
	Founder  string `yaml:"founder"`
	Ancestor string `yaml:"ancestor"`
	Father   string `yaml:"father"`
}

// PartitionConfig declares one document partition (path prefix + aliases).
type PartitionConfig struct {
	Path  string      `yaml:"path"`
	Alias AliasConfig `yaml:"alias"`
}

// PartitionsConfig names the two partitions the resolver works across.
type PartitionsConfig struct {
	Void     PartitionConfig `yaml:"void"`
	Celestia PartitionConfig `yaml:"celestia"`
}

// CadenceValues holds one value per cadence.
type CadenceValues struct {
	Weekly    string `yaml:"weekly"`
	Monthly   string `yaml:"monthly"`
	Quarterly string `yaml:"quarterly"`
	Yearly    string `yaml:"yearly"`
}

// PeriodicConfig captures the template and bootstrap keys of every cadence.
type PeriodicConfig struct {
	Templates     CadenceValues `yaml:"templates"`
	CelestiaPaths CadenceValues `yaml:"celestia_paths"`
}

// StorageConfig tunes the vault storage layer.
type StorageConfig struct {
	AckTimeout time.Duration `yaml:"ack_timeout"`
}

// ProjectConfig models .lineage/config.yaml.
type ProjectConfig struct {
	Version    int              `yaml:"version"`
	Locale     string           `yaml:"locale"`
	RootMarker string           `yaml:"root_marker"`
	Partitions PartitionsConfig `yaml:"partitions"`
	Periodic   PeriodicConfig   `yaml:"periodic"`
	Storage    StorageConfig    `yaml:"storage"`
}

// Env carries overrides read from the process environment.
type Env struct {
	Vault    string `env:"LINEAGE_VAULT"`
	LogLevel string `env:"LINEAGE_LOG_LEVEL" envDefault:"info"`
	Editor   string `env:"EDITOR"`
}

// Config holds the runtime configuration for lineage.
type Config struct {
	// VaultDir is the root of the document vault
	VaultDir string

	// ProjectDir is VaultDir/.lineage
	ProjectDir string

	Env     Env
	Project ProjectConfig
}

// ParseEnv loads overrides from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("config: parse env: %w", err)
	}
	return e, nil
}

// InitDir creates the .lineage directory structure in the given vault.
//
// Structure created:
// .lineage/
// ├── config.yaml
// └── logs/   <- lineage.log (structured) and notices.log
func InitDir(vaultDir string) error {
	root := filepath.Join(vaultDir, Dir)
	if err := os.MkdirAll(filepath.Join(root, "logs"), 0o755); err != nil {
		return err
	}
	return ensureProjectConfig(filepath.Join(root, "config.yaml"))
}

// NewConfig creates a Config for vaultDir. LINEAGE_VAULT, when set, wins
// over the argument.
func NewConfig(vaultDir string) (*Config, error) {
	e, err := ParseEnv()
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(e.Vault); v != "" {
		vaultDir = v
	}
	abs, err := filepath.Abs(vaultDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve vault %s: %w", vaultDir, err)
	}

	cfg := &Config{
		VaultDir:   abs,
		ProjectDir: filepath.Join(abs, Dir),
		Env:        e,
		Project:    defaultProjectConfig(),
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.ProjectDir, "logs")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.ProjectDir, "config.yaml")
}

// Save persists the current project configuration.
func (c *Config) Save() error {
	return c.saveProjectConfig()
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	// Keys missing from the file keep their default values.
	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	var pc ProjectConfig
	// The embedded default is known-good; a failure here is a programming error.
	if err := yaml.Unmarshal([]byte(defaultProjectConfigYAML), &pc); err != nil {
		panic(fmt.Sprintf("config: default config: %v", err))
	}
	pc.applyDefaults()
	pc.normalize()
	return pc
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if strings.TrimSpace(pc.Locale) == "" {
		pc.Locale = defaultLocale
	}
	if strings.TrimSpace(pc.RootMarker) == "" {
		pc.RootMarker = defaultRootMarker
	}
	if pc.Storage.AckTimeout <= 0 {
		pc.Storage.AckTimeout = defaultAckTimeout
	}
}

func (pc *ProjectConfig) normalize() {
	pc.Locale = strings.TrimSpace(pc.Locale)
	pc.RootMarker = strings.TrimSpace(pc.RootMarker)
	pc.Partitions.Void.normalize()
	pc.Partitions.Celestia.normalize()
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if err := pc.Partitions.Void.validate(); err != nil {
		return fmt.Errorf("partitions.void: %w", err)
	}
	if err := pc.Partitions.Celestia.validate(); err != nil {
		return fmt.Errorf("partitions.celestia: %w", err)
	}
	if pc.Partitions.Void.Path == pc.Partitions.Celestia.Path {
		return fmt.Errorf("partitions.void and partitions.celestia must use different paths")
	}
	if err := pc.Periodic.Templates.validate(); err != nil {
		return fmt.Errorf("periodic.templates.%w", err)
	}
	if err := pc.Periodic.CelestiaPaths.validate(); err != nil {
		return fmt.Errorf("periodic.celestia_paths.%w", err)
	}
	return nil
}

// normalize forces a single trailing slash so path + name + ".md" is a valid
// vault-relative path.
func (p *PartitionConfig) normalize() {
	trimmed := strings.Trim(filepath.ToSlash(strings.TrimSpace(p.Path)), "/")
	if trimmed == "" {
		p.Path = ""
		return
	}
	p.Path = trimmed + "/"
}

func (p PartitionConfig) validate() error {
	if p.Path == "" {
		return fmt.Errorf("path is required")
	}
	if strings.Contains(p.Path, "..") {
		return fmt.Errorf("path %q must stay inside the vault", p.Path)
	}
	return nil
}

// Get returns the value for a cadence key ("weekly", "monthly", ...).
func (v CadenceValues) Get(key string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "weekly":
		return v.Weekly, true
	case "monthly":
		return v.Monthly, true
	case "quarterly":
		return v.Quarterly, true
	case "yearly":
		return v.Yearly, true
	default:
		return "", false
	}
}

func (v CadenceValues) validate() error {
	for _, entry := range []struct{ key, value string }{
		{"weekly", v.Weekly},
		{"monthly", v.Monthly},
		{"quarterly", v.Quarterly},
		{"yearly", v.Yearly},
	} {
		if err := ValidateName(entry.value); err != nil {
			return fmt.Errorf("%s: %w", entry.key, err)
		}
	}
	return nil
}

// ValidateName rejects values that cannot name a document: empty or padded
// strings, empty dot-tokens, and values carrying the file suffix.
func ValidateName(value string) error {
	if value == "" {
		return fmt.Errorf("value is required")
	}
	if strings.TrimSpace(value) != value {
		return fmt.Errorf("%q has surrounding whitespace", value)
	}
	if strings.HasSuffix(value, ".md") {
		return fmt.Errorf("%q must not include the .md suffix", value)
	}
	for _, token := range strings.Split(value, ".") {
		if token == "" {
			return fmt.Errorf("%q has an empty name segment", value)
		}
	}
	return nil
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644)
}

func (c *Config) saveProjectConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.applyDefaults()
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.ProjectDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure lineage dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ProjectConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}
