// Package config loads eightd settings from a YAML or JSON file with
// environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"eightd/internal/evidence"
	"eightd/internal/logging"
	"eightd/internal/sections"
)

// Knowledge backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned for a knowledge backend other than file,
// sqlite or memory.
var ErrUnknownBackend = errors.New("unknown knowledge backend")

// Environment variables read by ApplyEnv and PathFromEnv.
const (
	EnvConfig           = "EIGHTD_CONFIG"
	EnvKnowledgeBackend = "EIGHTD_KNOWLEDGE_BACKEND"
	EnvKnowledgePath    = "EIGHTD_KNOWLEDGE_PATH"
	EnvLogLevel         = "EIGHTD_LOG_LEVEL"
	EnvLogFormat        = "EIGHTD_LOG_FORMAT"
	EnvOutputDir        = "EIGHTD_OUTPUT_DIR"
)

// DefaultKnowledgeDir holds the knowledge base when no path is configured.
const DefaultKnowledgeDir = ".eightd"

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Knowledge struct {
	Backend      string `yaml:"backend" json:"backend"`
	Path         string `yaml:"path" json:"path"`
	GoldenPrompt string `yaml:"golden_prompt" json:"golden_prompt"`
}

type Evidence struct {
	MaxLength            int `yaml:"max_length" json:"max_length"`
	ContainmentMaxLength int `yaml:"containment_max_length" json:"containment_max_length"`
}

type Report struct {
	Title             string `yaml:"title" json:"title"`
	OutputDir         string `yaml:"output_dir" json:"output_dir"`
	RequireLogicAudit bool   `yaml:"require_logic_audit" json:"require_logic_audit"`
}

type Review struct {
	Parallel int `yaml:"parallel" json:"parallel"`
}

type Watch struct {
	Debounce Duration `yaml:"debounce" json:"debounce"`
}

// Config is the full eightd configuration.
type Config struct {
	Log          Log           `yaml:"log" json:"log"`
	Knowledge    Knowledge     `yaml:"knowledge" json:"knowledge"`
	Segmentation sections.Mode `yaml:"segmentation" json:"segmentation"`
	Evidence     Evidence      `yaml:"evidence" json:"evidence"`
	Report       Report        `yaml:"report" json:"report"`
	Review       Review        `yaml:"review" json:"review"`
	Watch        Watch         `yaml:"watch" json:"watch"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:          Log{Level: "info", Format: "text"},
		Knowledge:    Knowledge{Backend: BackendFile},
		Segmentation: sections.ModeLeaky,
		Evidence: Evidence{
			MaxLength:            evidence.DefaultMaxLength,
			ContainmentMaxLength: 140,
		},
		Report: Report{
			Title:             "8D Report Review",
			RequireLogicAudit: true,
		},
		Review: Review{Parallel: 4},
		Watch:  Watch{Debounce: Duration(500 * time.Millisecond)},
	}
}

// LoadFromPath reads a config file (YAML or JSON) over the defaults.
// Format is detected by extension (.yaml/.yml → YAML, .json → JSON) or by
// content (leading '{' → JSON).
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Load(data, filepath.Ext(path))
}

// Load parses config bytes over the defaults. ext is a format hint.
func Load(data []byte, ext string) (*Config, error) {
	cfg := Default()
	ext = strings.ToLower(ext)
	if ext == "" && strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		ext = ".json"
	}
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}
	return cfg, nil
}

// PathFromEnv returns flagValue, falling back to $EIGHTD_CONFIG.
func PathFromEnv(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(EnvConfig)
}

// Resolve loads the config at path (or the defaults when path is empty),
// then applies environment overrides and validates.
func Resolve(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromPath(path); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment via getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Knowledge.Backend, EnvKnowledgeBackend)
	set(&c.Knowledge.Path, EnvKnowledgePath)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
	set(&c.Report.OutputDir, EnvOutputDir)
}

// Validate rejects settings the rest of the program cannot honour.
func (c *Config) Validate() error {
	switch c.Knowledge.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Knowledge.Backend)
	}
	if _, ok := sections.ParseMode(string(c.Segmentation)); !ok {
		return fmt.Errorf("unknown segmentation mode %q", c.Segmentation)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Evidence.MaxLength <= 0 || c.Evidence.ContainmentMaxLength <= 0 {
		return fmt.Errorf("evidence lengths must be positive")
	}
	if c.Review.Parallel <= 0 {
		return fmt.Errorf("review.parallel must be positive")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// Mode returns the parsed segmentation mode.
func (c *Config) Mode() sections.Mode {
	m, _ := sections.ParseMode(string(c.Segmentation))
	return m
}

// KnowledgePath returns the configured knowledge path or the backend default.
func (c *Config) KnowledgePath() string {
	if c.Knowledge.Path != "" {
		return c.Knowledge.Path
	}
	if c.Knowledge.Backend == BackendSQLite {
		return filepath.Join(DefaultKnowledgeDir, "experience.db")
	}
	return filepath.Join(DefaultKnowledgeDir, "experience.json")
}
