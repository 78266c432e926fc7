package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/phonolite/phonolite/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port          string
	RepoDBPath    string
	MusicRoot     string
	BackendsFile  string
	CacheCapacity int
	LogLevel      string
	LogFormat     string
}

// BackendKind names a deployable storage backend implementation.
type BackendKind string

const (
	KindLocal  BackendKind = "local"
	KindStrict BackendKind = "strict"
	KindDrive  BackendKind = "drive"
	KindProxy  BackendKind = "proxy"
)

// Backend describes one entry of the provider registration table.
type Backend struct {
	Name     string      `yaml:"name"`
	Kind     BackendKind `yaml:"kind"`
	Priority int         `yaml:"priority"`

	// local / strict
	Root  string `yaml:"root,omitempty"`
	Layer int    `yaml:"layer,omitempty"`

	// drive / proxy
	URL            string `yaml:"url,omitempty"`
	Auth           string `yaml:"auth,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Backends is the parsed provider table file.
type Backends struct {
	Backends []Backend `yaml:"backends"`
}

// Load loads configuration from environment variables with defaults.
// A .env file in the working directory is honored when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", constants.DefaultPort),
		RepoDBPath:    getEnv("REPO_DB_PATH", constants.DefaultRepoDBPath),
		MusicRoot:     getEnv("MUSIC_ROOT", ""),
		BackendsFile:  getEnv("BACKENDS_FILE", ""),
		CacheCapacity: getEnvInt("CACHE_CAPACITY", constants.DefaultCacheCapacity),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}
}

// LoadBackends parses the provider table file. With no file configured
// a single local backend rooted at MusicRoot is synthesized.
func (c *Config) LoadBackends() ([]Backend, error) {
	if c.BackendsFile == "" {
		if c.MusicRoot == "" {
			return nil, fmt.Errorf("neither BACKENDS_FILE nor MUSIC_ROOT is set")
		}
		return []Backend{{Name: "local", Kind: KindLocal, Priority: 0, Root: c.MusicRoot}}, nil
	}

	data, err := os.ReadFile(c.BackendsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read backends file: %w", err)
	}
	var table Backends
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse backends file: %w", err)
	}
	if len(table.Backends) == 0 {
		return nil, fmt.Errorf("backends file %s declares no backends", c.BackendsFile)
	}
	for i, b := range table.Backends {
		if err := b.validate(); err != nil {
			return nil, fmt.Errorf("backend %d (%s): %w", i, b.Name, err)
		}
	}
	return table.Backends, nil
}

func (b Backend) validate() error {
	if b.Name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	switch b.Kind {
	case KindLocal, KindStrict:
		if b.Root == "" {
			return fmt.Errorf("%s backend needs a root path", b.Kind)
		}
	case KindDrive, KindProxy:
		if b.URL == "" {
			return fmt.Errorf("%s backend needs a url", b.Kind)
		}
	default:
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	return nil
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate RepoDBPath
	if c.RepoDBPath == "" {
		errors = append(errors, "REPO_DB_PATH cannot be empty")
	}

	// Validate backend sources
	if c.BackendsFile == "" && c.MusicRoot == "" {
		errors = append(errors, "one of BACKENDS_FILE or MUSIC_ROOT must be set")
	}

	// Validate CacheCapacity
	if c.CacheCapacity < 0 {
		errors = append(errors, fmt.Sprintf("CACHE_CAPACITY cannot be negative, got: %d", c.CacheCapacity))
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
