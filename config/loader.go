package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "semlog.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/semlog"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvFile is loaded into the environment before overrides apply
	EnvFile = ".env"
)

// Environment overrides.
const (
	EnvEpisodeID   = "SEMLOG_EPISODE_ID"
	EnvSemanticMap = "SEMLOG_SEMANTIC_MAP"
	EnvOutputDir   = "SEMLOG_OUTPUT_DIR"
	EnvTimelineDB  = "SEMLOG_TIMELINE_DB"
	EnvNATSURL     = "SEMLOG_NATS_URL"
	EnvNATSPublish = "SEMLOG_NATS_PUBLISH"
	EnvMetricsAddr = "SEMLOG_METRICS_ADDR"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger  *slog.Logger
	homeDir string
	workDir string
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	home, _ := os.UserHomeDir()
	cwd, _ := os.Getwd()
	return &Loader{logger: logger, homeDir: home, workDir: cwd}
}

// Load loads configuration with layered precedence:
// 1. Default config
// 2. User config (~/.config/semlog/config.yaml)
// 3. Project config (semlog.yaml in current or parent directories)
// 4. .env file and environment variables
func (l *Loader) Load() (*Config, error) {
	// Start with defaults
	config := DefaultConfig()

	// Load user config
	if userConfigPath := l.userConfigPath(); userConfigPath != "" {
		if userConfig, err := LoadFromFile(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(userConfig)
		} else if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Failed to load user config", slog.String("path", userConfigPath), slog.String("error", err.Error()))
		}
	}

	// Load project config
	projectConfigPath := l.findProjectConfig()
	if projectConfigPath != "" {
		if projectConfig, err := LoadFromFile(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(projectConfig)
		} else {
			l.logger.Warn("Failed to load project config", slog.String("path", projectConfigPath), slog.String("error", err.Error()))
		}
	} else {
		l.logger.Debug("No project config found")
	}

	// Existing environment wins over .env
	envPath := filepath.Join(l.workDir, EnvFile)
	if err := godotenv.Load(envPath); err == nil {
		l.logger.Debug("Loaded env file", slog.String("path", envPath))
	} else if !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("Failed to load env file", slog.String("path", envPath), slog.String("error", err.Error()))
	}
	l.applyEnv(config)

	// Validate final config
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile loads path over the defaults, then applies the environment.
func (l *Loader) LoadFile(path string) (*Config, error) {
	fileConfig, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	config := DefaultConfig()
	config.Merge(fileConfig)
	l.applyEnv(config)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (l *Loader) applyEnv(c *Config) {
	overrides := &Config{
		Episode: EpisodeConfig{
			ID:          os.Getenv(EnvEpisodeID),
			SemanticMap: os.Getenv(EnvSemanticMap),
		},
		Output: OutputConfig{
			Dir:        os.Getenv(EnvOutputDir),
			TimelineDB: os.Getenv(EnvTimelineDB),
		},
		NATS: NATSConfig{
			URL: os.Getenv(EnvNATSURL),
		},
		Metrics: MetricsConfig{
			Addr: os.Getenv(EnvMetricsAddr),
		},
	}
	if v := os.Getenv(EnvNATSPublish); v != "" {
		publish, err := strconv.ParseBool(v)
		if err != nil {
			l.logger.Warn("Ignoring invalid env value", slog.String("name", EnvNATSPublish), slog.String("value", v))
		} else {
			c.NATS.Publish = publish
		}
	}
	c.Merge(overrides)
}

// EnsureUserConfig creates the user config file with defaults if it doesn't exist
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()

	// Check if it already exists
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil // Already exists
	}

	// Create default config
	config := DefaultConfig()
	if err := config.SaveToFile(userConfigPath); err != nil {
		return err
	}

	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file
func (l *Loader) userConfigPath() string {
	if l.homeDir == "" {
		return ""
	}
	return filepath.Join(l.homeDir, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for semlog.yaml in current and parent directories
func (l *Loader) findProjectConfig() string {
	if l.workDir == "" {
		return ""
	}

	dir := l.workDir
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			break
		}
		dir = parent
	}

	return ""
}
