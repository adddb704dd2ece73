// Package config provides configuration management for the latex-clean and
// latex-wordcount tools.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"latex-cleaner/internal/logger"
	"latex-cleaner/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "latex-cleaner-config.json"
	// EnvDefines lists \ifdefined flags, comma separated, used when the
	// config file sets none
	EnvDefines = "LATEX_CLEANER_DEFINES"
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "warn"
)

// DefaultImageExtensions are tried in order when resolving \includegraphics paths.
var DefaultImageExtensions = []string{"", ".pdf", ".eps", ".png", ".jpg"}

// ConfigManager manages application configuration
type ConfigManager struct {
	configPath string
	config     *types.Config
}

// NewConfigManager creates a new ConfigManager with the specified config path.
// If configPath is empty, it uses the default path in user's home directory.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			logger.Error("failed to get user home directory", err)
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "latex-cleaner", DefaultConfigFileName)
	}

	logger.Debug("ConfigManager initialized", logger.String("configPath", configPath))
	return &ConfigManager{
		configPath: configPath,
		config:     defaultConfig(),
	}, nil
}

// Load creates a ConfigManager for configPath and loads it.
func Load(configPath string) (*ConfigManager, error) {
	m, err := NewConfigManager(configPath)
	if err != nil {
		return nil, err
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// InitLogger initializes the global logger. levelName overrides the
// configured log level when it is not empty.
func (m *ConfigManager) InitLogger(levelName string) error {
	cfg := m.GetConfig()
	if levelName == "" {
		levelName = cfg.LogLevel
	}
	level, err := logger.ParseLevel(levelName)
	if err != nil {
		return types.NewAppError(types.ErrInvalidInput, "invalid log level", err)
	}
	if err := logger.Init(&logger.Config{Level: level, LogFilePath: cfg.LogFile}); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to initialize logger", err)
	}
	return nil
}

// defaultConfig returns a Config with default values
func defaultConfig() *types.Config {
	return &types.Config{
		LogLevel:        DefaultLogLevel,
		ExtraMacros:     map[string]types.MacroSpec{},
		ImageExtensions: append([]string(nil), DefaultImageExtensions...),
	}
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load loads configuration from the config file.
// If the file doesn't exist or can't be parsed, it uses default values.
func (m *ConfigManager) Load() error {
	logger.Debug("loading configuration", logger.String("path", m.configPath))

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("config file not found, using defaults", logger.String("path", m.configPath))
			m.config = defaultConfig()
		} else {
			logger.Error("failed to read config file", err, logger.String("path", m.configPath))
			return types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	} else {
		config := &types.Config{}
		if isYAML(m.configPath) {
			err = yaml.Unmarshal(data, config)
		} else {
			err = json.Unmarshal(data, config)
		}
		if err != nil {
			logger.Warn("invalid config file format, using defaults", logger.String("path", m.configPath), logger.Err(err))
			m.config = defaultConfig()
		} else {
			logger.Info("configuration loaded successfully",
				logger.String("path", m.configPath),
				logger.Strings("defines", config.Defines),
				logger.Int("extraMacros", len(config.ExtraMacros)))
			m.config = config
		}
	}

	// Apply defaults for empty fields
	if m.config.LogLevel == "" {
		m.config.LogLevel = DefaultLogLevel
	}
	if len(m.config.ImageExtensions) == 0 {
		m.config.ImageExtensions = append([]string(nil), DefaultImageExtensions...)
	}
	if m.config.ExtraMacros == nil {
		m.config.ExtraMacros = map[string]types.MacroSpec{}
	}
	if len(m.config.Defines) == 0 {
		m.config.Defines = definesFromEnv()
	}

	return nil
}

func definesFromEnv() []string {
	raw := os.Getenv(EnvDefines)
	if raw == "" {
		return nil
	}
	var defines []string
	for _, d := range strings.Split(raw, ",") {
		if d = strings.TrimSpace(d); d != "" {
			defines = append(defines, d)
		}
	}
	return defines
}

// Save saves the current configuration to the config file.
func (m *ConfigManager) Save() error {
	logger.Debug("saving configuration", logger.String("path", m.configPath))

	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error("failed to create config directory", err, logger.String("dir", dir))
		return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
	}

	var data []byte
	var err error
	if isYAML(m.configPath) {
		data, err = yaml.Marshal(m.config)
	} else {
		data, err = json.MarshalIndent(m.config, "", "  ")
	}
	if err != nil {
		logger.Error("failed to marshal config", err)
		return types.NewAppError(types.ErrConfig, "failed to marshal config", err)
	}

	if err := os.WriteFile(m.configPath, data, 0600); err != nil {
		logger.Error("failed to write config file", err, logger.String("path", m.configPath))
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}

	logger.Info("configuration saved successfully", logger.String("path", m.configPath))
	return nil
}

// GetConfig returns the current configuration.
func (m *ConfigManager) GetConfig() *types.Config {
	if m.config == nil {
		return defaultConfig()
	}
	return m.config
}

// SetConfig sets the entire configuration.
func (m *ConfigManager) SetConfig(config *types.Config) {
	m.config = config
}

// GetConfigPath returns the path to the config file.
func (m *ConfigManager) GetConfigPath() string {
	return m.configPath
}

// GetDefines returns the \ifdefined flags that evaluate to true.
func (m *ConfigManager) GetDefines() []string {
	if m.config != nil {
		return m.config.Defines
	}
	return nil
}

// GetImageExtensions returns the extensions tried when resolving graphics.
func (m *ConfigManager) GetImageExtensions() []string {
	if m.config != nil && len(m.config.ImageExtensions) > 0 {
		return m.config.ImageExtensions
	}
	return DefaultImageExtensions
}
