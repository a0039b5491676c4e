package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/scholar/config.yml.
type GlobalConfig struct {
	Mailto          string `yaml:"mailto,omitempty"`
	MongoURI        string `yaml:"mongo_uri,omitempty"`
	MongoDatabase   string `yaml:"mongo_database,omitempty"`
	PushgatewayURL  string `yaml:"pushgateway_url,omitempty"`
	MetricsTextfile string `yaml:"metrics_textfile,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "scholar"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"

	// DefaultMongoDatabase is used when no database is configured.
	DefaultMongoDatabase = "scholar"
)

// Environment variables that override the global file.
const (
	EnvMailto         = "SCHOLAR_MAILTO"
	EnvMongoURI       = "SCHOLAR_MONGO_URI"
	EnvMongoDatabase  = "SCHOLAR_MONGO_DATABASE"
	EnvPushgatewayURL = "SCHOLAR_PUSHGATEWAY_URL"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/scholar/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. A missing file is an empty config, not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg := &GlobalConfig{}
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		}
	}

	cfg.Mailto = GetConfigValue(EnvMailto, cfg.Mailto)
	cfg.MongoURI = GetConfigValue(EnvMongoURI, cfg.MongoURI)
	cfg.MongoDatabase = GetConfigValue(EnvMongoDatabase, cfg.MongoDatabase)
	cfg.PushgatewayURL = GetConfigValue(EnvPushgatewayURL, cfg.PushgatewayURL)
	if cfg.MongoDatabase == "" {
		cfg.MongoDatabase = DefaultMongoDatabase
	}
	if cfg.MetricsTextfile != "" {
		cfg.MetricsTextfile = ExpandPath(cfg.MetricsTextfile)
	}

	globalConfigCache = cfg
	return cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable if set, else the file value.
func GetConfigValue(envVar, fileValue string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fileValue
}

// ValidateStore checks that the workspace backend has what it needs from the
// global config.
func ValidateStore(cfg *Config, global *GlobalConfig) error {
	if err := ValidateBackend(cfg.StoreBackend); err != nil {
		return err
	}
	if cfg.StoreBackend == BackendMongo && global.MongoURI == "" {
		return fmt.Errorf("store_backend is mongo but no mongo_uri is configured (set %s or mongo_uri in %s)",
			EnvMongoURI, GlobalConfigPath())
	}
	return nil
}
