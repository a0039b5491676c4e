// Package config handles workspace configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

// Config represents workspace configuration stored in .scholar/config.json.
type Config struct {
	StoreBackend      string `json:"store_backend"`      // sqlite or mongo
	SQLitePath        string `json:"sqlite_path"`        // Relative to the workspace root unless absolute
	Collection        string `json:"collection"`         // Store collection for harvested papers
	LogDir            string `json:"log_dir"`            // Per-run harvest logs
	CrossrefInterval  string `json:"crossref_interval"`  // Delay between Crossref requests, e.g. "1s"
	EuropePMCInterval string `json:"europepmc_interval"` // Delay between Europe PMC requests, "0s" for none
	PageRows          int    `json:"page_rows"`          // Crossref works page size
}

const (
	ScholarDir = ".scholar"
	ConfigFile = "config.json"
	DBFile     = "papers.db"
	LogsDir    = "logs"

	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"

	// RootEnvVar overrides workspace discovery.
	RootEnvVar = "SCHOLAR_ROOT"

	maxPageRows = 1000
)

// ValidBackends lists the supported store backends.
var ValidBackends = []string{BackendSQLite, BackendMongo}

// Default returns the configuration written by scholar init.
func Default() *Config {
	return &Config{
		StoreBackend:      BackendSQLite,
		SQLitePath:        filepath.Join(ScholarDir, DBFile),
		Collection:        "papers",
		LogDir:            filepath.Join(ScholarDir, LogsDir),
		CrossrefInterval:  "1s",
		EuropePMCInterval: "0s",
		PageRows:          maxPageRows,
	}
}

// ScholarPath returns the path to the .scholar directory from a root path.
func ScholarPath(root string) string {
	return filepath.Join(root, ScholarDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ScholarDir, ConfigFile)
}

// IsWorkspace checks if the given path contains a scholar workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(ScholarPath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a scholar workspace.
// SCHOLAR_ROOT, when set, is used instead of walking.
func FindWorkspace(start string) (string, error) {
	if root := os.Getenv(RootEnvVar); root != "" {
		root = ExpandPath(root)
		if !IsWorkspace(root) {
			return "", fmt.Errorf("%s=%s is not a scholar workspace (no %s directory)", RootEnvVar, root, ScholarDir)
		}
		return filepath.Abs(root)
	}

	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a scholar workspace (no %s directory found)", ScholarDir)
		}
		abs = parent
	}
}

// Init creates the workspace directory and a default config at root.
func Init(root string) (*Config, error) {
	if IsWorkspace(root) {
		return nil, fmt.Errorf("workspace already exists at %s", root)
	}
	if err := os.MkdirAll(filepath.Join(ScholarPath(root), LogsDir), 0755); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	cfg := Default()
	if err := cfg.Save(root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from the workspace at the given root. Missing
// fields take their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := ValidateBackend(c.StoreBackend); err != nil {
		return err
	}
	if c.Collection == "" {
		return fmt.Errorf("collection must not be empty")
	}
	if _, err := parseInterval("crossref_interval", c.CrossrefInterval); err != nil {
		return err
	}
	if _, err := parseInterval("europepmc_interval", c.EuropePMCInterval); err != nil {
		return err
	}
	if c.PageRows < 1 || c.PageRows > maxPageRows {
		return fmt.Errorf("invalid page_rows: %d (must be 1-%d)", c.PageRows, maxPageRows)
	}
	return nil
}

// CrossrefDelay returns the parsed Crossref interval.
func (c *Config) CrossrefDelay() time.Duration {
	d, _ := parseInterval("crossref_interval", c.CrossrefInterval)
	return d
}

// EuropePMCDelay returns the parsed Europe PMC interval.
func (c *Config) EuropePMCDelay() time.Duration {
	d, _ := parseInterval("europepmc_interval", c.EuropePMCInterval)
	return d
}

// ResolvedSQLitePath returns the SQLite path, joined to root when relative.
func (c *Config) ResolvedSQLitePath(root string) string {
	return resolve(root, c.SQLitePath)
}

// ResolvedLogDir returns the log directory, joined to root when relative.
func (c *Config) ResolvedLogDir(root string) string {
	return resolve(root, c.LogDir)
}

func resolve(root, path string) string {
	path = ExpandPath(path)
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// Get returns the value of a config key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "store_backend":
		return c.StoreBackend, nil
	case "sqlite_path":
		return c.SQLitePath, nil
	case "collection":
		return c.Collection, nil
	case "log_dir":
		return c.LogDir, nil
	case "crossref_interval":
		return c.CrossrefInterval, nil
	case "europepmc_interval":
		return c.EuropePMCInterval, nil
	case "page_rows":
		return strconv.Itoa(c.PageRows), nil
	default:
		return "", fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
	}
}

// Set validates and assigns a config key.
func (c *Config) Set(key, value string) error {
	next := *c
	switch key {
	case "store_backend":
		next.StoreBackend = value
	case "sqlite_path":
		next.SQLitePath = value
	case "collection":
		next.Collection = value
	case "log_dir":
		next.LogDir = value
	case "crossref_interval":
		next.CrossrefInterval = value
	case "europepmc_interval":
		next.EuropePMCInterval = value
	case "page_rows":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid page_rows: %s", value)
		}
		next.PageRows = n
	default:
		return fmt.Errorf("unknown config key: %s (valid: %v)", key, Keys())
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys lists the config keys in sorted order.
func Keys() []string {
	keys := []string{
		"store_backend", "sqlite_path", "collection", "log_dir",
		"crossref_interval", "europepmc_interval", "page_rows",
	}
	sort.Strings(keys)
	return keys
}

// ValidateBackend checks that the backend value is valid.
func ValidateBackend(backend string) error {
	for _, valid := range ValidBackends {
		if backend == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid store_backend: %s (valid: %v)", backend, ValidBackends)
}

func parseInterval(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %s", key, value)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: %s (must not be negative)", key, value)
	}
	return d, nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
