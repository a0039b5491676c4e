package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPathFunctions(t *testing.T) {
	root := "/test/ws"

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"ScholarPath", ScholarPath, "/test/ws/.scholar"},
		{"ConfigPath", ConfigPath, "/test/ws/.scholar/config.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn(root)
			if got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, root, got, tt.want)
			}
		})
	}
}

func TestInitAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Init(tmpDir)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !IsWorkspace(tmpDir) {
		t.Fatal("IsWorkspace() = false after Init()")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, ScholarDir, LogsDir)); err != nil {
		t.Errorf("logs directory missing: %v", err)
	}

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("Load() = %+v, want %+v", loaded, cfg)
	}

	if _, err := Init(tmpDir); err == nil {
		t.Error("second Init() should fail")
	}
}

func TestFindWorkspace(t *testing.T) {
	t.Setenv(RootEnvVar, "")
	tmpDir := t.TempDir()
	if _, err := Init(tmpDir); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("FindWorkspace() error = %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if got != want {
		t.Errorf("FindWorkspace() = %q, want %q", got, want)
	}
}

func TestFindWorkspace_EnvOverride(t *testing.T) {
	ws := t.TempDir()
	if _, err := Init(ws); err != nil {
		t.Fatal(err)
	}
	t.Setenv(RootEnvVar, ws)

	got, err := FindWorkspace(t.TempDir())
	if err != nil {
		t.Fatalf("FindWorkspace() error = %v", err)
	}
	if got != ws {
		t.Errorf("FindWorkspace() = %q, want %q", got, ws)
	}

	t.Setenv(RootEnvVar, t.TempDir())
	if _, err := FindWorkspace("."); err == nil {
		t.Error("FindWorkspace() should reject a SCHOLAR_ROOT without a workspace")
	}
}

func TestFindWorkspace_NotFound(t *testing.T) {
	t.Setenv(RootEnvVar, "")
	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("FindWorkspace() should fail outside a workspace")
	}
}

func TestLoad_FillsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	os.MkdirAll(ScholarPath(tmpDir), 0755)
	os.WriteFile(ConfigPath(tmpDir), []byte(`{"collection": "neuro"}`), 0644)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Collection != "neuro" {
		t.Errorf("Collection = %q", cfg.Collection)
	}
	if cfg.StoreBackend != BackendSQLite || cfg.PageRows != 1000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{not json`},
		{"bad backend", `{"store_backend": "redis"}`},
		{"bad interval", `{"crossref_interval": "soon"}`},
		{"page rows too large", `{"page_rows": 5000}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			os.MkdirAll(ScholarPath(tmpDir), 0755)
			os.WriteFile(ConfigPath(tmpDir), []byte(tt.data), 0644)
			if _, err := Load(tmpDir); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("crossref_interval", "250ms"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if cfg.CrossrefDelay() != 250*time.Millisecond {
		t.Errorf("CrossrefDelay() = %v", cfg.CrossrefDelay())
	}
	if err := cfg.Set("page_rows", "200"); err != nil {
		t.Fatal(err)
	}
	if got, _ := cfg.Get("page_rows"); got != "200" {
		t.Errorf("Get(page_rows) = %q", got)
	}

	invalid := []struct{ key, value string }{
		{"store_backend", "postgres"},
		{"page_rows", "many"},
		{"page_rows", "0"},
		{"europepmc_interval", "-1s"},
		{"collection", ""},
		{"nope", "x"},
	}
	for _, tt := range invalid {
		before := *cfg
		if err := cfg.Set(tt.key, tt.value); err == nil {
			t.Errorf("Set(%q, %q) should fail", tt.key, tt.value)
		}
		if *cfg != before {
			t.Errorf("failed Set(%q) modified config", tt.key)
		}
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("Get() of unknown key should fail")
	}
}

func TestConfig_ResolvedPaths(t *testing.T) {
	cfg := Default()
	if got := cfg.ResolvedSQLitePath("/ws"); got != "/ws/.scholar/papers.db" {
		t.Errorf("ResolvedSQLitePath() = %q", got)
	}
	cfg.LogDir = "/var/log/scholar"
	if got := cfg.ResolvedLogDir("/ws"); got != "/var/log/scholar" {
		t.Errorf("ResolvedLogDir() = %q", got)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandPath("~/data"); got != filepath.Join(home, "data") {
		t.Errorf("ExpandPath() = %q", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath() = %q", got)
	}
}
