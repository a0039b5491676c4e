package runlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpen_WritesPerRunFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var tee bytes.Buffer

	run, err := Open(dir, "1234-5678", "2020-01-01", "2020-12-31", Options{Tee: &tee})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	run.Logger.Info("listed DOI page", "page", 1)
	if err := run.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := filepath.Join(dir, "1234-5678_2020-01-01_2020-12-31.log")
	if run.Path != want {
		t.Errorf("Path = %q, want %q", run.Path, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	for _, s := range []string{"listed DOI page", "page=1", "run_id=" + run.ID} {
		if !strings.Contains(string(data), s) {
			t.Errorf("log missing %q:\n%s", s, data)
		}
	}
	if tee.String() != string(data) {
		t.Error("tee output should match the file")
	}
}

func TestOpen_TruncatesPreviousRun(t *testing.T) {
	dir := t.TempDir()
	first, err := Open(dir, "x", "a", "b", Options{})
	if err != nil {
		t.Fatal(err)
	}
	first.Logger.Info("first run")
	first.Close()

	second, err := Open(dir, "x", "a", "b", Options{})
	if err != nil {
		t.Fatal(err)
	}
	second.Logger.Info("second run")
	second.Close()

	data, _ := os.ReadFile(second.Path)
	if strings.Contains(string(data), "first run") {
		t.Error("log file should be truncated on reopen")
	}
	if first.ID == second.ID {
		t.Error("run ids should differ")
	}
}

func TestFileName_Sanitizes(t *testing.T) {
	if got := FileName("a/b", "2020", "2021"); got != "a-b_2020_2021.log" {
		t.Errorf("FileName() = %q", got)
	}
}
