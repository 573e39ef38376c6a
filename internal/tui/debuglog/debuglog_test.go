package debuglog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	Logger().Debug("Screen changed", "screen", "menu")
	Error("approve", errors.New("boom"))

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	for _, want := range []string{"Screen changed", "screen=menu", "op=approve", "error=boom"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("Log missing %q:\n%s", want, data)
		}
	}
}

func TestInit_EmptyDirDisables(t *testing.T) {
	if err := Init("", "debug"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	// Must not panic without a file.
	Logger().Info("ignored")
	Error("op", errors.New("ignored"))
	Close()
}

func TestError_NilIsIgnored(t *testing.T) {
	dir := t.TempDir()
	if err := Init(dir, "debug"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	Error("noop", nil)

	data, _ := os.ReadFile(filepath.Join(dir, FileName))
	if len(data) != 0 {
		t.Errorf("Expected empty log, got %q", data)
	}
}
