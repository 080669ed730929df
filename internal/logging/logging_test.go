package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevels(t *testing.T) {
	defer Init(false)

	Init(false)
	if got := Logger.GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("Init(false) level = %v, want info", got)
	}

	Init(true)
	if got := Logger.GetLevel(); got != zerolog.DebugLevel {
		t.Errorf("Init(true) level = %v, want debug", got)
	}
}

func TestInitFileWritesJSON(t *testing.T) {
	defer Init(false)

	path := filepath.Join(t.TempDir(), "watch.log")
	if err := InitFile(path, false); err != nil {
		t.Fatalf("InitFile() failed: %v", err)
	}

	Logger.Info().Str("version", "8.3").Msg("relink observed")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file failed: %v", err)
	}

	line := string(data)
	if !strings.Contains(line, `"relink observed"`) {
		t.Errorf("log file missing message: %q", line)
	}
	if !strings.Contains(line, `"version":"8.3"`) {
		t.Errorf("log file missing field: %q", line)
	}
}

func TestInitFileAppends(t *testing.T) {
	defer Init(false)

	path := filepath.Join(t.TempDir(), "watch.log")

	if err := InitFile(path, false); err != nil {
		t.Fatalf("InitFile() failed: %v", err)
	}
	Logger.Info().Msg("first")
	Close()

	if err := InitFile(path, false); err != nil {
		t.Fatalf("InitFile() failed: %v", err)
	}
	Logger.Info().Msg("second")
	Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file failed: %v", err)
	}

	if !strings.Contains(string(data), "first") || !strings.Contains(string(data), "second") {
		t.Errorf("restart should append, not truncate: %q", string(data))
	}
}

func TestInitFileBadPath(t *testing.T) {
	defer Init(false)

	err := InitFile(filepath.Join(t.TempDir(), "missing", "watch.log"), false)
	if err == nil {
		t.Error("InitFile() should fail when the parent directory is missing")
	}
}

func TestCloseWithoutFile(t *testing.T) {
	defer Init(false)

	// Must not panic when no file is open.
	Close()
}
