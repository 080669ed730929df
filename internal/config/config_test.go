package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileNotFound(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error for missing file: %v", err)
	}
	if cfg.ServiceWaitSeconds != 30 {
		t.Errorf("ServiceWaitSeconds = %d, want default 30", cfg.ServiceWaitSeconds)
	}
	if !cfg.HistoryEnabled() {
		t.Error("HistoryEnabled() = false, want default true")
	}
	if cfg.Prefix != "" {
		t.Errorf("Prefix = %q, want empty", cfg.Prefix)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	content := `prefix: /usr/local
service_wait_seconds: 10
history: false
`
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Prefix != "/usr/local" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "/usr/local")
	}
	if cfg.ServiceWaitSeconds != 10 {
		t.Errorf("ServiceWaitSeconds = %d, want 10", cfg.ServiceWaitSeconds)
	}
	if cfg.HistoryEnabled() {
		t.Error("HistoryEnabled() = true, want false")
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "prefix: /opt/homebrew\n"
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Prefix != "/opt/homebrew" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "/opt/homebrew")
	}
	if cfg.ServiceWaitSeconds != 30 {
		t.Errorf("ServiceWaitSeconds = %d, want default 30", cfg.ServiceWaitSeconds)
	}
	if !cfg.HistoryEnabled() {
		t.Error("HistoryEnabled() = false, want default true")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("prefix: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for malformed YAML, got nil")
	}
}

func TestResolvePrefix(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		env       string
		cfgPrefix string
		want      string
	}{
		{
			name: "flag wins over everything",
			flag: "/flag/prefix",
			env:  "/env/prefix", cfgPrefix: "/cfg/prefix",
			want: "/flag/prefix",
		},
		{
			name: "env wins over config",
			env:  "/env/prefix", cfgPrefix: "/cfg/prefix",
			want: "/env/prefix",
		},
		{
			name:      "config wins over default",
			cfgPrefix: "/cfg/prefix",
			want:      "/cfg/prefix",
		},
		{
			name: "all empty falls back to platform default",
			want: DefaultPrefix(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOMEBREW_PREFIX", tt.env)
			cfg := Config{Prefix: tt.cfgPrefix}
			got, err := cfg.ResolvePrefix(tt.flag)
			if err != nil {
				t.Fatalf("ResolvePrefix() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ResolvePrefix(%q) = %q, want %q", tt.flag, got, tt.want)
			}
		})
	}
}

func TestResolvePrefix_TildeExpansion(t *testing.T) {
	t.Setenv("HOMEBREW_PREFIX", "")
	cfg := Config{Prefix: "~/homebrew"}
	got, err := cfg.ResolvePrefix("")
	if err != nil {
		t.Fatalf("ResolvePrefix() error: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	want := filepath.Join(home, "homebrew")
	if got != want {
		t.Errorf("ResolvePrefix() = %q, want %q", got, want)
	}
}

func TestDefaultPrefix(t *testing.T) {
	got := DefaultPrefix()
	if got != "/opt/homebrew" && got != "/usr/local" {
		t.Errorf("DefaultPrefix() = %q, want /opt/homebrew or /usr/local", got)
	}
}

func TestDir_RespectsXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != "/tmp/xdg/phpswitch" {
		t.Errorf("Dir() = %q, want %q", dir, "/tmp/xdg/phpswitch")
	}
}

func TestDir_DefaultsToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("UserHomeDir: %v", err)
	}
	want := filepath.Join(home, ".config", "phpswitch")
	if dir != want {
		t.Errorf("Dir() = %q, want %q", dir, want)
	}
}
