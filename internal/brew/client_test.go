package brew

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

// fakeRunner serves canned outputs keyed by the full command line and
// records every invocation. No test in this package execs anything.
type fakeRunner struct {
	outputs  map[string]string
	failures map[string]error
	calls    []string
	brewPath string // LookPath result for "brew"; empty means not found
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs:  make(map[string]string),
		failures: make(map[string]error),
		brewPath: "/opt/homebrew/bin/brew",
	}
}

func (f *fakeRunner) key(name string, args ...string) string {
	return strings.Join(append([]string{name}, args...), " ")
}

func (f *fakeRunner) Output(name string, args ...string) ([]byte, error) {
	k := f.key(name, args...)
	f.calls = append(f.calls, k)
	if err, ok := f.failures[k]; ok {
		return nil, err
	}
	out, ok := f.outputs[k]
	if !ok {
		return nil, fmt.Errorf("fakeRunner: no canned output for %q", k)
	}
	return []byte(out), nil
}

func (f *fakeRunner) CombinedOutput(name string, args ...string) ([]byte, error) {
	return f.Output(name, args...)
}

func (f *fakeRunner) RunInteractive(name string, args ...string) error {
	k := f.key(name, args...)
	f.calls = append(f.calls, k)
	if err, ok := f.failures[k]; ok {
		return err
	}
	return nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	f.calls = append(f.calls, "lookpath "+name)
	if name == "brew" && f.brewPath != "" {
		return f.brewPath, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeRunner) called(key string) bool {
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

const mockPHPVersionOutput = `PHP 8.1.19 (cli) (built: May 11 2023 12:51:40) (NTS)
Copyright (c) The PHP Group
Zend Engine v4.1.19, Copyright (c) Zend Technologies
    with Zend OPcache v8.1.19, Copyright (c), by Zend Technologies`

func TestInstalledPHP(t *testing.T) {
	r := newFakeRunner()
	r.outputs["brew list --formula"] = "git\nphp\nphp@7.4\nphp@8.1\nphpunit\nwget\n"
	r.outputs["brew list --versions php"] = "php 8.3.7\n"
	r.outputs["brew list --versions php@7.4"] = "php@7.4 7.4.33\n"
	r.outputs["brew list --versions php@8.1"] = "php@8.1 8.1.19\n"

	c := New(r, "/opt/homebrew")
	formulae, err := c.InstalledPHP()
	if err != nil {
		t.Fatalf("InstalledPHP() error: %v", err)
	}

	want := []Formula{
		{Name: "php", Version: "8.3.7"},
		{Name: "php@7.4", Version: "7.4.33"},
		{Name: "php@8.1", Version: "8.1.19"},
	}
	if len(formulae) != len(want) {
		t.Fatalf("InstalledPHP() returned %d formulae, want %d: %v", len(formulae), len(want), formulae)
	}
	for i, f := range formulae {
		if f != want[i] {
			t.Errorf("formulae[%d] = %v, want %v", i, f, want[i])
		}
	}

	// Non-family formulae must never trigger a versions query.
	if r.called("brew list --versions phpunit") {
		t.Error("queried versions for phpunit, which is outside the php family")
	}
	if r.called("brew list --versions git") {
		t.Error("queried versions for git, which is outside the php family")
	}
}

func TestInstalledPHP_NoFamilyFormulae(t *testing.T) {
	r := newFakeRunner()
	r.outputs["brew list --formula"] = "git\nwget\n"

	c := New(r, "/opt/homebrew")
	formulae, err := c.InstalledPHP()
	if err != nil {
		t.Fatalf("InstalledPHP() error: %v", err)
	}
	if len(formulae) != 0 {
		t.Errorf("expected no formulae, got %v", formulae)
	}
}

func TestInstalledPHP_ListFails(t *testing.T) {
	r := newFakeRunner()
	r.failures["brew list --formula"] = errors.New("exit status 1")

	c := New(r, "/opt/homebrew")
	if _, err := c.InstalledPHP(); err == nil {
		t.Error("expected error when brew list fails, got nil")
	}
}

func TestInstalled(t *testing.T) {
	r := newFakeRunner()
	r.outputs["brew list --formula"] = "php\nphp@8.1\n"
	r.outputs["brew list --versions php"] = "php 8.3.7\n"
	r.outputs["brew list --versions php@8.1"] = "php@8.1 8.1.19\n"
	c := New(r, "/opt/homebrew")

	tests := []struct {
		name      string
		version   string
		wantName  string
		wantFound bool
	}{
		{name: "pinned formula match", version: "8.1", wantName: "php@8.1", wantFound: true},
		{name: "primary formula match", version: "8.3", wantName: "php", wantFound: true},
		{name: "not installed", version: "7.4", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := phpver.Parse(tt.version)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.version, err)
			}
			f, found, err := c.Installed(v)
			if err != nil {
				t.Fatalf("Installed(%v) error: %v", v, err)
			}
			if found != tt.wantFound {
				t.Fatalf("Installed(%v) found = %v, want %v", v, found, tt.wantFound)
			}
			if found && f.Name != tt.wantName {
				t.Errorf("Installed(%v) = %q, want %q", v, f.Name, tt.wantName)
			}
		})
	}
}

func TestActiveVersion(t *testing.T) {
	r := newFakeRunner()
	r.outputs["/opt/homebrew/bin/php --version"] = mockPHPVersionOutput

	c := New(r, "/opt/homebrew")
	version, ok := c.ActiveVersion()
	if !ok {
		t.Fatal("ActiveVersion() ok = false, want true")
	}
	if version != "8.1.19" {
		t.Errorf("ActiveVersion() = %q, want %q", version, "8.1.19")
	}
}

func TestActiveVersion_BinaryMissing(t *testing.T) {
	r := newFakeRunner()
	r.failures["/opt/homebrew/bin/php --version"] = errors.New("no such file or directory")

	c := New(r, "/opt/homebrew")
	if _, ok := c.ActiveVersion(); ok {
		t.Error("ActiveVersion() ok = true for a missing binary, want false")
	}
}

func TestActiveVersion_GarbageOutput(t *testing.T) {
	r := newFakeRunner()
	r.outputs["/opt/homebrew/bin/php --version"] = "something unexpected\n"

	c := New(r, "/opt/homebrew")
	if _, ok := c.ActiveVersion(); ok {
		t.Error("ActiveVersion() ok = true for unparseable output, want false")
	}
}

func TestIsVersionActive(t *testing.T) {
	r := newFakeRunner()
	r.outputs["/opt/homebrew/bin/php --version"] = mockPHPVersionOutput
	c := New(r, "/opt/homebrew")

	tests := []struct {
		version string
		want    bool
	}{
		{version: "8.1", want: true},
		{version: "8.2", want: false},
		{version: "7.1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v, err := phpver.Parse(tt.version)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.version, err)
			}
			if got := c.IsVersionActive(v); got != tt.want {
				t.Errorf("IsVersionActive(%s) = %v, want %v", tt.version, got, tt.want)
			}
		})
	}
}

func TestLinkUnlinkInstall(t *testing.T) {
	r := newFakeRunner()
	r.outputs["brew install php@8.1"] = "==> Installing php@8.1\n"
	r.outputs["brew link --overwrite --force php@8.1"] = "Linking /opt/homebrew/Cellar/php@8.1/8.1.19... 24 symlinks created\n"
	r.outputs["brew unlink php@8.2"] = "Unlinking /opt/homebrew/Cellar/php@8.2/8.2.7... 25 symlinks removed\n"

	c := New(r, "/opt/homebrew")

	if err := c.Install("php@8.1"); err != nil {
		t.Errorf("Install() error: %v", err)
	}
	if err := c.Link("php@8.1"); err != nil {
		t.Errorf("Link() error: %v", err)
	}
	if err := c.Unlink("php@8.2"); err != nil {
		t.Errorf("Unlink() error: %v", err)
	}

	for _, want := range []string{
		"brew install php@8.1",
		"brew link --overwrite --force php@8.1",
		"brew unlink php@8.2",
	} {
		if !r.called(want) {
			t.Errorf("expected invocation %q, calls: %v", want, r.calls)
		}
	}
}

func TestInstallFailureIncludesOutput(t *testing.T) {
	r := newFakeRunner()
	r.failures["brew install php@9.9"] = errors.New("exit status 1")

	c := New(r, "/opt/homebrew")
	err := c.Install("php@9.9")
	if err == nil {
		t.Fatal("Install() expected error, got nil")
	}
	if !strings.Contains(err.Error(), "php@9.9") {
		t.Errorf("error should name the formula, got: %v", err)
	}
}

func TestDetectPrefix(t *testing.T) {
	r := newFakeRunner()
	r.outputs["brew --prefix"] = "/opt/homebrew\n"

	c := New(r, "/opt/homebrew")
	prefix, err := c.DetectPrefix()
	if err != nil {
		t.Fatalf("DetectPrefix() error: %v", err)
	}
	if prefix != "/opt/homebrew" {
		t.Errorf("DetectPrefix() = %q, want %q", prefix, "/opt/homebrew")
	}
}

func TestParseVersionsLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
	}{
		{name: "pinned formula", input: "php@8.1 8.1.19\n", want: "8.1.19", wantOK: true},
		{name: "primary formula", input: "php 8.3.7\n", want: "8.3.7", wantOK: true},
		{name: "multiple kegs keeps newest", input: "php 8.3.7 8.3.6\n", want: "8.3.7", wantOK: true},
		{name: "name only", input: "php@8.1\n", wantOK: false},
		{name: "empty", input: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseVersionsLine(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("parseVersionsLine(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("parseVersionsLine(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePHPVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "standard output", input: mockPHPVersionOutput, want: "8.1.19"},
		{name: "rc build", input: "PHP 8.3.0RC6 (cli) (built: Nov  9 2023)\n", wantErr: true},
		{name: "plain version line", input: "PHP 7.4.33 (cli)\n", want: "7.4.33"},
		{name: "no version line", input: "zend engine stuff\n", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePHPVersion(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parsePHPVersion(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePHPVersion(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parsePHPVersion(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormulaNames(t *testing.T) {
	got := parseFormulaNames("git\n\nphp@8.1\n  \nwget\n")
	want := []string{"git", "php@8.1", "wget"}
	if len(got) != len(want) {
		t.Fatalf("parseFormulaNames() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseFormulaNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
