// Package shell rewrites the PATH export line in the user's shell startup
// files.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// marker tags the one PATH line phpswitch owns. Rewrites remove every line
// carrying it before appending the replacement, so repeated switches never
// accumulate exports.
const marker = "# phpswitch managed"

// Editor rewrites the managed PATH line in the startup files under home.
type Editor struct {
	home string
}

// New returns an Editor for the given home directory.
func New(home string) *Editor {
	return &Editor{home: home}
}

// Candidates returns the startup files considered, in priority order. Only
// files that already exist are ever written; phpswitch never creates a
// startup file the user does not have.
func (e *Editor) Candidates() []string {
	return []string{
		filepath.Join(e.home, ".zshrc"),
		filepath.Join(e.home, ".bash_profile"),
		filepath.Join(e.home, ".profile"),
	}
}

// Result reports what EnsurePathEntry did.
type Result struct {
	ConfigFile string // file the export was written to; empty when skipped
	Skipped    bool   // true when no candidate startup file exists
}

// EnsurePathEntry puts binDir and sbinDir first on PATH via the managed
// export line. Managed lines are scrubbed from every existing candidate
// file, then a single replacement is appended to the highest-priority one.
func (e *Editor) EnsurePathEntry(binDir, sbinDir string) (Result, error) {
	var target string
	for _, path := range e.Candidates() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if target == "" {
			target = path
			continue
		}
		if err := scrub(path, nil); err != nil {
			return Result{}, err
		}
	}

	if target == "" {
		return Result{Skipped: true}, nil
	}

	line := fmt.Sprintf("export PATH=%q:$PATH %s", binDir+":"+sbinDir, marker)
	if err := scrub(target, &line); err != nil {
		return Result{}, err
	}

	return Result{ConfigFile: target}, nil
}

// scrub removes every managed line from path and, when replacement is
// non-nil, appends it as the single managed line. The file's mode is
// preserved.
func scrub(path string, replacement *string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	lines := strings.Split(string(content), "\n")
	// A trailing newline leaves an empty final element; drop it so the
	// rejoin below controls the file's tail.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	kept := make([]string, 0, len(lines)+1)
	removed := 0
	for _, line := range lines {
		if strings.Contains(line, marker) {
			removed++
			continue
		}
		kept = append(kept, line)
	}

	if removed == 0 && replacement == nil {
		return nil
	}
	if replacement != nil {
		kept = append(kept, *replacement)
	}

	mode := os.FileMode(0644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode()
	}

	out := strings.Join(kept, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(path, []byte(out), mode); err != nil {
		return fmt.Errorf("cannot rewrite config file %s: %w", path, err)
	}
	return nil
}

// ManagedLineCount reports how many managed lines path currently carries.
// Used by doctor to verify the single-line invariant. A missing file counts
// as zero.
func ManagedLineCount(path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	count := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.Contains(line, marker) {
			count++
		}
	}
	return count, nil
}
