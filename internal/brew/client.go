package brew

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

// Client wraps the brew and php invocations phpswitch needs. Every query
// hits the live system; nothing is cached between calls, so results always
// reflect the state Homebrew reports right now.
type Client struct {
	runner Runner
	prefix string
}

// New returns a Client using the given runner and Homebrew prefix.
func New(runner Runner, prefix string) *Client {
	return &Client{runner: runner, prefix: prefix}
}

// Prefix returns the Homebrew prefix the client was configured with.
func (c *Client) Prefix() string {
	return c.prefix
}

// InstalledPHP returns the installed PHP family formulae with their
// versions. Formulae outside the family (phpunit, php-cs-fixer) are ignored.
func (c *Client) InstalledPHP() ([]Formula, error) {
	out, err := c.runner.Output("brew", "list", "--formula")
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("brew list failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("brew list failed: %w", err)
	}

	var formulae []Formula
	for _, name := range parseFormulaNames(string(out)) {
		if !phpver.IsFamilyFormula(name) {
			continue
		}

		vout, err := c.runner.Output("brew", "list", "--versions", name)
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return nil, fmt.Errorf("brew list --versions %s failed: %w (stderr: %s)", name, err, string(exitErr.Stderr))
			}
			return nil, fmt.Errorf("brew list --versions %s failed: %w", name, err)
		}

		version, ok := parseVersionsLine(string(vout))
		if !ok {
			// Installed keg with no version line; nothing to switch to.
			continue
		}

		formulae = append(formulae, Formula{Name: name, Version: version})
	}

	return formulae, nil
}

// Installed returns the installed formula that provides version v. An exact
// pin (php@8.1) wins over the primary php formula carrying the same
// MAJOR.MINOR.
func (c *Client) Installed(v phpver.Version) (Formula, bool, error) {
	formulae, err := c.InstalledPHP()
	if err != nil {
		return Formula{}, false, err
	}

	for _, f := range formulae {
		if pin, ok := phpver.FromFormula(f.Name); ok && pin == v {
			return f, true, nil
		}
	}
	for _, f := range formulae {
		if _, ok := phpver.FromFormula(f.Name); ok {
			continue
		}
		if v.MatchesFull(f.Version) {
			return f, true, nil
		}
	}

	return Formula{}, false, nil
}

// ActiveVersion returns the full version string reported by the php binary
// at {prefix}/bin/php. ok is false when the binary is absent, fails to run,
// or reports something unparseable. That state is ordinary (fresh machine,
// broken link), not an error.
func (c *Client) ActiveVersion() (string, bool) {
	bin := filepath.Join(c.prefix, "bin", "php")
	out, err := c.runner.Output(bin, "--version")
	if err != nil {
		return "", false
	}
	version, err := parsePHPVersion(string(out))
	if err != nil {
		return "", false
	}
	return version, true
}

// IsVersionActive reports whether the active php binary matches v at
// MAJOR.MINOR granularity.
func (c *Client) IsVersionActive(v phpver.Version) bool {
	full, ok := c.ActiveVersion()
	return ok && v.MatchesFull(full)
}

// Install installs a formula via brew install.
func (c *Client) Install(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "install", formula)
	if err != nil {
		return fmt.Errorf("brew install %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// Link links a formula's keg into the prefix, overwriting whatever brew
// currently has linked.
func (c *Client) Link(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "link", "--overwrite", "--force", formula)
	if err != nil {
		return fmt.Errorf("brew link %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// Unlink removes a formula's keg links from the prefix.
func (c *Client) Unlink(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "unlink", formula)
	if err != nil {
		return fmt.Errorf("brew unlink %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// DetectPrefix asks brew for its installation prefix. Used by doctor to
// cross-check the configured prefix against what brew itself reports.
func (c *Client) DetectPrefix() (string, error) {
	output, err := c.runner.Output("brew", "--prefix")
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("brew --prefix failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("brew --prefix failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// parseFormulaNames splits `brew list --formula` output into formula names,
// one per line.
func parseFormulaNames(out string) []string {
	var names []string
	for _, line := range strings.Split(out, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// parseVersionsLine extracts the newest version from a `brew list --versions`
// line such as "php@8.1 8.1.19" or "php 8.3.7 8.3.6". Homebrew lists the
// newest installed keg first.
func parseVersionsLine(out string) (string, bool) {
	fields := strings.Fields(strings.TrimSpace(out))
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// phpVersionRE matches the leading version line of `php --version` output,
// e.g. "PHP 8.1.19 (cli) (built: May 11 2023 12:51:40)".
var phpVersionRE = regexp.MustCompile(`(?m)^PHP (\S+)`)

// parsePHPVersion extracts the version token from `php --version` output
// and validates it parses as a version.
func parsePHPVersion(out string) (string, error) {
	m := phpVersionRE.FindStringSubmatch(out)
	if m == nil {
		return "", fmt.Errorf("no PHP version line in output")
	}
	if _, err := phpver.MajorMinorOf(m[1]); err != nil {
		return "", fmt.Errorf("unrecognized PHP version %q: %w", m[1], err)
	}
	return m[1], nil
}
