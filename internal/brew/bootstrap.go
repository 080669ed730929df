package brew

import (
	"errors"
	"fmt"
)

// ErrBrewMissing is returned when Homebrew is absent and the user declined
// to install it.
var ErrBrewMissing = errors.New("homebrew is not installed")

// bootstrapCommand is Homebrew's official install incantation. The outer
// bash performs the command substitution so the installer itself runs with
// stdin still attached to the terminal, which it needs for its own prompts.
const bootstrapCommand = `bash -c "$(curl -fsSL https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh)"`

// EnsureInstalled verifies brew is reachable on PATH. When it is not, the
// user is offered Homebrew's own bootstrap installer. The return value is
// true when a fresh install just ran; the caller should tell the user to
// restart their shell rather than continue with a half-initialized PATH.
// Declining the offer yields ErrBrewMissing.
func EnsureInstalled(runner Runner, confirm func(prompt string) bool) (bool, error) {
	if _, err := runner.LookPath("brew"); err == nil {
		return false, nil
	}

	if !confirm("Homebrew is required but not installed. Install it now?") {
		return false, ErrBrewMissing
	}

	if err := runner.RunInteractive("/bin/bash", "-c", bootstrapCommand); err != nil {
		return false, fmt.Errorf("homebrew install failed: %w", err)
	}

	return true, nil
}
