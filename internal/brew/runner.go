package brew

import (
	"os"
	"os/exec"
	"time"

	"github.com/sash04ek/macos-php-switcher/internal/logging"
)

// Runner executes external commands. The indirection keeps every brew and
// php invocation substitutable in tests; nothing outside this package should
// reach for os/exec directly.
type Runner interface {
	// Output runs the command and returns its stdout. On failure the
	// returned error is the *exec.ExitError with stderr captured.
	Output(name string, args ...string) ([]byte, error)

	// CombinedOutput runs the command and returns interleaved
	// stdout and stderr. Used for mutating brew commands whose progress
	// output matters in error messages.
	CombinedOutput(name string, args ...string) ([]byte, error)

	// RunInteractive runs the command attached to the user's terminal.
	// Used for the Homebrew bootstrap installer, which prompts on its own.
	RunInteractive(name string, args ...string) error

	// LookPath reports where name resolves on PATH.
	LookPath(name string) (string, error)
}

// ExecRunner is the production Runner backed by os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(name string, args ...string) ([]byte, error) {
	start := time.Now()
	out, err := exec.Command(name, args...).Output()
	logCommand(name, args, start, err)
	return out, err
}

func (ExecRunner) CombinedOutput(name string, args ...string) ([]byte, error) {
	start := time.Now()
	out, err := exec.Command(name, args...).CombinedOutput()
	logCommand(name, args, start, err)
	return out, err
}

func (ExecRunner) RunInteractive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	start := time.Now()
	err := cmd.Run()
	logCommand(name, args, start, err)
	return err
}

func logCommand(name string, args []string, start time.Time, err error) {
	ev := logging.Logger.Debug().
		Str("cmd", name).
		Strs("args", args).
		Dur("elapsed", time.Since(start))
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("exec")
}

func (ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
