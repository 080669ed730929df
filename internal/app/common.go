package app

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sash04ek/macos-php-switcher/internal/brew"
	"github.com/sash04ek/macos-php-switcher/internal/config"
	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/store"
)

// appEnv is the wired set of subsystems a command operates on: effective
// configuration, resolved Homebrew prefix, and a live brew client.
type appEnv struct {
	cfg    config.Config
	prefix string
	runner brew.Runner
	client *brew.Client
}

// newEnv loads the configuration and wires the brew client against the
// resolved prefix. Precedence for the prefix: --prefix flag,
// HOMEBREW_PREFIX, config file, platform default.
func newEnv() (*appEnv, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	prefix, err := cfg.ResolvePrefix(prefixFlag)
	if err != nil {
		return nil, err
	}

	runner := brew.ExecRunner{}
	return &appEnv{
		cfg:    cfg,
		prefix: prefix,
		runner: runner,
		client: brew.New(runner, prefix),
	}, nil
}

// openHistory opens the switch history store when it is enabled. A nil
// store with a nil error means history is disabled by configuration.
func openHistory(cfg config.Config) (*store.Store, error) {
	if !cfg.HistoryEnabled() {
		return nil, nil
	}

	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// confirmPrompt returns a confirm func reading y/N answers from stdin.
func confirmPrompt(printer *output.Printer) func(string) bool {
	return newConfirm(os.Stdin, printer.Out())
}

// newConfirm builds a confirm func over explicit streams. Anything but an
// explicit yes declines, including read errors and EOF.
func newConfirm(in io.Reader, out io.Writer) func(string) bool {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
