package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/logging"
	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

var (
	prefixFlag  string
	debugFlag   bool
	noColorFlag bool

	// RootCmd is the root command for phpswitch
	RootCmd = &cobra.Command{
		Use:   "phpswitch",
		Short: "Switch the active Homebrew PHP version",
		Long: `phpswitch switches the active Homebrew PHP version in one command: it
relinks {prefix}/bin/php and {prefix}/sbin/php-fpm, keeps at most one
php-fpm service running, and maintains a single PATH line in your shell
config.

Quick Start:
  1. phpswitch            # see installed versions
  2. phpswitch 8.3        # switch to PHP 8.3
  3. php --version        # verify

Features:
  • One-command switch with post-switch verification
  • php-fpm service management (at most one service running)
  • Shell PATH maintenance (exactly one managed line)
  • Switch history with a queryable log
  • Optional watch daemon that records relinks made behind phpswitch's back

Examples:
  # Show installed versions and the active one
  phpswitch

  # Switch to PHP 8.3
  phpswitch 8.3

  # Switch and wait until php-fpm reports started
  phpswitch switch 8.1 --wait

  # Stop every php-fpm service
  phpswitch stop

  # Watch for relinks made outside phpswitch
  phpswitch watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(debugFlag)
			if noColorFlag || !output.IsColorEnabled() {
				output.DisableColor()
			}
		},
		RunE: runRoot,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&prefixFlag, "prefix", "", "Homebrew prefix (default: detected)")
	RootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")
	RootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "disable colored output")

	RootCmd.SuggestionsMinimumDistance = 2
}

// runRoot handles the bare invocation forms: no arguments shows the status
// view, a version token switches, anything else is an unknown command.
func runRoot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return runStatus(cmd, args)
	}
	if len(args) > 1 {
		_ = cmd.Help()
		return fmt.Errorf("accepts one version argument, received %d", len(args))
	}
	if isVersionToken(args[0]) {
		return doSwitch(args[0])
	}

	_ = cmd.Help()
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}

// isVersionToken reports whether arg is a bare MAJOR.MINOR token that should
// dispatch to switch.
func isVersionToken(arg string) bool {
	_, err := phpver.Parse(arg)
	return err == nil
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// phpswitchDir returns ~/.phpswitch, creating it if needed. The database,
// pid file, and watch log all live there.
func phpswitchDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	dir := filepath.Join(home, ".phpswitch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	return dir, nil
}

// getDBPath returns the switch history database path.
func getDBPath() (string, error) {
	dir, err := phpswitchDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "phpswitch.db"), nil
}

// getDefaultPIDFile returns the watch daemon's default PID file path.
func getDefaultPIDFile() (string, error) {
	dir, err := phpswitchDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the watch daemon's default log file path.
func getDefaultLogFile() (string, error) {
	dir, err := phpswitchDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}
