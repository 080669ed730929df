package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/brew"
	"github.com/sash04ek/macos-php-switcher/internal/linker"
	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/phpver"
	"github.com/sash04ek/macos-php-switcher/internal/shell"
	"github.com/sash04ek/macos-php-switcher/internal/switcher"
)

var (
	switchRestart bool
	switchYes     bool
	switchWait    bool

	switchCmd = &cobra.Command{
		Use:   "switch <version>",
		Short: "Switch the active PHP version",
		Long: `Switch the active PHP to the given MAJOR.MINOR version.

The switch stops every running php-fpm service, relinks the php and
php-fpm binaries under the Homebrew prefix, rewrites the managed PATH
line in your shell config, starts the new version's service, and
verifies the binary on PATH reports the requested version.

A version that is not installed triggers an install offer. A version
that is already active and running is a no-op unless --restart is
given.

'phpswitch 8.3' is shorthand for 'phpswitch switch 8.3'.`,
		Example: `  # Switch to PHP 8.3
  phpswitch switch 8.3

  # Restart php-fpm even if 8.3 is already active
  phpswitch switch 8.3 --restart

  # Install without prompting when the version is missing
  phpswitch switch 8.2 --yes

  # Wait until php-fpm reports started
  phpswitch switch 8.1 --wait`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doSwitch(args[0])
		},
	}
)

func init() {
	switchCmd.Flags().BoolVar(&switchRestart, "restart", false, "restart php-fpm when the version is already active")
	switchCmd.Flags().BoolVar(&switchYes, "yes", false, "assume yes for install prompts")
	switchCmd.Flags().BoolVar(&switchWait, "wait", false, "wait until php-fpm reports started")

	// The bare-version form (phpswitch 8.3) parses the same flags on the
	// root command.
	RootCmd.Flags().BoolVar(&switchRestart, "restart", false, "restart php-fpm when the version is already active")
	RootCmd.Flags().BoolVar(&switchYes, "yes", false, "assume yes for install prompts")
	RootCmd.Flags().BoolVar(&switchWait, "wait", false, "wait until php-fpm reports started")

	RootCmd.AddCommand(switchCmd)
}

func doSwitch(input string) error {
	// Reject malformed versions before touching anything: no config load,
	// no brew lookups, no history directory.
	if _, err := phpver.Parse(input); err != nil {
		return err
	}

	printer := output.New()

	env, err := newEnv()
	if err != nil {
		return err
	}

	confirm := confirmPrompt(printer)
	if switchYes {
		confirm = func(string) bool { return true }
	}

	freshInstall, err := brew.EnsureInstalled(env.runner, confirm)
	if err != nil {
		return err
	}
	if freshInstall {
		printer.Successf("Homebrew installed")
		printer.Infof("Restart your shell so brew is on PATH, then rerun: phpswitch %s", input)
		return nil
	}

	st, err := openHistory(env.cfg)
	if err != nil {
		printer.Warnf("switch history unavailable: %v", err)
	}
	if st != nil {
		defer st.Close()
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("resolving home directory: %w", err)
	}

	deps := switcher.Deps{
		Brew:    env.client,
		Links:   linker.New(env.prefix),
		Shell:   shell.New(home),
		Printer: printer,
		Confirm: confirm,
		Prefix:  env.prefix,
	}
	if st != nil {
		deps.History = st
	}

	opts := switcher.Options{Restart: switchRestart, Yes: switchYes}
	if switchWait {
		opts.Wait = time.Duration(env.cfg.ServiceWaitSeconds) * time.Second
	}

	return switcher.New(deps).Switch(input, opts)
}
