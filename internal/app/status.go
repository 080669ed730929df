package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/config"
	"github.com/sash04ek/macos-php-switcher/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active PHP version and installed formulae",
	Long: `Display the active PHP version and every installed PHP formula.

Shows:
  • The version the php binary on PATH reports
  • Installed PHP formulae with their versions
  • php-fpm service state per formula
  • Which formula the active marker (*) points at

Running phpswitch with no arguments shows the same view.`,
	Example: `  # Check the active version
  phpswitch status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	printer := output.New()

	env, err := newEnv()
	if err != nil {
		return err
	}

	if _, err := env.runner.LookPath("brew"); err != nil {
		printer.Errorf("Homebrew not found on PATH")
		fmt.Println("phpswitch drives Homebrew; install it from https://brew.sh and retry.")
		return nil
	}

	formulae, err := env.client.InstalledPHP()
	if err != nil {
		return err
	}

	active, ok := env.client.ActiveVersion()
	services, err := env.client.PHPServices()
	if err != nil {
		printer.Warnf("%v", err)
	}

	fmt.Println()
	if ok {
		printer.Successf("Active PHP: %s", active)
	} else {
		printer.Warnf("No active php binary at %s/bin/php", env.prefix)
	}
	fmt.Println()

	fmt.Print(output.RenderVersionTable(formulae, services, active))

	if line := lastSwitchLine(env.cfg); line != "" {
		fmt.Println()
		fmt.Println(line)
	}

	fmt.Println()
	fmt.Println("Run 'phpswitch <version>' to switch, 'phpswitch doctor' to diagnose.")
	return nil
}

// lastSwitchLine summarizes the most recent history event, or returns ""
// when history is disabled, empty, or unreadable.
func lastSwitchLine(cfg config.Config) string {
	st, err := openHistory(cfg)
	if err != nil || st == nil {
		return ""
	}
	defer st.Close()

	ev, err := st.LastEvent()
	if err != nil || ev == nil {
		return ""
	}

	from := ev.FromVersion
	if from == "" {
		from = "none"
	}
	return fmt.Sprintf("Last switch: %s -> %s (%s, %s)",
		from, ev.ToVersion, ev.Outcome, ev.CreatedAt.Format("2006-01-02 15:04"))
}
