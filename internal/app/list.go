package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/output"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed PHP versions",
	Long: `List every PHP formula Homebrew has installed, with the version each
provides, its php-fpm service state, and a marker on the active one.`,
	Example: `  # List installed versions
  phpswitch list`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	printer := output.New()

	env, err := newEnv()
	if err != nil {
		return err
	}

	formulae, err := env.client.InstalledPHP()
	if err != nil {
		return err
	}

	active, _ := env.client.ActiveVersion()
	services, err := env.client.PHPServices()
	if err != nil {
		printer.Warnf("%v", err)
	}

	fmt.Print(output.RenderVersionTable(formulae, services, active))
	return nil
}
