package app

import (
	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/switcher"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop all php-fpm services",
	Long: `Stop every running php-family service under brew services.

Nothing running is not an error; the command reports it and exits
cleanly.`,
	Example: `  # Stop php-fpm
  phpswitch stop`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	RootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}

	sw := switcher.New(switcher.Deps{
		Brew:    env.client,
		Printer: output.New(),
		Prefix:  env.prefix,
	})
	return sw.StopAll()
}
