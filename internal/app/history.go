package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/output"
)

var (
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent switch events",
		Long: `Show the switch history, newest first.

Every completed switch, restart, and no-op lands here, as do relinks
the watch daemon observed outside phpswitch. History is best-effort: a
switch never fails because recording did.`,
		Example: `  # Last 20 events
  phpswitch history

  # Last 5 events
  phpswitch history -n 5`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show")
	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	printer := output.New()

	env, err := newEnv()
	if err != nil {
		return err
	}

	if !env.cfg.HistoryEnabled() {
		printer.Warnf("Switch history is disabled in the config file")
		return nil
	}

	st, err := openHistory(env.cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	events, err := st.RecentEvents(historyLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderHistoryTable(events))
	return nil
}
