package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/linker"
	"github.com/sash04ek/macos-php-switcher/internal/logging"
	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch for PHP relinks made outside phpswitch",
		Long: `Watch the bin and sbin directories under the Homebrew prefix and
record relinks of the php and php-fpm binaries that happen behind
phpswitch's back, such as a bare 'brew link php@8.3' or a 'brew
upgrade'. Observed relinks land in the switch history.

Watch modes:
  • Foreground (default): run in the current terminal, Ctrl+C to stop
  • Daemon: run as a detached background process
  • Stop: stop a running daemon

The watcher only observes. It never relinks, never touches services,
and never edits shell config.`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  phpswitch watch

  # Run as background daemon
  phpswitch watch --daemon

  # Stop the daemon
  phpswitch watch --stop`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for the daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.phpswitch/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.phpswitch/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop a running daemon")

	watchCmd.Flags().MarkHidden("daemon-child")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return err
		}
		watchPIDFile = defaultPID
	}
	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return err
		}
		watchLogFile = defaultLog
	}

	if watchStop {
		return stopWatchDaemon()
	}

	env, err := newEnv()
	if err != nil {
		return err
	}

	st, err := openHistory(env.cfg)
	if err != nil {
		return fmt.Errorf("opening switch history: %w", err)
	}
	if st != nil {
		defer st.Close()
	}

	var history watcher.History
	if st != nil {
		history = st
	}

	w, err := watcher.New(linker.New(env.prefix), history)
	if err != nil {
		return err
	}

	if watchDaemon {
		return startWatchDaemon(w)
	}
	if watchDaemonChild {
		return runWatchDaemonChild(w)
	}
	return runWatchForeground(w)
}

func stopWatchDaemon() error {
	printer := output.New()

	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return err
	}
	if !running {
		printer.Warnf("Watch daemon is not running")
		return nil
	}

	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		return err
	}
	printer.Successf("Watch daemon stopped")
	return nil
}

func startWatchDaemon(w *watcher.Watcher) error {
	printer := output.New()

	if err := w.StartDaemon(watchPIDFile, watchLogFile); err != nil {
		return err
	}

	printer.Successf("Watch daemon started")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Println()
	fmt.Println("To stop: phpswitch watch --stop")
	return nil
}

// runWatchDaemonChild is the detached process. Output streams are already
// redirected to the log file; structured logging goes there too.
func runWatchDaemonChild(w *watcher.Watcher) error {
	if err := logging.InitFile(watchLogFile, debugFlag); err != nil {
		return err
	}
	defer logging.Close()

	return w.RunDaemon(watchPIDFile)
}

func runWatchForeground(w *watcher.Watcher) error {
	printer := output.New()

	if err := w.Start(); err != nil {
		return err
	}
	printer.Successf("Watching for php relinks (press Ctrl+C to stop)")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh
	fmt.Printf("\nReceived %v, shutting down...\n", sig)

	if err := w.Stop(); err != nil {
		return err
	}
	printer.Successf("Watcher stopped")
	return nil
}
