// Package watcher observes the managed PHP links for changes made outside
// phpswitch.
//
// A bare `brew link php@8.3` or a `brew upgrade` relinks {prefix}/bin/php
// without going through the switch procedure, leaving the switch history
// blind to the change. The watcher fills that gap: an fsnotify watch over
// {prefix}/bin and {prefix}/sbin picks up events on the php and php-fpm
// paths, lets the event burst settle, re-reads the active link, and records
// the new target in the switch history as an external event.
//
// Key properties:
//   - Only the managed php and php-fpm paths are considered; events for
//     other binaries in the watched directories are ignored
//   - Event bursts settle before the link is re-read, so a remove+create
//     relink records one event, not two
//   - Observation only: the watcher never mutates links, services, or
//     shell configuration
//   - Daemon mode with PID file management and SIGTERM/SIGINT handling
//
// Example usage:
//
//	links := linker.New("/opt/homebrew")
//	st, err := store.New("~/.phpswitch/phpswitch.db")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer st.Close()
//
//	w, err := watcher.New(links, st)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Watch in the foreground
//	if err := w.Start(); err != nil {
//		log.Fatal(err)
//	}
//	defer w.Stop()
//
//	// Or detach as a daemon
//	if err := w.StartDaemon("~/.phpswitch/watch.pid", "~/.phpswitch/watch.log"); err != nil {
//		log.Fatal(err)
//	}
package watcher
