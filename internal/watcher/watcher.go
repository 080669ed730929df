package watcher

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sash04ek/macos-php-switcher/internal/linker"
	"github.com/sash04ek/macos-php-switcher/internal/logging"
	"github.com/sash04ek/macos-php-switcher/internal/store"
)

// History records observed relinks. *store.Store satisfies it.
type History interface {
	RecordSwitch(event *store.SwitchEvent) error
}

// settleDelay is how long the watcher lets events quiesce before re-reading
// the active link. A relink is a remove immediately followed by a create;
// evaluating once per burst records the relink, not its intermediate state.
const settleDelay = 500 * time.Millisecond

// Watcher watches the bin and sbin directories under the Homebrew prefix
// for changes to the managed php and php-fpm links.
type Watcher struct {
	links   *linker.Links
	history History // nil disables history recording

	fsw    *fsnotify.Watcher
	stopCh chan struct{}
	wg     sync.WaitGroup
	settle time.Duration

	lastTarget string // php link target at the last evaluation
}

// New creates a Watcher over the given links manager. history may be nil,
// in which case observed relinks are logged but not recorded.
func New(links *linker.Links, history History) (*Watcher, error) {
	if links == nil {
		return nil, fmt.Errorf("links cannot be nil")
	}
	return &Watcher{
		links:   links,
		history: history,
		stopCh:  make(chan struct{}),
		settle:  settleDelay,
	}, nil
}

// Start begins watching. The php link's current target is the baseline;
// only departures from it are recorded.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating filesystem watcher: %w", err)
	}

	binDir := filepath.Dir(w.links.ActiveBinary())
	if err := fsw.Add(binDir); err != nil {
		fsw.Close()
		return fmt.Errorf("watching %s: %w", binDir, err)
	}

	// sbin may not exist until a formula installs into it.
	sbinDir := filepath.Dir(w.links.CompanionBinary())
	if err := fsw.Add(sbinDir); err != nil {
		logging.Logger.Warn().Str("dir", sbinDir).Err(err).Msg("sbin not watched")
	}

	w.fsw = fsw
	_, target, _ := w.links.ActiveState()
	w.lastTarget = target

	logging.Logger.Info().Str("dir", binDir).Str("target", target).Msg("watching active php link")

	w.wg.Add(1)
	go w.run()

	return nil
}

// run consumes filesystem events until stopped. Events for the managed
// paths arm the settle timer; when it fires the link is re-read once.
func (w *Watcher) run() {
	defer w.wg.Done()

	settle := time.NewTimer(w.settle)
	if !settle.Stop() {
		<-settle.C
	}
	defer settle.Stop()
	pending := false

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isManagedPath(ev.Name) {
				continue
			}
			logging.Logger.Debug().Str("path", ev.Name).Str("op", ev.Op.String()).Msg("link event")
			if !settle.Stop() {
				select {
				case <-settle.C:
				default:
				}
			}
			settle.Reset(w.settle)
			pending = true
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Logger.Warn().Err(err).Msg("watch error")
		case <-settle.C:
			if pending {
				pending = false
				w.evaluate()
			}
		case <-w.stopCh:
			if pending {
				w.evaluate()
			}
			return
		}
	}
}

// evaluate re-reads the php link and records a change of target.
func (w *Watcher) evaluate() {
	state, target, err := w.links.ActiveState()
	if err != nil {
		logging.Logger.Warn().Err(err).Msg("cannot read active link")
		return
	}
	if state != linker.StateSymlink {
		target = ""
	}
	if target == w.lastTarget {
		return
	}

	from := versionFromTarget(w.lastTarget)
	to := versionFromTarget(target)
	formula, _ := formulaFromTarget(target)

	detail := "php -> " + target
	if target == "" {
		detail = "php link removed"
	}

	logging.Logger.Info().
		Str("from", from).
		Str("to", to).
		Str("target", target).
		Msg("relink observed")

	w.lastTarget = target

	if w.history == nil {
		return
	}
	err = w.history.RecordSwitch(&store.SwitchEvent{
		FromVersion: from,
		ToVersion:   to,
		Formula:     formula,
		Outcome:     store.OutcomeExternal,
		Detail:      detail,
	})
	if err != nil {
		logging.Logger.Warn().Err(err).Msg("relink not recorded")
	}
}

// Stop halts the event loop, evaluating any change still settling.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.wg.Wait()

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
