// Package switcher implements the ordered PHP switch procedure.
//
// A switch is linear and fail-fast: stop running services, unlink the old
// version, link the new one, update the shell config, start the service,
// verify. The procedure is expressed as an ordered slice of named steps so
// the fatal/non-fatal behavior of every stage is auditable in one place.
// There is no rollback; a failed switch leaves whatever state brew and the
// filesystem reached, and the error says what to inspect.
package switcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/cenk/backoff"

	"github.com/sash04ek/macos-php-switcher/internal/brew"
	"github.com/sash04ek/macos-php-switcher/internal/linker"
	"github.com/sash04ek/macos-php-switcher/internal/logging"
	"github.com/sash04ek/macos-php-switcher/internal/output"
	"github.com/sash04ek/macos-php-switcher/internal/phpver"
	"github.com/sash04ek/macos-php-switcher/internal/shell"
	"github.com/sash04ek/macos-php-switcher/internal/store"
)

// ErrVersionNotInstalled is returned when the requested version has no
// installed formula and none was installed during the switch.
var ErrVersionNotInstalled = errors.New("version not installed")

// ErrAborted is returned when the user declines an interactive prompt.
var ErrAborted = errors.New("aborted")

// ErrVerifyMismatch is returned when the active binary does not report the
// requested version after the switch completed.
var ErrVerifyMismatch = errors.New("active version mismatch after switch")

// Brew is the slice of the Homebrew client the switch procedure drives.
type Brew interface {
	ActiveVersion() (string, bool)
	Installed(v phpver.Version) (brew.Formula, bool, error)
	IsServiceRunning(v phpver.Version) (bool, error)
	RunningPHPServices() ([]brew.Service, error)
	Install(formula string) error
	Link(formula string) error
	Unlink(formula string) error
	StartService(formula string) error
	StopService(formula string) error
	RestartService(formula string) error
}

// Links mutates the active symlinks under the Homebrew prefix.
type Links interface {
	ActiveBinary() string
	Unlink() (linker.UnlinkResult, error)
	Link(formula string) error
	LinkCompanion(formula string) error
}

// Shell maintains the managed PATH line in shell startup files.
type Shell interface {
	EnsurePathEntry(binDir, sbinDir string) (shell.Result, error)
}

// History records terminal switch outcomes.
type History interface {
	RecordSwitch(event *store.SwitchEvent) error
}

// Deps are the external-system handles a Switcher drives. Production wiring
// happens in internal/app; tests substitute in-memory fakes.
type Deps struct {
	Brew    Brew
	Links   Links
	Shell   Shell
	History History // nil disables history recording
	Printer *output.Printer
	Confirm func(prompt string) bool // nil declines every prompt
	Prefix  string
}

// Options adjust a single switch invocation.
type Options struct {
	Restart bool          // restart php-fpm even when the version is already active
	Yes     bool          // assent to prompts without asking
	Wait    time.Duration // poll until php-fpm reports started; 0 skips the poll
}

// Switcher runs the switch procedure against injected handles.
type Switcher struct {
	brew    Brew
	links   Links
	shell   Shell
	history History
	printer *output.Printer
	confirm func(string) bool
	prefix  string
}

// New returns a Switcher over the given handles.
func New(deps Deps) *Switcher {
	s := &Switcher{
		brew:    deps.Brew,
		links:   deps.Links,
		shell:   deps.Shell,
		history: deps.History,
		printer: deps.Printer,
		confirm: deps.Confirm,
		prefix:  deps.Prefix,
	}
	if s.printer == nil {
		s.printer = output.New()
	}
	if s.confirm == nil {
		s.confirm = func(string) bool { return false }
	}
	return s
}

// step is one stage of the switch procedure. The slice order in steps is the
// execution order. Failures of fatal steps abort the switch; everything else
// is downgraded to a warning. skipOnRestart marks the stages a pure service
// restart does not need.
type step struct {
	name          string
	fatal         bool
	skipOnRestart bool
	run           func() error
}

// switchRun is the mutable state of one switch invocation, threaded through
// the steps.
type switchRun struct {
	s      *Switcher
	target phpver.Version
	opts   Options

	fromVersion string       // MAJOR.MINOR active before the switch, "" when none
	formula     brew.Formula // resolved by the existence step
	restartOnly bool         // version already active; only the service is cycled
	done        bool         // terminal outcome reached, remaining steps skipped
	outcome     string
	detail      string
}

func (r *switchRun) steps() []step {
	return []step{
		{name: "precondition", fatal: true, run: r.precondition},
		{name: "existence", fatal: true, run: r.existence},
		{name: "services stopping", skipOnRestart: true, run: r.stopServices},
		{name: "unlinking", skipOnRestart: true, run: r.unlink},
		{name: "linking", fatal: true, skipOnRestart: true, run: r.link},
		{name: "companion linking", skipOnRestart: true, run: r.companion},
		{name: "shell config", skipOnRestart: true, run: r.shellConfig},
		{name: "service starting", run: r.startService},
		{name: "verifying", fatal: true, run: r.verify},
	}
}

// Switch moves the active PHP to the requested MAJOR.MINOR version.
func (s *Switcher) Switch(input string, opts Options) error {
	target, err := phpver.Parse(input)
	if err != nil {
		return err
	}

	r := &switchRun{s: s, target: target, opts: opts}

	for _, st := range r.steps() {
		if st.skipOnRestart && r.restartOnly {
			continue
		}
		if err := st.run(); err != nil {
			logging.Logger.Debug().Str("step", st.name).Err(err).Msg("switch step failed")
			if st.fatal {
				return err
			}
			s.printer.Warnf("%v", err)
		}
		if r.done {
			break
		}
	}

	s.record(&store.SwitchEvent{
		FromVersion: r.fromVersion,
		ToVersion:   target.String(),
		Formula:     r.formula.Name,
		Outcome:     r.outcome,
		Detail:      r.detail,
	})

	return nil
}

// StopAll stops every running php service. Zero running services is a
// warning, not an error.
func (s *Switcher) StopAll() error {
	running, err := s.brew.RunningPHPServices()
	if err != nil {
		return err
	}
	if len(running) == 0 {
		s.printer.Warnf("No php-fpm service is running")
		return nil
	}
	s.stopEach(running)
	return nil
}

// stopEach stops the given services one by one, warning on individual
// failures.
func (s *Switcher) stopEach(running []brew.Service) {
	for _, svc := range running {
		if err := s.brew.StopService(svc.Name); err != nil {
			s.printer.Warnf("%v", err)
			continue
		}
		s.printer.Successf("Stopped %s", svc.Name)
	}
}

// record appends the terminal outcome to the switch history. History is
// advisory; a store failure is reported and otherwise ignored.
func (s *Switcher) record(event *store.SwitchEvent) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordSwitch(event); err != nil {
		s.printer.Warnf("switch history not recorded: %v", err)
	}
}

// precondition resolves the starting state. An already-active version with a
// running service terminates the run as a no-op, or degrades it to a service
// restart under --restart. Comparison is MAJOR.MINOR only; patch upgrades go
// through brew, not phpswitch.
func (r *switchRun) precondition() error {
	full, ok := r.s.brew.ActiveVersion()
	if ok {
		if from, err := phpver.MajorMinorOf(full); err == nil {
			r.fromVersion = from.String()
		}
	}

	if !ok || !r.target.MatchesFull(full) {
		return nil
	}

	running, err := r.s.brew.IsServiceRunning(r.target)
	if err != nil {
		r.s.printer.Warnf("cannot read php-fpm state: %v", err)
		return nil
	}
	if !running {
		// Active but stopped: the full switch relinks and starts it.
		return nil
	}

	if r.opts.Restart {
		r.restartOnly = true
		r.outcome = store.OutcomeRestarted
		r.detail = "already active, restart requested"
		r.s.printer.Infof("PHP %s is already active, restarting php-fpm", r.target)
		return nil
	}

	r.done = true
	r.outcome = store.OutcomeNoop
	r.detail = "already active and running"
	// Existence never runs on this path; resolve the formula here so the
	// history row still names it.
	if f, found, err := r.s.brew.Installed(r.target); err == nil && found {
		r.formula = f
	} else {
		r.formula = brew.Formula{Name: r.target.Formula()}
	}
	r.s.printer.Successf("PHP %s is already active and php-fpm is running", r.target)
	return nil
}

// existence resolves the target formula, offering to install it when absent.
func (r *switchRun) existence() error {
	formula, found, err := r.s.brew.Installed(r.target)
	if err != nil {
		return err
	}
	if found {
		r.formula = formula
		return nil
	}

	name := r.target.Formula()
	if !r.opts.Yes && !r.s.confirm(fmt.Sprintf("PHP %s is not installed. Install %s now?", r.target, name)) {
		return fmt.Errorf("%w: PHP %s (install %w)", ErrVersionNotInstalled, r.target, ErrAborted)
	}

	r.s.printer.Infof("Installing %s, this can take a few minutes...", name)
	if err := r.s.brew.Install(name); err != nil {
		return err
	}

	formula, found, err = r.s.brew.Installed(r.target)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s installed but not listed by brew", ErrVersionNotInstalled, name)
	}
	r.formula = formula
	r.s.printer.Successf("Installed %s", name)
	return nil
}

// stopServices stops every running php service so at most one is started
// once the switch completes. Individual stop failures are warnings.
func (r *switchRun) stopServices() error {
	running, err := r.s.brew.RunningPHPServices()
	if err != nil {
		return err
	}
	if len(running) == 0 {
		r.s.printer.Infof("No php-fpm service running")
		return nil
	}
	r.s.stopEach(running)
	return nil
}

// unlink detaches the previous version: a best-effort brew unlink for keg
// bookkeeping, then removal of the active symlink. A regular file at the
// active path is left alone; the linking step will refuse to clobber it.
func (r *switchRun) unlink() error {
	if r.fromVersion != "" && r.fromVersion != r.target.String() {
		if from, err := phpver.Parse(r.fromVersion); err == nil {
			if f, found, err := r.s.brew.Installed(from); err == nil && found {
				if err := r.s.brew.Unlink(f.Name); err != nil {
					r.s.printer.Warnf("%v", err)
				}
			}
		}
	}

	result, err := r.s.links.Unlink()
	if err != nil {
		return err
	}
	if result == linker.UnlinkSkippedRegularFile {
		r.s.printer.Warnf("%s is not a symlink; leaving it in place", r.s.links.ActiveBinary())
	}
	return nil
}

// link points the prefix at the target formula. brew link is bookkeeping;
// the forced symlink is what puts php on PATH, and its failure is fatal.
func (r *switchRun) link() error {
	if err := r.s.brew.Link(r.formula.Name); err != nil {
		r.s.printer.Warnf("%v", err)
	}
	if err := r.s.links.Link(r.formula.Name); err != nil {
		return err
	}
	r.s.printer.Successf("Linked %s", r.formula.Name)
	return nil
}

// companion relinks php-fpm alongside php. Formulae without FPM produce a
// warning, never a failed switch.
func (r *switchRun) companion() error {
	return r.s.links.LinkCompanion(r.formula.Name)
}

// shellConfig rewrites the managed PATH line so new shells resolve the
// formula's own bin and sbin first.
func (r *switchRun) shellConfig() error {
	binDir := filepath.Join(r.s.prefix, "opt", r.formula.Name, "bin")
	sbinDir := filepath.Join(r.s.prefix, "opt", r.formula.Name, "sbin")

	result, err := r.s.shell.EnsurePathEntry(binDir, sbinDir)
	if err != nil {
		return err
	}
	if result.Skipped {
		r.s.printer.Warnf("No shell config file found; add %s to your PATH manually", binDir)
		return nil
	}
	r.s.printer.Successf("Updated PATH in %s", result.ConfigFile)
	return nil
}

// startService starts (or restarts) the target's service. The switch is
// already effective at this point, so failures are warnings.
func (r *switchRun) startService() error {
	var err error
	if r.restartOnly {
		err = r.s.brew.RestartService(r.formula.Name)
	} else {
		err = r.s.brew.StartService(r.formula.Name)
	}
	if err != nil {
		return err
	}

	if r.restartOnly {
		r.s.printer.Successf("Restarted %s", r.formula.Name)
	} else {
		r.s.printer.Successf("Started %s", r.formula.Name)
	}

	if r.opts.Wait > 0 {
		return r.waitForService()
	}
	return nil
}

// waitForService polls brew services until the target reports started,
// backing off exponentially up to the configured wait bound.
func (r *switchRun) waitForService() error {
	spin := output.NewSpinner(fmt.Sprintf("Waiting for %s", r.formula.Name)).WithTimeout(r.opts.Wait)
	spin.SetWriter(r.s.printer.Out())
	spin.Start()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = r.opts.Wait

	check := func() error {
		running, err := r.s.brew.IsServiceRunning(r.target)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !running {
			return errors.New("not started yet")
		}
		return nil
	}

	if err := backoff.Retry(check, b); err != nil {
		spin.Stop()
		return fmt.Errorf("%s did not report started within %s: %v", r.formula.Name, r.opts.Wait, err)
	}
	spin.StopWithMessage(fmt.Sprintf("%s reported started", r.formula.Name))
	return nil
}

// verify re-reads the active version and requires it to match the target at
// MAJOR.MINOR granularity.
func (r *switchRun) verify() error {
	full, ok := r.s.brew.ActiveVersion()
	if !ok {
		return fmt.Errorf("%w: %s did not report a version", ErrVerifyMismatch, r.s.links.ActiveBinary())
	}
	if !r.target.MatchesFull(full) {
		return fmt.Errorf("%w: wanted %s, active binary reports %s", ErrVerifyMismatch, r.target, full)
	}

	if r.outcome == "" {
		r.outcome = store.OutcomeSwitched
	}
	r.s.printer.Successf("PHP %s is now active (%s)", r.target, full)
	return nil
}
