// Package linker manages the active PHP symlinks under the Homebrew prefix.
//
// The active interpreter is {prefix}/bin/php and the companion service
// binary is {prefix}/sbin/php-fpm. Both are symlinks into the target
// formula's opt tree, {prefix}/opt/{formula}. Everything else about a
// formula's keg stays under brew's control; these two links are the ones
// phpswitch owns.
package linker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrLinkFailure is returned when an active-link mutation fails. Switches
// treat it as fatal.
var ErrLinkFailure = errors.New("link operation failed")

// ErrCompanionMissing is returned when a formula ships no php-fpm binary.
// Callers downgrade it to a warning.
var ErrCompanionMissing = errors.New("php-fpm binary not present")

// State describes what occupies a managed link path.
type State int

const (
	StateAbsent State = iota
	StateSymlink
	StateRegularFile
	StateOther // directory or other irregular entry
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateSymlink:
		return "symlink"
	case StateRegularFile:
		return "regular file"
	default:
		return "other"
	}
}

// UnlinkResult reports what Unlink did with the active path.
type UnlinkResult int

const (
	UnlinkRemoved UnlinkResult = iota
	UnlinkAbsent
	UnlinkSkippedRegularFile
)

// Links performs symlink operations relative to one Homebrew prefix.
type Links struct {
	prefix string
}

// New returns a Links manager for the given prefix.
func New(prefix string) *Links {
	return &Links{prefix: prefix}
}

// ActiveBinary returns the path of the php interpreter on PATH.
func (l *Links) ActiveBinary() string {
	return filepath.Join(l.prefix, "bin", "php")
}

// CompanionBinary returns the path of the php-fpm service binary.
func (l *Links) CompanionBinary() string {
	return filepath.Join(l.prefix, "sbin", "php-fpm")
}

// OptBinary returns the php interpreter inside a formula's opt tree.
func (l *Links) OptBinary(formula string) string {
	return filepath.Join(l.prefix, "opt", formula, "bin", "php")
}

// OptCompanion returns the php-fpm binary inside a formula's opt tree.
func (l *Links) OptCompanion(formula string) string {
	return filepath.Join(l.prefix, "opt", formula, "sbin", "php-fpm")
}

// ActiveState inspects the active path. For symlinks the link target is
// returned alongside the state.
func (l *Links) ActiveState() (State, string, error) {
	return inspect(l.ActiveBinary())
}

// CompanionState inspects the companion path.
func (l *Links) CompanionState() (State, string, error) {
	return inspect(l.CompanionBinary())
}

func inspect(path string) (State, string, error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StateAbsent, "", nil
		}
		return StateAbsent, "", fmt.Errorf("lstat %s: %w", path, err)
	}

	switch {
	case fi.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return StateSymlink, "", fmt.Errorf("readlink %s: %w", path, err)
		}
		return StateSymlink, target, nil
	case fi.Mode().IsRegular():
		return StateRegularFile, "", nil
	default:
		return StateOther, "", nil
	}
}

// Unlink removes the active symlink. A regular file at the active path is
// never deleted; it is reported as skipped so the caller can warn. An
// absent path is a no-op.
func (l *Links) Unlink() (UnlinkResult, error) {
	state, _, err := l.ActiveState()
	if err != nil {
		return UnlinkAbsent, err
	}

	switch state {
	case StateAbsent:
		return UnlinkAbsent, nil
	case StateRegularFile, StateOther:
		return UnlinkSkippedRegularFile, nil
	}

	if err := os.Remove(l.ActiveBinary()); err != nil {
		return UnlinkAbsent, fmt.Errorf("%w: removing %s: %w", ErrLinkFailure, l.ActiveBinary(), err)
	}
	return UnlinkRemoved, nil
}

// Link points the active path at formula's php binary. The target must
// exist; pointing PATH at a void would leave the user without any php. A
// stale symlink at the active path is replaced, but anything else occupying
// it fails the link rather than being deleted.
func (l *Links) Link(formula string) error {
	target := l.OptBinary(formula)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w: no php binary at %s", ErrLinkFailure, target)
	}
	return forceSymlink(target, l.ActiveBinary())
}

// LinkCompanion points the companion path at formula's php-fpm binary.
// Formulae built without FPM yield ErrCompanionMissing.
func (l *Links) LinkCompanion(formula string) error {
	target := l.OptCompanion(formula)
	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("%w for %s at %s", ErrCompanionMissing, formula, target)
	}
	return forceSymlink(target, l.CompanionBinary())
}

// PointsTo reports whether the active symlink resolves into formula's opt
// tree. Symlink chains are resolved before comparing, so opt indirection
// through the Cellar still matches.
func (l *Links) PointsTo(formula string) bool {
	resolvedActive, err := filepath.EvalSymlinks(l.ActiveBinary())
	if err != nil {
		return false
	}
	resolvedTarget, err := filepath.EvalSymlinks(l.OptBinary(formula))
	if err != nil {
		return false
	}
	return resolvedActive == resolvedTarget
}

// forceSymlink replaces any symlink at linkPath with one pointing at target.
// Non-symlink entries are left untouched and surface as a creation failure.
func forceSymlink(target, linkPath string) error {
	if fi, err := os.Lstat(linkPath); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(linkPath); err != nil {
			return fmt.Errorf("%w: removing %s: %w", ErrLinkFailure, linkPath, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(linkPath), 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrLinkFailure, filepath.Dir(linkPath), err)
	}

	if err := os.Symlink(target, linkPath); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrLinkFailure, linkPath, target, err)
	}
	return nil
}
