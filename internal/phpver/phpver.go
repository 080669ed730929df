// Package phpver parses and compares PHP version identifiers.
//
// The switcher operates on MAJOR.MINOR pairs ("8.1") because Homebrew pins
// versioned PHP formulae at that granularity (php@8.1). Full version strings
// reported by the php binary ("8.1.19") carry a patch component that is
// ignored for switching decisions.
package phpver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrInvalidFormat is returned when an input does not look like MAJOR.MINOR.
var ErrInvalidFormat = errors.New("invalid version format")

var versionRE = regexp.MustCompile(`^\d+\.\d+$`)

// familyRE matches the Homebrew PHP formula family: the primary "php"
// formula and pinned "php@X.Y" formulae. Other php-* packages (extensions,
// tools) are not part of the family.
var familyRE = regexp.MustCompile(`^php(@\d+\.\d+)?$`)

// Version is a MAJOR.MINOR PHP version pair as accepted on the command line.
type Version struct {
	Major int
	Minor int
}

// Parse validates input against the MAJOR.MINOR shape and returns the parsed
// version. Inputs with patch components, prefixes, or stray whitespace are
// rejected with ErrInvalidFormat. No range checking is done here; whether
// the version is actually installed is a separate question.
func Parse(input string) (Version, error) {
	if !versionRE.MatchString(input) {
		return Version{}, fmt.Errorf("%w: %q (expected MAJOR.MINOR, e.g. 8.1)", ErrInvalidFormat, input)
	}

	parts := strings.SplitN(input, ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidFormat, input)
	}

	return Version{Major: major, Minor: minor}, nil
}

// MajorMinorOf extracts the MAJOR.MINOR pair from a full version string such
// as "8.1.19" or "8.3.0RC2". Anything semver cannot make sense of is an
// error.
func MajorMinorOf(full string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(full))
	if err != nil {
		return Version{}, fmt.Errorf("cannot parse version %q: %w", full, err)
	}
	return Version{Major: int(sv.Major()), Minor: int(sv.Minor())}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Formula returns the pinned Homebrew formula name for v, e.g. "php@8.1".
func (v Version) Formula() string {
	return "php@" + v.String()
}

// MatchesFull reports whether a full version string ("8.1.19") has the same
// MAJOR.MINOR as v. Patch-level differences are deliberately ignored.
func (v Version) MatchesFull(full string) bool {
	got, err := MajorMinorOf(full)
	if err != nil {
		return false
	}
	return got == v
}

// IsFamilyFormula reports whether name is part of the PHP formula family
// ("php" or "php@X.Y").
func IsFamilyFormula(name string) bool {
	return familyRE.MatchString(name)
}

// FromFormula extracts the pinned version from a formula name. The bare
// "php" formula carries no pin, so ok is false for it and for any name
// outside the family.
func FromFormula(name string) (Version, bool) {
	if !familyRE.MatchString(name) {
		return Version{}, false
	}
	idx := strings.IndexByte(name, '@')
	if idx < 0 {
		return Version{}, false
	}
	v, err := Parse(name[idx+1:])
	if err != nil {
		return Version{}, false
	}
	return v, true
}
