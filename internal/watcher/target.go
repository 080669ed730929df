package watcher

import (
	"path/filepath"
	"strings"

	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

// isManagedPath reports whether an event path is one of the links phpswitch
// manages. Everything else under bin and sbin belongs to other formulae.
func isManagedPath(path string) bool {
	base := filepath.Base(path)
	return base == "php" || base == "php-fpm"
}

// formulaFromTarget extracts the PHP formula name from a link target such
// as /opt/homebrew/opt/php@8.3/bin/php. The first path segment inside the
// formula family wins, so the trailing binary name never masks a pin.
func formulaFromTarget(target string) (string, bool) {
	for _, seg := range strings.Split(target, string(filepath.Separator)) {
		if phpver.IsFamilyFormula(seg) {
			return seg, true
		}
	}
	return "", false
}

// versionFromTarget derives the MAJOR.MINOR version a link target points
// at. Pinned formulae carry it in the name; the primary formula's Cellar
// path carries it in the keg directory. Targets with neither yield "".
func versionFromTarget(target string) string {
	segs := strings.Split(target, string(filepath.Separator))
	for i, seg := range segs {
		if !phpver.IsFamilyFormula(seg) {
			continue
		}
		if v, ok := phpver.FromFormula(seg); ok {
			return v.String()
		}
		if i+1 < len(segs) {
			if v, err := phpver.MajorMinorOf(segs[i+1]); err == nil {
				return v.String()
			}
		}
	}
	return ""
}
