package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sash04ek/macos-php-switcher/internal/brew"
	"github.com/sash04ek/macos-php-switcher/internal/phpver"
	"github.com/sash04ek/macos-php-switcher/internal/store"
)

// RenderVersionTable renders the installed PHP versions with active and
// service markers. activeVersion is the full version string reported by the
// php binary on PATH, or empty when no active binary was found.
func RenderVersionTable(formulae []brew.Formula, services []brew.Service, activeVersion string) string {
	if len(formulae) == 0 {
		return "No PHP versions installed via Homebrew.\n"
	}

	// Sort by parsed version ascending so 7.4 lists before 8.1 and 10.0
	// after 9.x. Unparseable versions sink to the bottom by name.
	sorted := make([]brew.Formula, len(formulae))
	copy(sorted, formulae)
	sort.SliceStable(sorted, func(i, j int) bool {
		vi, oki := formulaVersion(sorted[i])
		vj, okj := formulaVersion(sorted[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return sorted[i].Name < sorted[j].Name
		}
		if vi.Major != vj.Major {
			return vi.Major < vj.Major
		}
		return vi.Minor < vj.Minor
	})

	statusByName := make(map[string]string, len(services))
	for _, svc := range services {
		statusByName[svc.Name] = svc.Status
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %-12s %-12s %s\n", "Version", "Formula", "Service"))
	sb.WriteString(strings.Repeat("─", 40))
	sb.WriteString("\n")

	for _, f := range sorted {
		marker := " "
		if isActive(f, activeVersion) {
			marker = "*"
		}

		service := statusByName[f.Name]
		if service == "" || service == "none" {
			service = "-"
		}

		sb.WriteString(fmt.Sprintf("%s %-12s %-12s %s\n",
			marker,
			truncate(f.Version, 12),
			truncate(f.Name, 12),
			service))
	}

	sb.WriteString("\n* = active (php on PATH)\n")

	return sb.String()
}

// formulaVersion returns the MAJOR.MINOR pair for a formula, preferring the
// pin in the name and falling back to the installed version string.
func formulaVersion(f brew.Formula) (phpver.Version, bool) {
	if v, ok := phpver.FromFormula(f.Name); ok {
		return v, true
	}
	v, err := phpver.MajorMinorOf(f.Version)
	if err != nil {
		return phpver.Version{}, false
	}
	return v, true
}

// isActive reports whether a formula's version shares MAJOR.MINOR with the
// active version string.
func isActive(f brew.Formula, activeVersion string) bool {
	if activeVersion == "" {
		return false
	}
	v, ok := formulaVersion(f)
	if !ok {
		return false
	}
	return v.MatchesFull(activeVersion)
}

// RenderHistoryTable renders switch history, newest first.
func RenderHistoryTable(events []*store.SwitchEvent) string {
	if len(events) == 0 {
		return "No switches recorded yet.\n"
	}

	sorted := make([]*store.SwitchEvent, len(events))
	copy(sorted, events)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-16s %-8s %-8s %-10s %s\n",
		"When", "From", "To", "Outcome", "Detail"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, ev := range sorted {
		from := ev.FromVersion
		if from == "" {
			from = "-"
		}

		sb.WriteString(fmt.Sprintf("%-16s %-8s %-8s %-10s %s\n",
			formatRelativeTime(ev.CreatedAt),
			truncate(from, 8),
			truncate(ev.ToVersion, 8),
			ev.Outcome,
			truncate(ev.Detail, 30)))
	}

	return sb.String()
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	case diff < 30*24*time.Hour:
		weeks := int(diff.Hours() / 24 / 7)
		if weeks == 1 {
			return "1 week ago"
		}
		return fmt.Sprintf("%d weeks ago", weeks)
	default:
		months := int(diff.Hours() / 24 / 30)
		if months == 1 {
			return "1 month ago"
		}
		return fmt.Sprintf("%d months ago", months)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
