package store

import "time"

// Switch outcomes recorded in history.
const (
	OutcomeSwitched  = "switched"  // full switch completed and verified
	OutcomeRestarted = "restarted" // already active, service restarted
	OutcomeNoop      = "noop"      // already active and running, nothing done
	OutcomeExternal  = "external"  // relink observed outside phpswitch
)

// SwitchEvent records one terminal switch outcome.
type SwitchEvent struct {
	ID          int64
	FromVersion string // active version before the switch; empty when none
	ToVersion   string
	Formula     string
	Outcome     string
	Detail      string
	CreatedAt   time.Time
}
