package brew

// Formula is an installed member of the PHP formula family.
type Formula struct {
	Name    string // "php" or "php@8.1"
	Version string // full installed version, e.g. "8.1.19"
}

// Service is one php row from `brew services list --json`.
type Service struct {
	Name   string // formula name
	Status string // "started", "stopped", "none", "error", ...
}

// Running reports whether launchd considers the service started.
func (s Service) Running() bool {
	return s.Status == "started"
}
