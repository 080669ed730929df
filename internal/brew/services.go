package brew

import (
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

// brewServiceRow mirrors one entry of `brew services list --json` output.
type brewServiceRow struct {
	Name     string `json:"name"`
	Status   string `json:"status"`
	User     string `json:"user,omitempty"`
	File     string `json:"file,omitempty"`
	ExitCode *int   `json:"exit_code,omitempty"`
}

// PHPServices returns the PHP family services known to brew services,
// whatever their state.
func (c *Client) PHPServices() ([]Service, error) {
	out, err := c.runner.Output("brew", "services", "list", "--json")
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("brew services list failed: %w (stderr: %s)", err, string(exitErr.Stderr))
		}
		return nil, fmt.Errorf("brew services list failed: %w", err)
	}

	return parseServices(out)
}

// RunningPHPServices returns only the PHP family services launchd reports
// as started.
func (c *Client) RunningPHPServices() ([]Service, error) {
	services, err := c.PHPServices()
	if err != nil {
		return nil, err
	}

	var running []Service
	for _, svc := range services {
		if svc.Running() {
			running = append(running, svc)
		}
	}
	return running, nil
}

// IsServiceRunning reports whether the service for version v is started.
func (c *Client) IsServiceRunning(v phpver.Version) (bool, error) {
	services, err := c.PHPServices()
	if err != nil {
		return false, err
	}

	for _, svc := range services {
		if !svc.Running() {
			continue
		}
		if pin, ok := phpver.FromFormula(svc.Name); ok && pin == v {
			return true, nil
		}
		if svc.Name == "php" {
			// The primary formula's service; match against whatever
			// version the primary formula carries.
			if f, found, err := c.Installed(v); err == nil && found && f.Name == "php" {
				return true, nil
			}
		}
	}
	return false, nil
}

// StartService starts a formula's service via brew services.
func (c *Client) StartService(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "services", "start", formula)
	if err != nil {
		return fmt.Errorf("brew services start %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// StopService stops a formula's service via brew services.
func (c *Client) StopService(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "services", "stop", formula)
	if err != nil {
		return fmt.Errorf("brew services stop %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// RestartService restarts a formula's service via brew services.
func (c *Client) RestartService(formula string) error {
	output, err := c.runner.CombinedOutput("brew", "services", "restart", formula)
	if err != nil {
		return fmt.Errorf("brew services restart %s failed: %w (output: %s)", formula, err, string(output))
	}
	return nil
}

// parseServices filters `brew services list --json` output down to the PHP
// family.
func parseServices(data []byte) ([]Service, error) {
	var rows []brewServiceRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse brew services output: %w", err)
	}

	var services []Service
	for _, row := range rows {
		if !phpver.IsFamilyFormula(row.Name) {
			continue
		}
		services = append(services, Service{Name: row.Name, Status: row.Status})
	}
	return services, nil
}
