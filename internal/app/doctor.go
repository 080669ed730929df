package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sash04ek/macos-php-switcher/internal/linker"
	"github.com/sash04ek/macos-php-switcher/internal/phpver"
	"github.com/sash04ek/macos-php-switcher/internal/shell"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common issues and check system health",
	Long: `Runs diagnostic checks on the phpswitch installation.

Checks:
  • Homebrew is on PATH and the prefix is sane
  • The active php link is a healthy symlink into the active formula's keg
  • The companion php-fpm link is healthy
  • At most one php-fpm service is running
  • Shell configs carry at most one managed PATH line
  • The switch history store is accessible`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Println("Running phpswitch diagnostics...")
	fmt.Println()

	// Critical issues make the tool unusable and exit 1; warnings exit 2 so
	// scripts can tell a degraded setup from a broken one.
	criticalIssues := 0
	warningIssues := 0

	env, err := newEnv()
	if err != nil {
		fmt.Println("✗ Cannot load configuration:", err)
		return fmt.Errorf("diagnostics failed")
	}

	// Check 1: brew on PATH
	brewPath, err := env.runner.LookPath("brew")
	if err != nil {
		fmt.Println("✗ Homebrew not found on PATH")
		fmt.Println("  Action: Install it from https://brew.sh")
		criticalIssues++
	} else {
		fmt.Println("✓ Homebrew found:", brewPath)
	}

	// Check 2: prefix exists and looks like a Homebrew tree
	if fi, err := os.Stat(env.prefix); err != nil || !fi.IsDir() {
		fmt.Println("✗ Prefix does not exist:", env.prefix)
		fmt.Println("  Action: Pass --prefix or set HOMEBREW_PREFIX")
		criticalIssues++
	} else if _, err := os.Stat(filepath.Join(env.prefix, "opt")); err != nil {
		fmt.Println("✗ Prefix has no opt directory:", env.prefix)
		fmt.Println("  Action: Check that the prefix points at a Homebrew installation")
		criticalIssues++
	} else {
		fmt.Println("✓ Prefix:", env.prefix)

		// Cross-check against what brew itself reports.
		if criticalIssues == 0 {
			if detected, err := env.client.DetectPrefix(); err == nil && detected != env.prefix {
				fmt.Printf("⚠ brew --prefix reports %s, phpswitch uses %s\n", detected, env.prefix)
				fmt.Println("  Action: Align --prefix/HOMEBREW_PREFIX with the brew installation")
				warningIssues++
			}
		}
	}

	// Check 3: active link health
	links := linker.New(env.prefix)
	state, target, err := links.ActiveState()
	switch {
	case err != nil:
		fmt.Println("⚠ Cannot inspect active link:", err)
		warningIssues++
	case state == linker.StateAbsent:
		fmt.Println("⚠ No php at", links.ActiveBinary())
		fmt.Println("  Action: Run 'phpswitch <version>' to link one")
		warningIssues++
	case state == linker.StateRegularFile, state == linker.StateOther:
		fmt.Printf("⚠ %s is a %s, not a symlink — switches will refuse to replace it\n", links.ActiveBinary(), state)
		fmt.Println("  Action: Move it aside, then switch again")
		warningIssues++
	default:
		if _, err := os.Stat(target); err != nil {
			fmt.Printf("⚠ Active link is dangling: %s -> %s\n", links.ActiveBinary(), target)
			fmt.Println("  Action: Run 'phpswitch <version>' to relink")
			warningIssues++
		} else if version, ok := env.client.ActiveVersion(); ok {
			fmt.Printf("✓ Active link healthy: PHP %s\n", version)
			if v, err := phpver.MajorMinorOf(version); err == nil {
				if f, found, err := env.client.Installed(v); err == nil && found && !links.PointsTo(f.Name) {
					fmt.Printf("⚠ Active link does not resolve into %s's keg\n", f.Name)
					fmt.Println("  Action: Run 'phpswitch <version>' to relink")
					warningIssues++
				}
			}
		} else {
			fmt.Println("⚠ Active link resolves but php does not report a version")
			warningIssues++
		}
	}

	// Check 4: companion php-fpm link health
	cstate, ctarget, err := links.CompanionState()
	switch {
	case err != nil:
		fmt.Println("⚠ Cannot inspect php-fpm link:", err)
		warningIssues++
	case cstate == linker.StateAbsent:
		fmt.Println("⚠ No php-fpm at", links.CompanionBinary())
		fmt.Println("  Action: Switching relinks it when the formula ships FPM")
		warningIssues++
	case cstate != linker.StateSymlink:
		fmt.Printf("⚠ %s is a %s, not a symlink\n", links.CompanionBinary(), cstate)
		warningIssues++
	default:
		if _, err := os.Stat(ctarget); err != nil {
			fmt.Printf("⚠ php-fpm link is dangling: %s -> %s\n", links.CompanionBinary(), ctarget)
			fmt.Println("  Action: Run 'phpswitch <version>' to relink")
			warningIssues++
		} else {
			fmt.Println("✓ php-fpm link healthy")
		}
	}

	// Check 5: at most one php-fpm service running
	if criticalIssues == 0 {
		running, err := env.client.RunningPHPServices()
		switch {
		case err != nil:
			fmt.Println("⚠ Cannot read brew services:", err)
			warningIssues++
		case len(running) > 1:
			fmt.Printf("⚠ %d php-fpm services running at once:", len(running))
			for _, svc := range running {
				fmt.Printf(" %s", svc.Name)
			}
			fmt.Println()
			fmt.Println("  Action: Run 'phpswitch stop', then switch again")
			warningIssues++
		case len(running) == 1:
			fmt.Println("✓ One php-fpm service running:", running[0].Name)
		default:
			fmt.Println("✓ No php-fpm service running")
		}
	}

	// Check 6: shell configs carry at most one managed line each
	if home, err := os.UserHomeDir(); err == nil {
		editor := shell.New(home)
		clean := true
		for _, candidate := range editor.Candidates() {
			count, err := shell.ManagedLineCount(candidate)
			if err != nil {
				continue
			}
			if count > 1 {
				fmt.Printf("⚠ %s carries %d managed PATH lines, want at most one\n", candidate, count)
				fmt.Println("  Action: The next switch rewrites them into one")
				warningIssues++
				clean = false
			}
		}
		if clean {
			fmt.Println("✓ Shell configs carry at most one managed PATH line")
		}
	}

	// Check 7: history store accessible
	if !env.cfg.HistoryEnabled() {
		fmt.Println("✓ Switch history disabled by config")
	} else if st, err := openHistory(env.cfg); err != nil {
		fmt.Println("⚠ Cannot open switch history:", err)
		warningIssues++
	} else {
		count, err := st.EventCount()
		st.Close()
		if err != nil {
			fmt.Println("⚠ Cannot read switch history:", err)
			warningIssues++
		} else {
			fmt.Printf("✓ Switch history accessible (%d events)\n", count)
		}
	}

	fmt.Println()
	if criticalIssues == 0 && warningIssues == 0 {
		fmt.Println("✓ All checks passed!")
		return nil
	}

	if criticalIssues > 0 {
		fmt.Printf("Found %d critical issue(s) and %d warning(s).\n", criticalIssues, warningIssues)
		return fmt.Errorf("diagnostics failed")
	}

	// Warnings only: exit 2 directly so main.go's error handler does not
	// repeat the message.
	fmt.Printf("Found %d warning(s). phpswitch is functional but not fully healthy.\n", warningIssues)
	os.Exit(2)
	return nil // unreachable; satisfies the compiler
}
