package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sash04ek/macos-php-switcher/internal/phpver"
)

func TestDoSwitchInvalidInputTouchesNothing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	inputs := []string{"abc", "8", "8.1.2", "v8.1", "php@8.1", ""}
	for _, input := range inputs {
		err := doSwitch(input)
		if !errors.Is(err, phpver.ErrInvalidFormat) {
			t.Errorf("doSwitch(%q) error = %v, want ErrInvalidFormat", input, err)
		}
	}

	// Validation must reject the input before the history directory, the
	// database, or anything else under HOME is created.
	if _, err := os.Stat(filepath.Join(home, ".phpswitch")); !os.IsNotExist(err) {
		t.Errorf("invalid input must not create ~/.phpswitch, stat err = %v", err)
	}
	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatalf("ReadDir(%s): %v", home, err)
	}
	if len(entries) != 0 {
		t.Errorf("invalid input must leave HOME untouched, found %v", entries)
	}
}
