package main

import (
	"fmt"
	"os"

	"github.com/sash04ek/macos-php-switcher/internal/app"
)

func main() {
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
