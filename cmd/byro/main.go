package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/byro/cli/config"
	"github.com/byro/cli/internal/logging"
	"github.com/byro/cli/internal/tui"
)

func main() {
	var (
		apiFlag     = flag.String("api", "", "Backend base URL (overrides config)")
		writeConfig = flag.Bool("write-config", false, "Write the effective config to ~/.byro/config.yaml and exit")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *apiFlag != "" {
		cfg.API.BaseURL = *apiFlag
	}

	if *writeConfig {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config written")
		return
	}

	// The terminal belongs to the UI, so logs go to a file
	logger, closeLog, err := logging.NewFileLogger(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Create and run TUI
	app := tui.NewApp(cfg, logger)
	if err := app.Run(); err != nil {
		logger.Error("app exited with error", "err", err)
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}
