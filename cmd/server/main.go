package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/nihalshetty-boop/listri/config"
	"github.com/nihalshetty-boop/listri/internal/app"
)

func main() {
	configPath := flag.String("config", "config.json", "service configuration file")
	flag.Parse()

	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		*configPath = envPath
	}

	cfg, err := config.ReadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	// Blocks until a shutdown signal arrives.
	if err := application.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
