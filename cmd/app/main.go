package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"SignalPulse/internal/di"
	"SignalPulse/pkg/config"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log.Printf("env=%s sink=%s symbols=%v", cfg.Environment, cfg.Sink.Type, cfg.Stream.Symbols)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}

	// Blocks until SIGINT/SIGTERM.
	return app.Run()
}
