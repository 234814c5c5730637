package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"SensorStat/internal/di"
	"SensorStat/pkg/config"
)

const defaultConfigPath = "config/config.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	// Parse flags
	configPath := flag.String("config", defaultConfigPath, "config file path")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [file.csv ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// The default config file is optional; an explicit one is not.
	path := *configPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.LoadWithEnv(path)
	if err != nil {
		log.Printf("config load failed: %v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Wire DI: Initialize all dependencies
	app, cleanup, err := di.InitializeApp(ctx, cfg)
	if err != nil {
		log.Printf("app initialization failed: %v", err)
		return 1
	}
	defer cleanup()

	if err := app.Run(ctx, flag.Args()); err != nil {
		log.Printf("run failed: %v", err)
		return 1
	}
	return 0
}
