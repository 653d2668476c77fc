package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/goliatone/go-school/config"
	"github.com/goliatone/go-school/logging"
	"github.com/goliatone/go-school/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "school-api:", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env", "", "dotenv file to load before reading the environment")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}

	cfg, err := config.Load(files...)
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg.Log, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()

	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, server.WithLogger(logger))
	if err != nil {
		logger.Error("failed to start server", "error", err)
		return err
	}
	defer srv.Close()

	return srv.Listen(ctx)
}
