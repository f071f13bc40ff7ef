// app is the store's command-line front end. With arguments it runs one
// command and exits; without arguments it starts the interactive session.
//
// Usage: go run ./cmd/app [command] [arguments]
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agri-inventory/internal/adapters/cli"
	"agri-inventory/internal/adapters/repl"
	"agri-inventory/internal/adapters/textview"
	"agri-inventory/internal/app"
	"agri-inventory/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("config")
		return 1
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := config.InitStore(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("open store")
		return 1
	}
	defer closeStore()

	svc := app.NewAppService(st, cfg.AppOptions(logger))
	if _, err := svc.Load(ctx); err != nil {
		logger.WithError(err).Error("load data")
		return 1
	}
	defer flush(svc, logger)

	view := textview.New(os.Stdout, cfg.Locale, cfg.CurrencySymbol)

	if len(os.Args) > 1 {
		err := cli.Run(ctx, svc, os.Args[1:], cli.Options{Out: os.Stdout, Printer: view, Dir: "."})
		if err != nil {
			if !errors.Is(err, cli.ErrUsage) {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			return 1
		}
		return 0
	}

	go svc.RunAutosave(ctx, cfg.AutosaveInterval)
	repl.Run(ctx, svc, bufio.NewReader(os.Stdin), repl.Options{Out: os.Stdout, Printer: view, Dir: "."})
	return 0
}

// flush retries a failed save once more before the process exits.
func flush(svc app.ApplicationService, logger logrus.FieldLogger) {
	if err := svc.Flush(context.Background()); err != nil {
		logger.WithError(err).Error("unsaved changes could not be written")
	}
}
