// reset-data wipes every warehouse, item and transaction from the configured
// store and seeds the default warehouse again.
//
// Usage: go run ./cmd/reset-data -yes
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"agri-inventory/internal/app"
	"agri-inventory/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	yes := flag.Bool("yes", false, "confirm that all data should be deleted")
	flag.Parse()

	if !*yes {
		fmt.Fprintln(os.Stderr, "reset-data deletes ALL inventory data. Re-run with -yes to proceed.")
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx := context.Background()
	st, closeStore, err := config.InitStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("store: %v", err)
	}
	defer closeStore()

	svc := app.NewAppService(st, cfg.AppOptions(logger))

	logger.WithField("driver", cfg.StoreDriver).Info("clearing stored data")
	if err := svc.ClearAllData(ctx); err != nil {
		logger.Fatalf("clear: %v", err)
	}

	res, err := svc.Load(ctx)
	if err != nil {
		logger.Fatalf("reseed: %v", err)
	}
	if !res.Seeded {
		logger.Fatal("store still held data after clearing")
	}
	logger.WithField("warehouse", cfg.DefaultWarehouseName).Info("default warehouse restored")
}
