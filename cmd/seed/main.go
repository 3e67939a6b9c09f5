package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/catalog-backend/internal/app"
	"github.com/yungbote/catalog-backend/internal/platform/shutdown"
)

// Wipes the catalog and loads the embedded fixtures without starting HTTP.
func main() {
	_ = godotenv.Load(".env")
	_ = os.Setenv("SEED_ENABLED", "true")

	a, err := app.New()
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	msg, err := a.Seed(ctx)
	if err != nil {
		a.Log.Error("seed failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info(msg)
}
