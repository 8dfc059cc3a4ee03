// Command server runs the RecruitDesk HTTP API.
//
// @title RecruitDesk API
// @version 1.0
// @description Candidate tracking for recruiters.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/dharsanguruparan/RecruitDesk/docs"
	"github.com/dharsanguruparan/RecruitDesk/internal/api"
	"github.com/dharsanguruparan/RecruitDesk/internal/app"
	"github.com/dharsanguruparan/RecruitDesk/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	app.SetupLogging(cfg)

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("init", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if err := api.New(cfg, a.APIDeps()).Run(ctx); err != nil {
		slog.Error("server stopped", "error", err)
		a.Close()
		os.Exit(1)
	}
}
