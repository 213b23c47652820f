package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/tally/internal/app"
	"github.com/MrJamesThe3rd/tally/internal/config"
	tallyHttp "github.com/MrJamesThe3rd/tally/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/tally/internal/http/budget"
	collectorHandler "github.com/MrJamesThe3rd/tally/internal/http/collector"
	itemsHandler "github.com/MrJamesThe3rd/tally/internal/http/items"
	lookupHandler "github.com/MrJamesThe3rd/tally/internal/http/lookup"
	reportHandler "github.com/MrJamesThe3rd/tally/internal/http/report"
	sessionHandler "github.com/MrJamesThe3rd/tally/internal/http/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := cfg.ValidateServer(); err != nil {
		slog.Error("refusing to start, set AUTH_SECRET to a private value", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	router := tallyHttp.New(a.Auth, tallyHttp.Handlers{
		Session:   sessionHandler.NewHandler(a.Auth),
		Items:     itemsHandler.NewHandler(a.Ledger),
		Budget:    budgetHandler.NewHandler(a.Ledger),
		Lookup:    lookupHandler.NewHandler(a.Resolver),
		Report:    reportHandler.NewHandler(a.Report),
		Collector: collectorHandler.NewHandler(a.Collector),
	}, cfg.Server.CORSOrigins)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", server.Addr, "storage", cfg.Storage.Driver)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
