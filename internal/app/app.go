// Package app wires the services shared by the API, the TUI and the CLI.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/tally/internal/auth"
	"github.com/MrJamesThe3rd/tally/internal/catalog"
	"github.com/MrJamesThe3rd/tally/internal/collector"
	collectorStore "github.com/MrJamesThe3rd/tally/internal/collector/store"
	"github.com/MrJamesThe3rd/tally/internal/config"
	"github.com/MrJamesThe3rd/tally/internal/ledger"
	ledgerStore "github.com/MrJamesThe3rd/tally/internal/ledger/store"
	"github.com/MrJamesThe3rd/tally/internal/plan"
	planStore "github.com/MrJamesThe3rd/tally/internal/plan/store"
	"github.com/MrJamesThe3rd/tally/internal/report"
	"github.com/MrJamesThe3rd/tally/internal/scan"
	"github.com/MrJamesThe3rd/tally/internal/state"
)

type App struct {
	Config *config.Config
	State  state.Store

	Ledger    *ledger.Service
	Plan      *plan.Service
	Resolver  *catalog.Resolver
	Primary   *catalog.EANData
	Secondary *catalog.Collection
	Collector *collector.Service
	Report    *report.Service
	Auth      *auth.Service

	Cameras scan.DeviceLister
	Scanner *scan.Session
}

// New opens the configured state store and loads the ledger, the plan and the collector from it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	kv, err := state.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening state: %w", err)
	}

	a, err := NewWithStore(ctx, cfg, kv)
	if err != nil {
		kv.Close()
		return nil, err
	}

	return a, nil
}

func NewWithStore(ctx context.Context, cfg *config.Config, kv state.Store) (*App, error) {
	var (
		primary   = catalog.NewEANData(cfg.Catalog.PrimaryURL, cfg.Catalog.PrimaryKey, cfg.Catalog.Timeout)
		secondary = catalog.NewCollection(cfg.Catalog.SecondaryURL, cfg.Catalog.Timeout)
	)

	sources := []catalog.Source{primary}
	if strings.TrimSpace(cfg.Catalog.SecondaryURL) != "" {
		sources = append(sources, secondary)
	}

	ledgerSvc := ledger.NewService(
		ledgerStore.New(kv, cfg.Storage.List),
		ledger.Policy{RequireCeiling: cfg.Ledger.RequireCeiling},
	)
	if err := ledgerSvc.Load(ctx); err != nil {
		return nil, err
	}

	planSvc := plan.NewService(planStore.New(kv, cfg.Storage.List))
	if err := planSvc.Load(ctx); err != nil {
		return nil, err
	}

	collectorSvc := collector.NewService(collectorStore.New(kv), primary, secondary)
	if err := collectorSvc.Load(ctx); err != nil {
		return nil, err
	}

	authSvc, err := auth.NewService(auth.DefaultCredentials, cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	scanner := scan.NewSession(
		&scan.FFmpegCamera{Path: cfg.Scanner.FFmpegPath},
		scan.NewZXingDecoder(),
		scan.WithConstraints(scan.Constraints{
			Width:           cfg.Scanner.Width,
			Height:          cfg.Scanner.Height,
			ContinuousFocus: true,
		}),
	)

	return &App{
		Config:    cfg,
		State:     kv,
		Ledger:    ledgerSvc,
		Plan:      planSvc,
		Resolver:  catalog.NewResolver(sources...),
		Primary:   primary,
		Secondary: secondary,
		Collector: collectorSvc,
		Report:    report.NewService(ledgerSvc),
		Auth:      authSvc,
		Cameras:   scan.SysfsLister{},
		Scanner:   scanner,
	}, nil
}

// PickCamera honours the configured device, falling back to SelectCamera.
func (a *App) PickCamera(ctx context.Context) (scan.Device, error) {
	devices, err := a.Cameras.ListCameras(ctx)
	if err != nil {
		return scan.Device{}, err
	}

	if name := a.Config.Scanner.Device; name != "" {
		if d, err := scan.FindCamera(devices, name); err == nil {
			return d, nil
		}

		// A device path that sysfs did not list can still be opened directly.
		return scan.Device{ID: name, Label: name, Path: name}, nil
	}

	return scan.SelectCamera(devices)
}

// Close stops any running scan and closes the state store.
func (a *App) Close() error {
	a.Scanner.Stop()
	return a.State.Close()
}
