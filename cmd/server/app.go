package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parlo-app/srs-engine/internal/config"
	"github.com/parlo-app/srs-engine/internal/deck"
	"github.com/parlo-app/srs-engine/internal/generation"
	"github.com/parlo-app/srs-engine/internal/platform/gemini"
	"github.com/parlo-app/srs-engine/internal/platform/memory"
	"github.com/parlo-app/srs-engine/internal/platform/postgres"
	"github.com/parlo-app/srs-engine/internal/platform/sqlite"
	"github.com/parlo-app/srs-engine/internal/queue"
	"github.com/parlo-app/srs-engine/internal/service/review"
	"github.com/parlo-app/srs-engine/internal/srs"
	"github.com/parlo-app/srs-engine/internal/store"
)

// application bundles the wired engine components. Every collaborator
// receives its dependencies explicitly; there is no ambient shared state.
type application struct {
	config *config.Config
	logger *slog.Logger

	cards         store.CardStore
	dueQueue      *queue.DueQueue
	deckIndex     *deck.Index
	scheduler     srs.Scheduler
	reviewService *review.Service
	generator     *generation.AdaptiveGenerator // nil when generation is not configured

	closers []func() error
}

// newApplication wires the engine from configuration: store backend,
// scheduler, due queue, deck index, review service and (optionally) the
// adaptive generator.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	if err := app.setupStore(cfg); err != nil {
		return nil, err
	}

	app.scheduler = srs.NewSchedulerWithParams(srs.NewParams(srs.ParamsConfig{
		MinEaseFactor:  cfg.SRS.MinEaseFactor,
		FirstInterval:  cfg.SRS.FirstIntervalDays,
		SecondInterval: cfg.SRS.SecondIntervalDays,
		LapseInterval:  cfg.SRS.LapseIntervalDays,
	}))

	app.dueQueue = queue.NewDueQueue(app.cards, logger)
	app.deckIndex = deck.NewIndex(app.cards, app.dueQueue, logger)
	app.reviewService = review.NewService(app.cards, app.dueQueue, app.scheduler, logger)

	if err := app.setupGenerator(ctx, cfg); err != nil {
		return nil, err
	}

	return app, nil
}

// setupStore creates the card store backend selected by configuration.
func (app *application) setupStore(cfg *config.Config) error {
	switch cfg.Store.Driver {
	case "memory":
		app.cards = memory.NewCardStore(app.logger)

	case "sqlite":
		db, err := sqlite.Open(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		app.cards = sqlite.NewCardStore(db, app.logger)

	case "postgres":
		db, err := postgres.Open(cfg.Store.DSN)
		if err != nil {
			return fmt.Errorf("failed to open postgres store: %w", err)
		}
		app.closers = append(app.closers, db.Close)

		if err := postgres.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		app.cards = postgres.NewPostgresCardStore(db, app.logger)

	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	app.logger.Info("card store initialized",
		slog.String("driver", cfg.Store.Driver))
	return nil
}

// setupGenerator wires the Gemini-backed adaptive generator when an API key
// is configured. Without one, generation endpoints report unavailable but
// the rest of the engine runs normally.
func (app *application) setupGenerator(ctx context.Context, cfg *config.Config) error {
	if cfg.Gemini.APIKey == "" {
		app.logger.Info("card generation disabled: no gemini API key configured")
		return nil
	}

	contentGen, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     cfg.Gemini.APIKey,
		ModelName:  cfg.Gemini.ModelName,
		MaxRetries: cfg.Gemini.MaxRetries,
		RetryDelay: time.Duration(cfg.Gemini.RetryDelaySec) * time.Second,
	}, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create gemini generator: %w", err)
	}

	app.generator = generation.NewAdaptiveGenerator(
		app.cards,
		contentGen,
		cfg.Gemini.CardsPerTopic,
		app.logger,
	)

	app.logger.Info("card generation enabled",
		slog.String("model", cfg.Gemini.ModelName))
	return nil
}

// close releases backend resources in reverse acquisition order.
func (app *application) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("failed to close resource",
				slog.String("error", err.Error()))
		}
	}
}
