package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/roombot/internal/application"
	"github.com/example/roombot/internal/calendar"
	"github.com/example/roombot/internal/config"
	httptransport "github.com/example/roombot/internal/http"
	"github.com/example/roombot/internal/jobs"
	"github.com/example/roombot/internal/metrics"
	"github.com/example/roombot/internal/persistence/sqlite"
)

const seedPrincipalID = "room-seed"

// registry is satisfied by *prometheus.Registry.
type registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// app holds the wired service and the resources that need an orderly shutdown.
type app struct {
	handler    http.Handler
	storage    *sqlite.Storage
	dispatcher *calendar.Dispatcher
	scheduler  *jobs.Scheduler
	logger     *slog.Logger
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, reg registry) (_ *app, err error) {
	storage, err := sqlite.Open(cfg.SQLiteDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	a := &app{storage: storage, logger: logger}
	defer func() {
		if err != nil {
			_ = a.close(context.Background())
		}
	}()

	if err = storage.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	m := metrics.New(reg)
	rooms := application.NewRoomServiceWithLogger(storage, application.NewRoomID, time.Now, logger)

	if cfg.RoomsFile != "" {
		if err = seedRooms(ctx, rooms, cfg.RoomsFile, logger); err != nil {
			return nil, err
		}
	}

	var sync application.CalendarSync = application.NopCalendar{}
	if cfg.CalendarCredentialsFile != "" {
		a.dispatcher, err = newDispatcher(cfg, storage, m, logger)
		if err != nil {
			return nil, err
		}
		sync = a.dispatcher
	} else {
		logger.Info("calendar sync disabled")
	}

	commands, err := application.NewCommandService(application.CommandServiceDeps{
		Rooms:    storage,
		Bookings: storage,
		Audit:    storage,
		Policy:   cfg.Policy,
		Calendar: sync,
		Observer: m,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build command service: %w", err)
	}

	job := jobs.NewCompletionJob(storage, cfg.Policy.Location, nil, m, logger)
	a.scheduler = jobs.NewScheduler(cfg.Policy.Location, logger)
	err = a.scheduler.Schedule(cfg.CompletionSchedule, "complete_ended_bookings", func(ctx context.Context) error {
		_, err := job.Run(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.handler = httptransport.NewRouter(httptransport.RouterConfig{
		Webhook: httptransport.NewWebhookHandler(httptransport.WebhookConfig{
			Commands:     commands,
			Token:        cfg.WebhookToken,
			TriggerWords: cfg.TriggerWords,
			Limiter:      httptransport.NewRateLimiter(cfg.RateLimitPerMinute, m),
			Logger:       logger,
		}),
		Rooms:          httptransport.NewRoomHandler(rooms, logger),
		Audit:          httptransport.NewAuditHandler(storage, logger),
		AdminKeyHash:   cfg.AdminKeyHash,
		AdminLimiter:   httptransport.NewRateLimiter(cfg.RateLimitPerMinute, m),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
	if cfg.AdminKeyHash == "" {
		logger.Info("admin API disabled")
	}
	return a, nil
}

func seedRooms(ctx context.Context, rooms *application.RoomService, path string, logger *slog.Logger) error {
	seeds, err := config.LoadRoomSeeds(path)
	if err != nil {
		return err
	}
	inputs := make([]application.RoomInput, 0, len(seeds))
	for _, seed := range seeds {
		inputs = append(inputs, application.RoomInput{
			Code:          seed.Code,
			Name:          seed.Name,
			Capacity:      seed.Capacity,
			Location:      seed.Location,
			AutoAccept:    seed.AutoAccept,
			CalendarID:    seed.CalendarID,
			ResourceEmail: seed.ResourceEmail,
		})
	}
	created, updated, err := rooms.SeedRooms(ctx, application.Principal{UserID: seedPrincipalID, IsAdmin: true}, inputs)
	if err != nil {
		return fmt.Errorf("seed rooms from %s: %w", path, err)
	}
	logger.Info("rooms seeded", "file", path, "created", created, "updated", updated)
	return nil
}

func newDispatcher(cfg config.Config, storage *sqlite.Storage, m *metrics.Metrics, logger *slog.Logger) (*calendar.Dispatcher, error) {
	key, err := calendar.LoadServiceAccountKey(cfg.CalendarCredentialsFile)
	if err != nil {
		return nil, err
	}
	client, err := calendar.NewGoogleClient(key)
	if err != nil {
		return nil, err
	}
	dispatcher, err := calendar.NewDispatcher(calendar.DispatcherConfig{
		Client:   client,
		Store:    storage,
		Location: cfg.Policy.Location,
		Recorder: m,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("calendar sync enabled", "service_account", key.ClientEmail)
	return dispatcher, nil
}

func (a *app) start() {
	if a.scheduler != nil {
		a.scheduler.Start()
	}
}

// close stops background work, drains calendar notifications and closes storage.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.scheduler != nil {
		if err := a.scheduler.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
		}
	}
	if a.dispatcher != nil {
		if err := a.dispatcher.Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
