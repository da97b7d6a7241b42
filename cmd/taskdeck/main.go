package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"

	"github.com/kettle/taskdeck/internal/api"
	"github.com/kettle/taskdeck/internal/bus"
	"github.com/kettle/taskdeck/internal/config"
	"github.com/kettle/taskdeck/internal/notify"
	otelPkg "github.com/kettle/taskdeck/internal/otel"
	"github.com/kettle/taskdeck/internal/poll"
	"github.com/kettle/taskdeck/internal/prefs"
	"github.com/kettle/taskdeck/internal/record"
	"github.com/kettle/taskdeck/internal/shared"
	"github.com/kettle/taskdeck/internal/telemetry"
	"github.com/kettle/taskdeck/internal/tui"
)

// Version is set via ldflags at build time: -ldflags "-X main.Version=..."
var Version = "v0.3-dev"

func main() {
	headless := flag.Bool("headless", false, "run without the TUI, logging row changes to stdout")
	serverURL := flag.String("server", "", "scheduler server base URL (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("taskdeck", Version)
		return
	}

	interactive := isatty.IsTerminal(os.Stdout.Fd()) && os.Getenv("TASKDECK_NO_TUI") == "" && !*headless

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, interactive, *serverURL); err != nil {
		fmt.Fprintln(os.Stderr, "taskdeck:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, interactive bool, serverURL string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	// Quiet logs (file-only) under the TUI so the screen stays clean.
	logger, logCloser, err := telemetry.NewLogger(cfg.HomeDir, cfg.LogLevel, interactive)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	logger.Info("taskdeck starting", "version", Version, "server_url", cfg.ServerURL)

	otelProvider, err := otelPkg.Init(ctx, cfg.OTel)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() { _ = otelProvider.Shutdown(context.Background()) }()
	metrics, err := otelPkg.NewMetrics(otelProvider.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	eventBus := bus.New()

	prefsStore, err := prefs.Open(prefs.DefaultDBPath(cfg.HomeDir))
	if err != nil {
		return fmt.Errorf("open preferences store: %w", err)
	}
	defer prefsStore.Close()

	client := api.New(cfg.ServerURL, logger, api.WithTracer(otelProvider.Tracer))

	sinks := notify.Multi{&notify.BusSink{Bus: eventBus}}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			logger.Warn("telegram sink unavailable", "error", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	controller := poll.NewController(poll.Config{
		Logger:  logger,
		Bus:     eventBus,
		Sink:    sinks,
		Metrics: metrics,
	})
	defer controller.StopAll()

	watcher := config.NewWatcher(cfg.HomeDir, logger)
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher unavailable", "error", err)
	} else {
		go func() {
			for range watcher.Events() {
				eventBus.Publish(bus.TopicConfigReloaded, nil)
			}
		}()
	}

	registry := tui.NewRegistry()
	for _, action := range []struct {
		name, title string
		destructive bool
	}{
		{"start", "Start task", false},
		{"stop", "Stop task", false},
		{"toggle", "Enable or disable task", false},
	} {
		action := action
		err := registry.Register(tui.Command{
			Name:        action.name,
			Title:       action.title,
			Destructive: action.destructive,
			Run: func(ctx context.Context, rec record.Record) (api.MutationResult, error) {
				return client.Mutate(ctx, http.MethodPost, "/api/tasks/"+rec.ID()+"/"+action.name, nil)
			},
		})
		if err != nil {
			return err
		}
	}

	if !interactive {
		return runHeadless(ctx, cfg, logger, client, controller)
	}

	app := tui.NewApp(ctx, tui.AppConfig{
		Config:     cfg,
		Logger:     logger,
		Bus:        eventBus,
		Client:     client,
		Prefs:      prefsStore,
		Controller: controller,
		Sink:       sinks,
		Registry:   registry,
		Metrics:    metrics,
	})
	return app.Run()
}

// runHeadless polls the task collection and logs changes until the
// context is canceled. Useful for smoke-testing a server without a
// terminal.
func runHeadless(ctx context.Context, cfg *config.Config, logger *slog.Logger, client *api.Client, controller *poll.Controller) error {
	controller.Start(ctx, "tasks",
		func(ctx context.Context) (record.Collection, error) {
			return client.FetchCollection(shared.WithTraceID(ctx, shared.NewTraceID()), "/api/tasks")
		},
		func(rows record.Collection) {
			logger.Info("task snapshot", "rows", len(rows))
		},
		poll.Options{Interval: cfg.CollectionInterval()},
	)
	<-ctx.Done()
	controller.StopAll()
	controller.Wait()
	return nil
}
