package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"jazzy/internal/assistant"
	"jazzy/internal/assistant/tools"
	"jazzy/internal/config"
	"jazzy/internal/email"
	"jazzy/internal/ics"
	"jazzy/internal/logger"
	"jazzy/internal/model"
	"jazzy/internal/reminders"
	"jazzy/internal/sheets"
	"jazzy/internal/tasks"
	"jazzy/internal/tts"
	"jazzy/internal/web"
	"jazzy/internal/webhook"
)

type flagConfig struct {
	configPath string
	listen     string
}

func main() {
	logger.Init(logger.Options{
		Level:  envOr("LOG_LEVEL", "info"),
		Format: envOr("LOG_FORMAT", "console"),
	})
	log := logger.Get()

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		log.Error().Err(err).Str("config_path", flags.configPath).Msg("failed to load config")
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	loc, err := time.LoadLocation(conf.Timezone)
	if err != nil {
		log.Warn().Err(err).Str("timezone", conf.Timezone).Msg("failed to load timezone; using local")
		loc = time.Local
	}

	log.Info().
		Str("listen", conf.Listen).
		Str("timezone", conf.Timezone).
		Str("refresh", conf.RefreshCron).
		Int("feed_count", len(conf.Feeds)).
		Msg("jazzy starting")

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("signal received, shutting down")
		cancel()
	}()

	svc, engine := buildServices(ctx, conf, loc, log)

	// Optional cron-driven cache prewarm so UI polls tend to hit fresh feed
	// snapshots. Request-path cache semantics are unchanged.
	var sched *cron.Cron
	if conf.RefreshCron != "" && engine != nil {
		sched = cron.New()
		if _, err := sched.AddFunc(conf.RefreshCron, func() { engine.Refresh(ctx) }); err != nil {
			log.Warn().Err(err).Str("refresh", conf.RefreshCron).Msg("invalid refresh schedule; prewarm disabled")
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	server := &http.Server{
		Addr:         conf.Listen,
		Handler:      web.NewServer(conf, svc).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("listen", "http://"+conf.Listen).Msg("starting HTTP server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("HTTP server failed")
		os.Exit(1)
	}

	log.Info().Msg("jazzy exiting")
}

// buildServices wires the service graph from config and environment.
// Missing credentials disable the matching feature instead of failing
// startup; the HTTP layer answers 503 for unwired routes.
func buildServices(ctx context.Context, conf *config.Config, loc *time.Location, log *zerolog.Logger) (web.Services, *ics.Service) {
	var svc web.Services
	var engine *ics.Service

	// Calendar engine over the configured feeds.
	if len(conf.Feeds) > 0 {
		sources := make([]ics.Source, 0, len(conf.Feeds))
		for _, f := range conf.Feeds {
			sources = append(sources, ics.Source{
				Name: f.Name,
				URL:  f.URL,
				Tag:  model.CalendarTag(f.Tag),
			})
		}
		engine = ics.NewService(loc, sources, ics.ServiceOptions{})
		svc.Calendar = engine
	} else {
		log.Warn().Msg("no calendar feeds configured")
	}

	// Spreadsheet-backed services need the service account key.
	var sheetClient *sheets.Client
	if key := os.Getenv("GOOGLE_SERVICE_ACCOUNT_KEY"); key != "" && conf.Sheets.SpreadsheetID != "" {
		c, err := sheets.New(ctx, conf.Sheets.SpreadsheetID, []byte(key))
		if err != nil {
			log.Error().Err(err).Msg("failed to build sheets client")
		} else {
			sheetClient = c
		}
	} else {
		log.Warn().Msg("sheets not configured; reminders, tasks and email disabled")
	}

	hooks := webhook.NewClient(nil)

	var reminderSvc *reminders.Service
	if sheetClient != nil {
		reminderSvc = reminders.New(sheetClient, conf.Sheets.RemindersTab, conf.Sheets.RemindersAddTab)
		svc.Reminders = reminderSvc
		svc.Tasks = tasks.New(sheetClient, hooks, conf.Sheets.WorkTasksTab,
			conf.Webhooks.AddWorkTask, conf.Webhooks.CompleteWorkTask)
	}

	// LLM chat and drafting.
	var assist *assistant.Assistant
	if os.Getenv("OPENAI_API_KEY") != "" {
		registry := tools.NewRegistry()
		registry.Register(tools.NewDateTool(loc))
		if svc.Calendar != nil {
			registry.Register(tools.NewAgendaTool(svc.Calendar))
		}
		if reminderSvc != nil {
			registry.Register(tools.NewRemindersTool(reminderSvc))
		}
		assist = assistant.New(conf.Assistant.Model, conf.Assistant.SystemPrompt, registry)
		svc.Chat = assist
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set; chat disabled")
	}

	if sheetClient != nil {
		var drafter email.ReplyDrafter
		if assist != nil {
			drafter = assist
		}
		svc.Email = email.New(sheetClient, hooks, drafter, conf.Sheets.EmailTab, conf.Webhooks.EmailDraft)
	}

	// Text-to-speech proxy.
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		svc.Speech = tts.New(key, conf.TTS.VoiceID)
	} else {
		log.Warn().Msg("ELEVENLABS_API_KEY not set; speech disabled")
	}

	return svc, engine
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/jazzy/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")

	flag.Parse()

	return cfg
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
