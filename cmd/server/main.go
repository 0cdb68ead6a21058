package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"teamspace/ai"
	"teamspace/auth"
	"teamspace/contract"
	"teamspace/conversation"
	"teamspace/domain"
	"teamspace/domain/event"
	"teamspace/infrastructure/api"
	"teamspace/infrastructure/fulltext"
	"teamspace/infrastructure/mail"
	"teamspace/internal"
	"teamspace/mediator"
	"teamspace/moderation"
	"teamspace/observability"
	"teamspace/repositories"
	"teamspace/runtime"
	"teamspace/runtime/workers"
	"teamspace/services"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/sync/errgroup"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const serviceName = "teamspace"

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run builds every component, runs the workers until a signal arrives and
// returns the exit code. Deferred closes run before main exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracing, err := observability.NewProvider(ctx, observability.TracingConfig{
		Enabled:      config.OtelEnabled,
		ServiceName:  serviceName,
		Exporter:     config.OtelExporter,
		Endpoint:     config.OtelEndpoint,
		SamplingRate: config.OtelSamplingRate,
	})
	if err != nil {
		return exitConfig, fmt.Errorf("tracing setup failed: %w", err)
	}
	defer func() { _ = tracing.Shutdown(context.Background()) }()

	// 2. Storage (BadgerDB) and search index (Bluge)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	if config.DebugPort > 0 {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, RecordMapper)
	}

	blugeWriter, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		logger.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	taskRepository, err := repositories.NewTaskRepository(db, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = taskRepository.Close() }()
	messageRepository := repositories.NewMessageRepository(db, logger, config.LimitMessages)
	index := fulltext.NewIndex(blugeWriter, logger)

	// 3. Moderation
	dictionary, err := moderation.LoadDictionary(moderation.Dictionaries, moderation.DictionaryDir, config.ExtraCensoredWords()...)
	if err != nil {
		return exitConfig, fmt.Errorf("moderation dictionary: %w", err)
	}
	moderator, err := moderation.NewModerator(dictionary.Words, charReplacement, logger)
	if err != nil {
		return exitConfig, fmt.Errorf("moderator: %w", err)
	}
	logger.Info("Moderation ready", "words", len(dictionary.Words), "languages", strings.Join(dictionary.Languages, ","))

	// 4. Real-time hub and domain events
	hub := runtime.NewHub(logger)
	presence := runtime.NewPresence()
	cache := conversation.NewCache(conversation.WithLogger(logger), conversation.WithSweepInterval(config.ConversationSweepInterval))
	bus := mediator.NewEventBus(logger, config.EventHandlerTimeout)
	event.Subscribe(bus, event.Handlers{
		Realtime:     event.NewRealtimeHandler(logger, hub),
		Notification: event.NewNotificationHandler(logger, mail.NewLogMailer(logger), config.MailFrom),
		SearchIndex:  event.NewSearchIndexHandler(logger, index),
		Latency:      event.NewLatencyHandler(logger, config.LatencyThreshold),
	})

	// 5. Assistant model
	var model contract.LanguageModel = ai.EchoModel{}
	if config.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiModel(ctx, config.GeminiAPIKey, config.GeminiModel, logger)
		if err != nil {
			return exitConfig, fmt.Errorf("gemini client: %w", err)
		}
		defer func() { _ = gemini.Close() }()
		model = gemini
	} else {
		logger.Warn("GEMINI_API_KEY not set, the assistant echoes prompts")
	}

	// 6. Mediator
	builder := mediator.NewBuilder(logger, bus).
		Expect(domain.Requests()...).
		Use(
			mediator.NewLoggingBehavior(logger),
			mediator.NewTracingBehavior(observability.Tracer(serviceName)),
			mediator.NewMetricsBehavior(),
		)
	services.Register(builder,
		services.NewTaskService(logger, taskRepository, bus),
		services.NewChatService(logger, messageRepository, index, moderator, bus),
		services.NewAssistantService(logger, model, cache, taskRepository, bus),
	)
	m, err := builder.Build()
	if err != nil {
		return exitConfig, fmt.Errorf("mediator wiring: %w", err)
	}

	// 7. Transport and workers
	tracingService := ""
	if config.OtelEnabled {
		tracingService = serviceName
	}
	server := api.NewServer(logger, api.Config{
		RateLimitPerMinute: config.RateLimitPerMinute,
		Heartbeat:          config.SSEHeartbeat,
		ConnectionBuffer:   config.ConnectionBufferSize,
		TracingService:     tracingService,
	}, m, hub, presence, auth.NewTokens(config.JWTSecret, config.AuthTokenDuration))

	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		workers.NewHTTPServer(logger, config.Address(), server.Routes()),
		workers.NewConversationJanitor(logger, cache, config.ConversationSweepInterval),
		workers.NewHealthMonitor(logger, hub, cache, config.MetricInterval),
	)

	// 8. Run until a signal arrives
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sup.Run(gctx)
		if gctx.Err() == nil {
			return fmt.Errorf("every worker stopped before shutdown")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		sup.Stop()
		return nil
	})
	logger.Info("Server started", "address", config.Address())
	if err := g.Wait(); err != nil {
		return exitRuntime, err
	}

	logger.Info("Program stopped cleanly")
	return exitOK, nil
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}
	return options
}

// RecordMapper labels badger records by key prefix for the debug inspector.
func RecordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	kind, _, _ := strings.Cut(key, ":")
	row.Type = strings.ToUpper(kind)

	var fields map[string]any
	if err := json.Unmarshal(val, &fields); err != nil {
		return row
	}
	for _, name := range []string{"content", "title", "name"} {
		if v, ok := fields[name].(string); ok {
			row.Detail = v
			break
		}
	}
	return row
}
