package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"secure-chat/auth"
	"secure-chat/codec"
	"secure-chat/cooldown"
	"secure-chat/internal"
	"secure-chat/moderation"
	"secure-chat/observability"
	"secure-chat/repositories"
	"secure-chat/runtime/workers"
	"secure-chat/services"
	httptransport "secure-chat/transport/http"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a server failure.
// Deferred closes run before main exits, badger last.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Cipher: wrong secrets stop the process before anything listens
	cipher, err := codec.NewAESCodec([]byte(config.AESKey), []byte(config.AESIV))
	if err != nil {
		return fmt.Errorf("cipher setup failed: %w", err)
	}

	// 3. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	groupRepository := repositories.NewGroupRepository(db, log)
	messageRepository, err := repositories.NewMessageRepository(db, log, time.Now)
	if err != nil {
		return fmt.Errorf("message repository: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()
	userRepository := repositories.NewUserRepository(db, time.Now)

	// 4. Cooldown backend & maintenance workers
	supervisor := workers.NewSupervisor(log).
		Add(workers.NewValueLogGC(db, config.ValueLogGC, log))
	tracker, closeTracker, err := newCooldownTracker(config)
	if err != nil {
		return err
	}
	defer closeTracker()
	if memory, ok := tracker.(*cooldown.MemoryTracker); ok {
		supervisor.Add(workers.NewCooldownSweeper(memory, config.CooldownSweep, time.Now, log))
	}

	// 5. Moderation
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	var censor moderation.ICensor
	if words := config.CensoredWordList(); len(words) > 0 {
		moderator, err := moderation.NewModerator(words, replacement, log)
		if err != nil {
			return err
		}
		censor = moderator
	}

	// 6. Services
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)
	tokens := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration, time.Now)

	deps := httptransport.Dependencies{
		Membership:     services.NewMembershipService(groupRepository, tracker, metrics, log, time.Now, config.DefaultMaxMembers),
		Messages:       services.NewMessageService(groupRepository, messageRepository, cipher, censor, metrics, log, config.MaxMessageLength),
		Auth:           services.NewAuthService(userRepository, tokens, log),
		Tokens:         tokens,
		Gatherer:       registry,
		Log:            log,
		RequestTimeout: config.RequestTimeout,
	}
	if config.DebugInspect {
		log.Warn("Debug key inspection is enabled")
		deps.Inspector = db
	}

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:              config.Addr(),
		Handler:           httptransport.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting HTTP server", "address", server.Addr, "cooldown_backend", config.CooldownBackend)
		if err := server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		supervisor.Run(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err = g.Wait(); err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}

func newCooldownTracker(config internal.Config) (cooldown.ITracker, func(), error) {
	if config.CooldownBackend != internal.CooldownRedis {
		return cooldown.NewMemoryTracker(), func() {}, nil
	}
	options, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(options)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis unreachable: %w", err)
	}
	return cooldown.NewRedisTracker(client), func() { _ = client.Close() }, nil
}
