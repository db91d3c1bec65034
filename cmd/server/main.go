package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/itaymdigi/coldtherapylanding/internal/config"
	"github.com/itaymdigi/coldtherapylanding/internal/database"
	"github.com/itaymdigi/coldtherapylanding/internal/events"
	"github.com/itaymdigi/coldtherapylanding/internal/handler"
	"github.com/itaymdigi/coldtherapylanding/internal/metrics"
	"github.com/itaymdigi/coldtherapylanding/internal/repository"
	"github.com/itaymdigi/coldtherapylanding/internal/repository/memory"
	"github.com/itaymdigi/coldtherapylanding/internal/repository/postgres"
	"github.com/itaymdigi/coldtherapylanding/internal/service"
	"github.com/itaymdigi/coldtherapylanding/internal/telemetry"
	"github.com/itaymdigi/coldtherapylanding/pkg/actionlink"
	"github.com/itaymdigi/coldtherapylanding/pkg/blacklist"
	"github.com/itaymdigi/coldtherapylanding/pkg/bus"
	"github.com/itaymdigi/coldtherapylanding/pkg/email"
	"github.com/itaymdigi/coldtherapylanding/pkg/hash"
	"github.com/itaymdigi/coldtherapylanding/pkg/storage"
	"github.com/itaymdigi/coldtherapylanding/pkg/validator"
)

type repositories struct {
	users         repository.UserRepository
	tokens        repository.SessionTokenRepository
	practice      repository.PracticeRepository
	bookings      repository.BookingRepository
	subscriptions repository.SubscriptionRepository
	payments      repository.PaymentRepository
	packages      repository.PackageRepository
	media         repository.MediaRepository
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setupLogging(cfg)

	shutdownTracing, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	m := metrics.New()
	checks := map[string]handler.Check{}

	// Storage: PostgreSQL, or maps for local development
	var repos repositories
	var guard service.LinkGuard
	if cfg.Database.InMemory {
		store := memory.NewStore()
		repos = memoryRepositories(store)
		guard = store.LinkGuard()
		log.Warn().Msg("using in-memory storage; data is lost on restart")
	} else {
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeLogged("database", db)
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(ctx, db); err != nil {
				return err
			}
		}
		repos = postgresRepositories(db)
		checks["database"] = db.PingContext
		log.Info().Str("host", cfg.Database.Host).Msg("database connection established")
	}

	if cfg.Redis.Enabled {
		client, err := initRedis(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeLogged("redis", client)
		redisGuard := blacklist.NewLinkGuard(client)
		guard = redisGuard
		checks["redis"] = redisGuard.Ping
		log.Info().Str("addr", cfg.Redis.Addr()).Msg("redis connection established")
	} else if guard == nil {
		guard = memory.NewStore().LinkGuard()
		log.Warn().Msg("redis disabled; action links are tracked in process memory")
	}

	// Events: JetStream when configured, in-process delivery otherwise
	var eventBus events.Bus
	if cfg.NATS.URL != "" {
		b, err := bus.New(cfg.NATS.URL, cfg.NATS.Stream, events.StreamSubjects,
			nats.Name(cfg.Telemetry.ServiceName),
			nats.MaxReconnects(-1),
		)
		if err != nil {
			return err
		}
		defer b.Close()
		eventBus = b
		checks["nats"] = func(context.Context) error {
			if !b.Connected() {
				return fmt.Errorf("not connected")
			}
			return nil
		}
		log.Info().Str("stream", cfg.NATS.Stream).Msg("nats connection established")
	} else {
		eventBus = events.NewLocal()
	}

	var mailer email.Mailer
	if cfg.Email.Enabled {
		mailer, err = email.NewResendMailer(email.Config{
			APIKey:    cfg.Email.APIKey,
			FromEmail: cfg.Email.FromEmail,
			FromName:  cfg.Email.FromName,
		})
		if err != nil {
			return err
		}
	} else {
		mailer = email.NewLogMailer()
		log.Info().Msg("email disabled; messages are logged instead of sent")
	}

	notifier := events.NewNotifier(mailer, cfg.Email.StaffEmail, cfg.Location())
	closers, err := notifier.Start(ctx, eventBus)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range closers {
			closeLogged("subscription", c)
		}
	}()

	var objects service.ObjectStore
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(ctx, storage.Config{
			Endpoint:       cfg.Storage.Endpoint,
			Region:         cfg.Storage.Region,
			AccessKey:      cfg.Storage.AccessKey,
			SecretKey:      cfg.Storage.SecretKey,
			Bucket:         cfg.Storage.Bucket,
			ForcePathStyle: cfg.Storage.ForcePathStyle,
		})
		if err != nil {
			return err
		}
		objects = client
		log.Info().Str("bucket", client.Bucket()).Msg("object storage configured")
	}

	// Services
	validate := validator.NewValidator()
	links := actionlink.NewSigner(cfg.Links.Secret, cfg.Links.TTL, cfg.Links.Issuer)

	authService := service.NewAuthService(repos.users, repos.tokens, hash.NewHasher(hash.DefaultParams), mailer, m, cfg)
	practiceService := service.NewPracticeService(authService, repos.practice, repos.users, m, cfg.Location())
	bookingService := service.NewBookingService(repos.bookings, repos.packages, links, guard, mailer, eventBus, m, cfg)
	subscriptionService := service.NewSubscriptionService(repos.subscriptions, repos.packages)
	paymentService := service.NewPaymentService(repos.payments, repos.bookings, repos.subscriptions, repos.packages,
		bookingService, subscriptionService, eventBus, m, cfg.Payments)
	catalogService := service.NewCatalogService(repos.packages, cfg.Payments.Currency)
	mediaService := service.NewMediaService(repos.media, objects, cfg.Storage)
	maintenance := service.NewMaintenanceService(repos.subscriptions, repos.tokens, repos.users, m)

	if cfg.Payments.WebhookSecret == "" {
		log.Warn().Msg("PAYMENT_WEBHOOK_SECRET is empty; every payment webhook will be rejected")
	}

	app := handler.NewApp(cfg, m)
	handler.SetupRoutes(app, cfg, handler.Handlers{
		Auth:         handler.NewAuthHandler(authService, validate),
		Password:     handler.NewPasswordHandler(authService, validate),
		User:         handler.NewUserHandler(),
		Practice:     handler.NewPracticeHandler(practiceService, validate),
		Booking:      handler.NewBookingHandler(bookingService, validate),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, validate),
		Payment:      handler.NewPaymentHandler(paymentService, validate),
		Catalog:      handler.NewCatalogHandler(catalogService, mediaService, validate),
		Health:       handler.NewHealthHandler(cfg.Telemetry.ServiceName, checks),
	}, authService, m)

	go maintenance.Run(ctx, cfg.Studio.SweepInterval)

	serverErr := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Str("environment", cfg.Server.Environment).Msg("server starting")
		serverErr <- app.Listen(addr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
	return nil
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	level := zerolog.InfoLevel
	if !cfg.IsProduction() {
		level = zerolog.DebugLevel
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.With().Str("service", cfg.Telemetry.ServiceName).Logger()
}

// initRedis initializes Redis client and verifies connection
func initRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		users:         postgres.NewUserRepository(db),
		tokens:        postgres.NewSessionTokenRepository(db),
		practice:      postgres.NewPracticeRepository(db),
		bookings:      postgres.NewBookingRepository(db),
		subscriptions: postgres.NewSubscriptionRepository(db),
		payments:      postgres.NewPaymentRepository(db),
		packages:      postgres.NewPackageRepository(db),
		media:         postgres.NewMediaRepository(db),
	}
}

func memoryRepositories(store *memory.Store) repositories {
	return repositories{
		users:         store.Users(),
		tokens:        store.SessionTokens(),
		practice:      store.Practice(),
		bookings:      store.Bookings(),
		subscriptions: store.Subscriptions(),
		payments:      store.Payments(),
		packages:      store.Packages(),
		media:         store.Media(),
	}
}

func closeLogged(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("resource", what).Msg("close failed")
	}
}
