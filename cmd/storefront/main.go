package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/publisher"
	"github.com/fjod/go_cart/storefront/internal/session"
)

const evictionInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("storefront stopped")
	}
	log.Info("storefront exited")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("failed to shut down tracer provider")
		}
	}()

	storage, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	pub, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	if pub != nil {
		defer pub.Close()
	}

	repo, err := openOrders(cfg, pub != nil, log)
	if err != nil {
		return err
	}
	defer repo.Close()

	recorder := orders.NewRecorder(repo, log)
	sessions := session.NewManager(session.Config{
		Storage:        storage,
		Gateway:        paymentGateway(cfg, log),
		Sink:           recorder.ForSession,
		TaxRate:        cfg.TaxRate,
		PaymentTimeout: cfg.PaymentTimeout,
		Currency:       cfg.Currency,
		Log:            log,
	})

	router := h.NewRouter(h.RouterConfig{
		Sessions:           sessions,
		Catalog:            catalog.Default(),
		Orders:             repo,
		TaxRate:            cfg.TaxRate,
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
		Log:                log,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: otelhttp.NewHandler(router, "storefront"),
		// checkout may wait for the payment gateway
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.PaymentTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		sessions.RunEviction(gctx, evictionInterval, cfg.SessionIdleTimeout)
		return nil
	})

	if pub != nil {
		poller := publisher.NewOutboxPoller(repo, pub, log)
		g.Go(func() error {
			poller.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (persist.Storage, func(), error) {
	switch cfg.StorageBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		log.WithField("addr", cfg.RedisAddr).Info("connected to redis")
		storage := persist.NewRedisStorage(client, persist.WithTTL(cfg.StateTTL, cfg.StateTTL/10))
		return storage, func() { _ = client.Close() }, nil

	case "mongo":
		db, err := persist.ConnectMongoDB(ctx, persist.MongoConfig{
			URI:            cfg.MongoURI,
			Database:       cfg.MongoDBName,
			MaxPoolSize:    uint64(cfg.MongoMaxPoolSize),
			MinPoolSize:    uint64(cfg.MongoMinPoolSize),
			ConnectTimeout: cfg.MongoConnectTimeout,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		storage := persist.NewMongoStorage(db)
		if err := storage.CreateIndexes(ctx, cfg.StateTTL); err != nil {
			return nil, nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return storage, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	default:
		return persist.NewMemoryStorage(), func() {}, nil
	}
}

// openOrders picks the ledger. The in-memory outbox is only filled when a
// publisher drains it; postgres keeps its events for a later poller.
func openOrders(cfg *config.Config, publishing bool, log logrus.FieldLogger) (orders.Repository, error) {
	if cfg.OrdersBackend != "postgres" {
		if !publishing {
			return orders.NewMemoryRepository(orders.WithoutOutbox()), nil
		}
		return orders.NewMemoryRepository(), nil
	}

	creds := &orders.Credentials{
		Host:              cfg.DBHost,
		Port:              cfg.DBPort,
		User:              cfg.DBUser,
		Password:          cfg.DBPassword,
		DBName:            cfg.DBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}
	repo, err := orders.NewPostgresRepository(creds, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := repo.RunMigrations(creds); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return repo, nil
}

func openPublisher(cfg *config.Config) (publisher.Publisher, error) {
	switch cfg.EventsBackend {
	case "kafka":
		return publisher.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...), nil
	case "rabbitmq":
		pub, err := publisher.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
		}
		return pub, nil
	default:
		return nil, nil
	}
}

func paymentGateway(cfg *config.Config, log logrus.FieldLogger) checkout.PaymentGateway {
	if cfg.PaymentMode == "http" {
		return checkout.NewHTTPGateway(cfg.PaymentURL, nil, log)
	}

	var decider checkout.Decider = checkout.AlwaysApprove{}
	if cfg.ApprovalRate < 100 {
		decider = checkout.NewRandomApproval(cfg.ApprovalRate, time.Now().UnixNano())
	}
	return checkout.NewSimulatedGateway(cfg.PaymentDelay, decider)
}
