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

	"github.com/sirupsen/logrus"
	"github.com/voicecart/backend/config"
	"github.com/voicecart/backend/internal/catalog"
	httpDelivery "github.com/voicecart/backend/internal/delivery/http"
	"github.com/voicecart/backend/internal/domain"
	"github.com/voicecart/backend/internal/infrastructure/cache"
	"github.com/voicecart/backend/internal/infrastructure/memstore"
	"github.com/voicecart/backend/internal/infrastructure/mongostore"
	"github.com/voicecart/backend/internal/lexicon"
	"github.com/voicecart/backend/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		logrus.Fatalf("Failed to configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.WithError(err).Fatal("server exited")
	}
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger, nil
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"version":     version,
		"environment": cfg.Server.Environment,
		"storage":     cfg.Storage.Type,
		"cache":       cfg.Cache.Type,
	}).Info("Starting VoiceCart backend")

	products, err := loadCatalog(cfg.Catalog)
	if err != nil {
		return err
	}
	lex, err := loadLexicon(cfg.Catalog)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"products":  products.Len(),
		"languages": lex.Languages(),
	}).Info("Catalog loaded")

	scorer, err := usecase.NewScorer(cfg.Matching.Strategy)
	if err != nil {
		return err
	}

	stores, closeStore, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	cartCache, closeCache, err := openCache(ctx, cfg.Cache, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	resolver := usecase.NewResolver(products, usecase.ResolverConfig{
		Scorer:             scorer,
		MinSimilarity:      cfg.Matching.MinSimilarity,
		MaxSuggestions:     cfg.Matching.MaxSuggestions,
		EnableDebugLogging: cfg.Matching.EnableDebugLogging,
	}, logger)
	cartService := usecase.NewCartService(stores.carts, cartCache, products, resolver,
		usecase.CartServiceConfig{CacheTTL: cfg.Cache.TTL, LoadTimeout: cfg.Storage.Timeout}, logger)
	sessionService := usecase.NewSessionService(cartService, logger)
	parser := usecase.NewIntentParser(lex, cfg.Matching.EnableDebugLogging, logger)
	voiceService := usecase.NewVoiceService(parser, resolver, cartService, stores.activities, stores.feedback,
		usecase.VoiceServiceConfig{}, logger)

	logger.WithFields(logrus.Fields{
		"strategy":        cfg.Matching.Strategy,
		"min_similarity":  cfg.Matching.MinSimilarity,
		"max_suggestions": cfg.Matching.MaxSuggestions,
	}).Info("Matching configured")

	handler := httpDelivery.NewHandler(voiceService, cartService, sessionService, resolver, products, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func loadCatalog(cfg config.CatalogConfig) (*catalog.Catalog, error) {
	if cfg.Path == "" {
		return catalog.Default()
	}
	return catalog.Load(cfg.Path)
}

// loadLexicon starts from the built-in languages and layers any file-defined ones on top
func loadLexicon(cfg config.CatalogConfig) (*lexicon.Lexicon, error) {
	languages := lexicon.Builtin()
	if cfg.LexiconPath != "" {
		extra, err := lexicon.LoadFile(cfg.LexiconPath)
		if err != nil {
			return nil, err
		}
		languages = append(languages, extra...)
	}
	return lexicon.New(cfg.DefaultLanguage, languages...)
}

// storage groups the durable repositories behind the configured backend
type storage struct {
	carts      domain.CartRepository
	activities domain.ActivityRepository
	feedback   domain.FeedbackRepository
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger logrus.FieldLogger) (*storage, func(), error) {
	if cfg.Type != "mongo" {
		logger.Warn("Using in-memory storage; carts are lost on restart")
		return &storage{
			carts:      memstore.NewCartRepository(),
			activities: memstore.NewActivityRepository(),
			feedback:   memstore.NewFeedbackRepository(),
		}, func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	db, err := mongostore.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, cfg.Timeout)
	if err != nil {
		return nil, nil, err
	}
	if err := mongostore.EnsureIndexes(connectCtx, db, cfg.Timeout); err != nil {
		_ = db.Client().Disconnect(context.Background())
		return nil, nil, err
	}
	logger.WithFields(logrus.Fields{
		"database": cfg.MongoDatabase,
		"timeout":  cfg.Timeout,
	}).Info("Connected to MongoDB")

	closeFn := func() {
		if err := db.Client().Disconnect(context.Background()); err != nil {
			logger.WithError(err).Warn("MongoDB disconnect failed")
		}
	}
	return &storage{
		carts:      mongostore.NewCartRepository(db, cfg.Timeout),
		activities: mongostore.NewActivityRepository(db, cfg.Timeout),
		feedback:   mongostore.NewFeedbackRepository(db, cfg.Timeout),
	}, closeFn, nil
}

func openCache(ctx context.Context, cfg config.CacheConfig, logger logrus.FieldLogger) (domain.CartCache, func(), error) {
	if cfg.Type != "redis" {
		memoryCache := cache.NewMemoryCache()
		return memoryCache, func() { _ = memoryCache.Close() }, nil
	}

	client, err := cache.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Connected to Redis")

	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Redis close failed")
		}
	}
	return cache.NewRedisCache(client), closeFn, nil
}
