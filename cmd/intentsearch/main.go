package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/intentsearch/internal/config"
	"github.com/kailas-cloud/intentsearch/internal/db"
	"github.com/kailas-cloud/intentsearch/internal/db/memory"
	dbRedis "github.com/kailas-cloud/intentsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/intentsearch/internal/logger"
	"github.com/kailas-cloud/intentsearch/internal/metrics"
	"github.com/kailas-cloud/intentsearch/internal/repository/recent"
	"github.com/kailas-cloud/intentsearch/internal/telemetry"
	chiTransport "github.com/kailas-cloud/intentsearch/internal/transport/chi"
	"github.com/kailas-cloud/intentsearch/internal/transport/classifier"
	openaiCls "github.com/kailas-cloud/intentsearch/internal/transport/openai"
	"github.com/kailas-cloud/intentsearch/internal/transport/searchapi"
	"github.com/kailas-cloud/intentsearch/internal/usecase/aggregate"
	healthuc "github.com/kailas-cloud/intentsearch/internal/usecase/health"
	intentuc "github.com/kailas-cloud/intentsearch/internal/usecase/intent"
	"github.com/kailas-cloud/intentsearch/internal/usecase/route"
	searchuc "github.com/kailas-cloud/intentsearch/internal/usecase/search"
	"github.com/kailas-cloud/intentsearch/internal/usecase/session"
	suggestuc "github.com/kailas-cloud/intentsearch/internal/usecase/suggest"
	"github.com/kailas-cloud/intentsearch/internal/version"
)

// classifierClient is what both classification providers offer.
type classifierClient interface {
	intentuc.Classifier
	healthuc.Checker
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting intentsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("classifier", cfg.Classifier.Provider),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	cat := cfg.Catalog.Build()
	cls := newClassifier(cfg.Classifier, logger)
	products := searchapi.NewProducts(searchapi.Config{
		BaseURL: cfg.Sources.Products.BaseURL,
		APIKey:  cfg.Sources.Products.APIKey,
	})
	content := searchapi.NewContent(searchapi.Config{
		BaseURL: cfg.Sources.Content.BaseURL,
		APIKey:  cfg.Sources.Content.APIKey,
	})

	recentStore := recent.New(store, cfg.Storage.KeyPrefix, cfg.Suggest.RecentCapacity, logger,
		recent.WithRetention(cfg.Suggest.RecentTTL()))

	sessions := session.NewRegistry(
		session.Config{
			Capacity:               cfg.Cache.SessionCapacity,
			Idle:                   time.Duration(cfg.Cache.SessionIdleSec) * time.Second,
			ClassificationCapacity: cfg.Cache.ClassificationCapacity,
			ResultCapacity:         cfg.Cache.ResultCapacity,
			ClassifierTimeout:      cfg.Classifier.Timeout(),
		},
		session.Deps{
			Classifier: cls,
			Events:     telemetry.NewLogEmitter(logger, metrics.TelemetryEventsTotal),
			Sources: aggregate.Sources{
				Products:        products,
				Content:         content,
				ProductsTimeout: cfg.Sources.Products.Timeout(),
				ContentTimeout:  cfg.Sources.Content.Timeout(),
			},
			Catalog: cat,
			Logger:  logger,
		},
	)

	suggestSvc := suggestuc.New(recentStore, cat.Terms, suggestuc.Options{
		MinChars:       cfg.Suggest.MinChars,
		MaxSuggestions: cfg.Suggest.MaxSuggestions,
	}, logger)
	searchSvc := searchuc.New(sessions, recentStore, route.New(cat), cat, logger)
	healthSvc := healthuc.New(store, map[string]healthuc.Checker{
		"classifier": cls,
		"products":   products,
		"content":    content,
	})

	server := chiTransport.NewServer(suggestSvc, searchSvc, recentStore, healthSvc, chiTransport.Options{
		LiveDebounce:   time.Duration(cfg.Suggest.DebounceMs) * time.Millisecond,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSONError(w, http.StatusMethodNotAllowed, "bad_request", "method not allowed")
	})
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newStore creates the recent-query store backend. Valkey and Redis share the rueidis client.
func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case "valkey", "redis":
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	case "memory":
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func newClassifier(cfg config.ClassifierConfig, logger *zap.Logger) classifierClient {
	if cfg.Provider == "openai" {
		return openaiCls.NewClassifier(&openaiCls.Config{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Logger:  logger,
		})
	}
	return classifier.NewClient(classifier.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
	})
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", chi.RouteContext(r.Context()).RoutePattern()),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
