package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/httpserver"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/telemetry"
)

// Run bootstraps the VidTube backend application.
func Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected command: serve, indexes, or seed")
	}

	switch args[0] {
	case "serve":
		return serve(ctx)
	case "indexes":
		return runIndexes(ctx)
	case "seed":
		return runSeed(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	telemetry.Init()

	database, disconnect, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := disconnect(disconnectCtx); err != nil {
			logger.Error("disconnect mongo", "error", err)
		}
	}()

	deps, err := buildDependencies(ctx, database, cfg, logger)
	if err != nil {
		return err
	}

	handler := handlers.NewRouter(deps)
	srv := httpserver.New(cfg.AppPort, handler)

	logger.Info("starting http server", "port", cfg.AppPort)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	case sig := <-signalCh:
		logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpserver.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func runIndexes(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, disconnect, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = disconnect(disconnectCtx)
	}()

	if err := repositories.EnsureIndexes(ctx, database); err != nil {
		return err
	}

	fmt.Println("indexes ensured")
	return nil
}

// seedFile maps collection names to raw documents.
type seedFile map[string][]bson.M

func runSeed(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("expected path to a seed file (JSON)")
	}

	contents, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read seed %s: %w", args[0], err)
	}

	var seed seedFile
	if err := json.Unmarshal(contents, &seed); err != nil {
		return fmt.Errorf("parse seed %s: %w", args[0], err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	database, disconnect, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = disconnect(disconnectCtx)
	}()

	for collection, docs := range seed {
		if len(docs) == 0 {
			continue
		}
		payload := make([]interface{}, 0, len(docs))
		for _, doc := range docs {
			payload = append(payload, doc)
		}
		if _, err := database.Collection(collection).InsertMany(ctx, payload); err != nil {
			return fmt.Errorf("seed collection %s: %w", collection, err)
		}
		fmt.Printf("seeded %d documents into %s\n", len(docs), collection)
	}
	return nil
}

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
