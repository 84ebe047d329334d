package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/content"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/views"
)

// loginRateLimit allows a handful of credential attempts per IP per minute.
const (
	loginRateRequests = 10
	loginRateWindow   = time.Minute
	loginRateBurst    = 5
	loginRateTTL      = 10 * time.Minute
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, database *mongo.Database, cfg config.Config, logger *slog.Logger) (handlers.Dependencies, error) {
	tokens, err := auth.NewTokenManager(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)
	if err != nil {
		return handlers.Dependencies{}, err
	}

	files, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure object storage: %w", err)
	}

	users := repositories.NewMongoUserRepository(database)
	comments := repositories.NewMongoCommentRepository(database)
	videos := repositories.NewMongoVideoRepository(database)
	playlists := repositories.NewMongoPlaylistRepository(database)

	return handlers.Dependencies{
		Logger:         logger,
		Sessions:       auth.NewService(users, files, tokens),
		Views:          views.NewService(videos, comments, users, historyStore{users, videos}),
		Comments:       content.NewCommentService(comments, videos),
		Playlists:      content.NewPlaylistService(playlists, videos),
		Tokens:         tokens,
		Limiter:        middleware.NewIPRateLimiter(loginRateRequests, loginRateWindow, loginRateBurst, loginRateTTL),
		DB:             databasePinger{database},
		AllowedOrigins: cfg.CORSOrigins,
	}, nil
}

// historyStore joins the user and video repositories into the single
// interface the view service consumes: history references live on the user
// document, the resolution join runs against the videos collection.
type historyStore struct {
	users  *repositories.MongoUserRepository
	videos *repositories.MongoVideoRepository
}

func (h historyStore) WatchHistoryIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return h.users.WatchHistoryIDs(ctx, userID)
}

func (h historyStore) ResolveWatchedVideos(ctx context.Context, ids []primitive.ObjectID) ([]models.WatchedVideo, error) {
	return h.videos.ResolveWatchedVideos(ctx, ids)
}

func (h historyStore) AppendWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	return h.users.AppendWatchHistory(ctx, userID, videoID)
}

// databasePinger adapts the Mongo client to the health handler.
type databasePinger struct {
	database *mongo.Database
}

func (p databasePinger) Ping(ctx context.Context) error {
	return p.database.Client().Ping(ctx, readpref.Primary())
}
