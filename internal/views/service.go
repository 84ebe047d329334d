// Package views computes read-only derived projections that join multiple
// collections: paginated video comments, channel profiles, and watch history.
// Nothing here mutates an entity apart from appending watch-history entries.
package views

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// VideoReader checks video existence.
type VideoReader interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CommentReader produces joined comment pages and totals for a video.
type CommentReader interface {
	PageForVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]models.CommentView, error)
	CountForVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error)
}

// ProfileReader materializes the subscription-joined channel profile.
type ProfileReader interface {
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (models.ChannelProfile, error)
}

// HistoryStore reads and appends a user's watch history.
type HistoryStore interface {
	WatchHistoryIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	ResolveWatchedVideos(ctx context.Context, ids []primitive.ObjectID) ([]models.WatchedVideo, error)
	AppendWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error
}

// Service builds the derived read views.
type Service struct {
	videos   VideoReader
	comments CommentReader
	profiles ProfileReader
	history  HistoryStore
}

// NewService wires the view service to its readers.
func NewService(videos VideoReader, comments CommentReader, profiles ProfileReader, history HistoryStore) *Service {
	return &Service{videos: videos, comments: comments, profiles: profiles, history: history}
}

// VideoComments returns one page of a video's comments, each with its owner
// collapsed to a single embedded summary, plus totals over the whole comment
// set. Order is insertion order; no explicit sort is applied.
func (s *Service) VideoComments(ctx context.Context, videoID string, page, limit int64) (models.CommentPage, error) {
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return models.CommentPage{}, apierr.BadRequest("malformed video id")
	}
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	exists, err := s.videos.Exists(ctx, vid)
	if err != nil {
		return models.CommentPage{}, apierr.Internal("video lookup failed", err)
	}
	if !exists {
		return models.CommentPage{}, apierr.NotFound("video not found")
	}

	skip := (page - 1) * limit
	comments, err := s.comments.PageForVideo(ctx, vid, skip, limit)
	if err != nil {
		return models.CommentPage{}, apierr.Internal("failed to load comments", err)
	}

	total, err := s.comments.CountForVideo(ctx, vid)
	if err != nil {
		return models.CommentPage{}, apierr.Internal("failed to count comments", err)
	}

	if comments == nil {
		comments = []models.CommentView{}
	}

	return models.CommentPage{
		Comments:      comments,
		TotalComments: total,
		TotalPages:    (total + limit - 1) / limit,
		Page:          page,
		Limit:         limit,
	}, nil
}

// ChannelProfile returns the subscription-derived profile for a username.
// viewerID may be empty, in which case isSubscribed is always false.
func (s *Service) ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error) {
	if username == "" {
		return models.ChannelProfile{}, apierr.BadRequest("username is required")
	}

	viewer := primitive.NilObjectID
	if viewerID != "" {
		var err error
		viewer, err = primitive.ObjectIDFromHex(viewerID)
		if err != nil {
			return models.ChannelProfile{}, apierr.BadRequest("malformed user id")
		}
	}

	profile, err := s.profiles.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.ChannelProfile{}, apierr.NotFound("channel not found")
		}
		return models.ChannelProfile{}, apierr.Internal("failed to load channel profile", err)
	}
	return profile, nil
}

// WatchHistory resolves the user's watched-video references into full video
// summaries, ordered by the stored history list. The underlying join does not
// guarantee order, so results are reordered here.
func (s *Service) WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, apierr.BadRequest("malformed user id")
	}

	ids, err := s.history.WatchHistoryIDs(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apierr.NotFound("user not found")
		}
		return nil, apierr.Internal("failed to load watch history", err)
	}
	if len(ids) == 0 {
		return []models.WatchedVideo{}, nil
	}

	resolved, err := s.history.ResolveWatchedVideos(ctx, ids)
	if err != nil {
		return nil, apierr.Internal("failed to resolve watch history", err)
	}

	byID := make(map[string]models.WatchedVideo, len(resolved))
	for _, v := range resolved {
		byID[v.ID] = v
	}

	// Stored order wins; videos deleted since being watched drop out.
	ordered := make([]models.WatchedVideo, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id.Hex()]; ok {
			ordered = append(ordered, v)
		}
	}
	return ordered, nil
}

// RecordWatch appends a video to the user's watch history. Rewatching a video
// appends it again.
func (s *Service) RecordWatch(ctx context.Context, userID, videoID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apierr.BadRequest("malformed user id")
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return apierr.BadRequest("malformed video id")
	}

	exists, err := s.videos.Exists(ctx, vid)
	if err != nil {
		return apierr.Internal("video lookup failed", err)
	}
	if !exists {
		return apierr.NotFound("video not found")
	}

	if err := s.history.AppendWatchHistory(ctx, uid, vid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierr.NotFound("user not found")
		}
		return apierr.Internal("failed to record watch", err)
	}
	return nil
}
