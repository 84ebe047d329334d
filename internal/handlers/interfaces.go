package handlers

import (
	"context"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// SessionService captures the credential and session operations the user
// handlers depend on.
type SessionService interface {
	Register(ctx context.Context, in auth.RegisterInput) (models.UserView, error)
	Login(ctx context.Context, identifier, password string) (models.UserView, models.SessionTokens, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, presented string) (models.SessionTokens, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (models.UserView, error)
}

// ViewService captures the read-model operations backing channel, comment,
// and history endpoints.
type ViewService interface {
	VideoComments(ctx context.Context, videoID string, page, limit int64) (models.CommentPage, error)
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	WatchHistory(ctx context.Context, userID string) ([]models.WatchedVideo, error)
	RecordWatch(ctx context.Context, userID, videoID string) error
}

// CommentService captures comment write operations.
type CommentService interface {
	Add(ctx context.Context, videoID, ownerID, content string) (models.CommentView, error)
	Get(ctx context.Context, commentID string) (models.CommentView, error)
	Update(ctx context.Context, commentID, content string) (models.CommentView, error)
	Delete(ctx context.Context, commentID string) error
}

// PlaylistService captures playlist CRUD and membership operations.
type PlaylistService interface {
	Create(ctx context.Context, ownerID, name, description string) (models.PlaylistView, error)
	Get(ctx context.Context, playlistID string) (models.PlaylistView, error)
	Update(ctx context.Context, playlistID string, name, description *string) (models.PlaylistView, error)
	Delete(ctx context.Context, playlistID string) error
	AddVideo(ctx context.Context, playlistID, videoID string) (models.PlaylistView, error)
	RemoveVideo(ctx context.Context, playlistID, videoID string) (models.PlaylistView, error)
}
