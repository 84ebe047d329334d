package content

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
)

// PlaylistStore captures playlist persistence.
type PlaylistStore interface {
	Insert(ctx context.Context, playlist models.Playlist) (models.Playlist, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, name, description *string) (models.Playlist, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error)
	RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error)
}

// PlaylistService manages playlist CRUD and video membership.
type PlaylistService struct {
	playlists PlaylistStore
	videos    VideoReader
}

// NewPlaylistService wires the playlist service to its stores.
func NewPlaylistService(playlists PlaylistStore, videos VideoReader) *PlaylistService {
	return &PlaylistService{playlists: playlists, videos: videos}
}

// Create stores a new playlist for the owner. Name and description are both
// required.
func (s *PlaylistService) Create(ctx context.Context, ownerID, name, description string) (models.PlaylistView, error) {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	if name == "" || description == "" {
		return models.PlaylistView{}, apierr.BadRequest("name and description are required")
	}

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed user id")
	}

	created, err := s.playlists.Insert(ctx, models.Playlist{
		Name:        name,
		Description: description,
		Videos:      []primitive.ObjectID{},
		Owner:       owner,
	})
	if err != nil {
		return models.PlaylistView{}, apierr.Dependency("failed to create playlist", err)
	}
	return created.View(), nil
}

// Get returns a playlist by id.
func (s *PlaylistService) Get(ctx context.Context, playlistID string) (models.PlaylistView, error) {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed playlist id")
	}

	playlist, err := s.playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistView{}, apierr.NotFound("playlist not found")
		}
		return models.PlaylistView{}, apierr.Internal("playlist lookup failed", err)
	}
	return playlist.View(), nil
}

// Update applies a partial field replacement. Nil fields are left unchanged;
// provided fields must be non-empty.
func (s *PlaylistService) Update(ctx context.Context, playlistID string, name, description *string) (models.PlaylistView, error) {
	if name == nil && description == nil {
		return models.PlaylistView{}, apierr.BadRequest("nothing to update")
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return models.PlaylistView{}, apierr.BadRequest("name must not be empty")
	}
	if description != nil && strings.TrimSpace(*description) == "" {
		return models.PlaylistView{}, apierr.BadRequest("description must not be empty")
	}

	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed playlist id")
	}

	updated, err := s.playlists.UpdateFields(ctx, id, name, description)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistView{}, apierr.NotFound("playlist not found")
		}
		return models.PlaylistView{}, apierr.Dependency("failed to update playlist", err)
	}
	return updated.View(), nil
}

// Delete removes a playlist by id.
func (s *PlaylistService) Delete(ctx context.Context, playlistID string) error {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return apierr.BadRequest("malformed playlist id")
	}

	if err := s.playlists.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierr.NotFound("playlist not found")
		}
		return apierr.Dependency("failed to delete playlist", err)
	}
	return nil
}

// AddVideo appends a video to the playlist. Adding a video that is already
// present is a no-op.
func (s *PlaylistService) AddVideo(ctx context.Context, playlistID, videoID string) (models.PlaylistView, error) {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed playlist id")
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed video id")
	}

	exists, err := s.videos.Exists(ctx, vid)
	if err != nil {
		return models.PlaylistView{}, apierr.Internal("video lookup failed", err)
	}
	if !exists {
		return models.PlaylistView{}, apierr.NotFound("video not found")
	}

	updated, err := s.playlists.AddVideo(ctx, id, vid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistView{}, apierr.NotFound("playlist not found")
		}
		return models.PlaylistView{}, apierr.Dependency("failed to add video to playlist", err)
	}
	return updated.View(), nil
}

// RemoveVideo removes a video from the playlist. Removing a video that is not
// in the playlist is a no-op.
func (s *PlaylistService) RemoveVideo(ctx context.Context, playlistID, videoID string) (models.PlaylistView, error) {
	id, err := primitive.ObjectIDFromHex(playlistID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed playlist id")
	}
	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return models.PlaylistView{}, apierr.BadRequest("malformed video id")
	}

	updated, err := s.playlists.RemoveVideo(ctx, id, vid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.PlaylistView{}, apierr.NotFound("playlist not found")
		}
		return models.PlaylistView{}, apierr.Dependency("failed to remove video from playlist", err)
	}
	return updated.View(), nil
}
