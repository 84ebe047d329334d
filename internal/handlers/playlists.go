package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
)

// PlaylistHandler implements playlist endpoints under /api/v1/playlists.
type PlaylistHandler struct {
	Playlists PlaylistService
}

// Create handles POST /api/v1/playlists.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	playlist, err := h.Playlists.Create(ctx, user.ID.Hex(), req.Name, req.Description)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("playlist created", "playlistId", playlist.ID)
	respondData(ctx, w, http.StatusCreated, playlist, "playlist created successfully")
}

// Get handles GET /api/v1/playlists/{playlistId}. Playlists are readable
// without a session.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	playlist, err := h.Playlists.Get(ctx, chi.URLParam(r, "playlistId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist fetched successfully")
}

// Update handles PATCH /api/v1/playlists/{playlistId}. Name and description
// are each optional; at least one must be present.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	playlist, err := h.Playlists.Update(ctx, chi.URLParam(r, "playlistId"), req.Name, req.Description)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "playlist updated successfully")
}

// Delete handles DELETE /api/v1/playlists/{playlistId}.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	if err := h.Playlists.Delete(ctx, chi.URLParam(r, "playlistId")); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "playlist deleted successfully")
}

// AddVideo handles PATCH /api/v1/playlists/add/{videoId}/{playlistId}.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	playlist, err := h.Playlists.AddVideo(ctx, chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "video added to playlist")
}

// RemoveVideo handles PATCH /api/v1/playlists/remove/{videoId}/{playlistId}.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	playlist, err := h.Playlists.RemoveVideo(ctx, chi.URLParam(r, "playlistId"), chi.URLParam(r, "videoId"))
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, playlist, "video removed from playlist")
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}
