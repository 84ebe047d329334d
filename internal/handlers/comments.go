package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
)

// CommentHandler implements comment endpoints under /api/v1/comments.
type CommentHandler struct {
	Comments CommentService
	Views    ViewService
}

// ListForVideo handles GET /api/v1/comments/{videoId}?page=&limit=.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	videoID := chi.URLParam(r, "videoId")
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")

	result, err := h.Views.VideoComments(ctx, videoID, page, limit)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, result, "comments fetched successfully")
}

// Add handles POST /api/v1/comments/{videoId}.
func (h CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	videoID := chi.URLParam(r, "videoId")
	comment, err := h.Comments.Add(ctx, videoID, user.ID.Hex(), req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logging.FromContext(ctx).Info("comment added", "commentId", comment.ID, "videoId", videoID)
	respondData(ctx, w, http.StatusCreated, comment, "comment added successfully")
}

// Update handles PATCH /api/v1/comments/c/{commentId}.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	commentID := chi.URLParam(r, "commentId")
	comment, err := h.Comments.Update(ctx, commentID, req.Content)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, comment, "comment updated successfully")
}

// Delete handles DELETE /api/v1/comments/c/{commentId}.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := middleware.UserFromContext(ctx); !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	commentID := chi.URLParam(r, "commentId")
	if err := h.Comments.Delete(ctx, commentID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "comment deleted successfully")
}

func queryInt(r *http.Request, name string) int64 {
	value, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return value
}

type commentRequest struct {
	Content string `json:"content"`
}
