// Package content implements entity CRUD for comments and playlists: thin
// validation wrappers over persistence.
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

// CommentStore captures comment persistence.
type CommentStore interface {
	Insert(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// VideoReader checks video existence before a comment is attached.
type VideoReader interface {
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// CommentService manages comment create/read/update/delete.
//
// Update and Delete intentionally perform no ownership check: any caller
// holding a valid comment id may mutate it. That matches the permissive
// behavior this service has always had.
type CommentService struct {
	comments CommentStore
	videos   VideoReader
}

// NewCommentService wires the comment service to its stores.
func NewCommentService(comments CommentStore, videos VideoReader) *CommentService {
	return &CommentService{comments: comments, videos: videos}
}

// Add creates a comment on an existing video for the given owner.
func (s *CommentService) Add(ctx context.Context, videoID, ownerID, content string) (models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommentView{}, apierr.BadRequest("content is required and should not be empty")
	}

	vid, err := primitive.ObjectIDFromHex(videoID)
	if err != nil {
		return models.CommentView{}, apierr.BadRequest("malformed video id")
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return models.CommentView{}, apierr.BadRequest("malformed user id")
	}

	exists, err := s.videos.Exists(ctx, vid)
	if err != nil {
		return models.CommentView{}, apierr.Internal("video lookup failed", err)
	}
	if !exists {
		return models.CommentView{}, apierr.NotFound("video not found")
	}

	created, err := s.comments.Insert(ctx, models.Comment{
		Content: content,
		Video:   vid,
		Owner:   owner,
	})
	if err != nil {
		return models.CommentView{}, apierr.Dependency("failed to create comment", err)
	}
	return created.View(), nil
}

// Get returns a single comment by id.
func (s *CommentService) Get(ctx context.Context, commentID string) (models.CommentView, error) {
	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return models.CommentView{}, apierr.BadRequest("malformed comment id")
	}

	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.CommentView{}, apierr.NotFound("comment not found")
		}
		return models.CommentView{}, apierr.Internal("comment lookup failed", err)
	}
	return comment.View(), nil
}

// Update replaces a comment's content and returns the post-update view.
func (s *CommentService) Update(ctx context.Context, commentID, content string) (models.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommentView{}, apierr.BadRequest("content is required and should not be empty")
	}

	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return models.CommentView{}, apierr.BadRequest("malformed comment id")
	}

	updated, err := s.comments.UpdateContent(ctx, id, content)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.CommentView{}, apierr.NotFound("comment not found")
		}
		return models.CommentView{}, apierr.Dependency("failed to update comment", err)
	}
	return updated.View(), nil
}

// Delete removes a comment by id.
func (s *CommentService) Delete(ctx context.Context, commentID string) error {
	id, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return apierr.BadRequest("malformed comment id")
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierr.NotFound("comment not found")
		}
		return apierr.Dependency("failed to delete comment", err)
	}
	return nil
}
