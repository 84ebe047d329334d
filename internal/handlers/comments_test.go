package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/models"
)

type stubCommentService struct {
	added     models.CommentView
	addedArgs [3]string
	addErr    error
	updated   models.CommentView
	updateErr error
	deleteErr error
	deleted   []string
}

func (s *stubCommentService) Add(_ context.Context, videoID, ownerID, content string) (models.CommentView, error) {
	s.addedArgs = [3]string{videoID, ownerID, content}
	if s.addErr != nil {
		return models.CommentView{}, s.addErr
	}
	return s.added, nil
}

func (s *stubCommentService) Get(_ context.Context, commentID string) (models.CommentView, error) {
	return s.added, nil
}

func (s *stubCommentService) Update(_ context.Context, commentID, content string) (models.CommentView, error) {
	if s.updateErr != nil {
		return models.CommentView{}, s.updateErr
	}
	return s.updated, nil
}

func (s *stubCommentService) Delete(_ context.Context, commentID string) error {
	s.deleted = append(s.deleted, commentID)
	return s.deleteErr
}

func TestCommentHandlerListForVideo(t *testing.T) {
	views := &stubViewService{page: models.CommentPage{
		Comments:      []models.CommentView{{ID: "c1", Content: "first"}},
		TotalComments: 1,
		TotalPages:    1,
		Page:          1,
		Limit:         10,
	}}
	handler := CommentHandler{Views: views}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments/abc?page=1&limit=10", nil)
	req = withURLParam(req, "videoId", "abc")
	rec := httptest.NewRecorder()

	handler.ListForVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestCommentHandlerAdd(t *testing.T) {
	userID := primitive.NewObjectID()
	comments := &stubCommentService{added: models.CommentView{ID: "c1", Content: "nice video"}}
	handler := CommentHandler{Comments: comments}

	body, _ := json.Marshal(commentRequest{Content: "nice video"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/abc", bytes.NewReader(body))
	req = req.WithContext(authedContext(req.Context(), userID))
	req = withURLParam(req, "videoId", "abc")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if comments.addedArgs != [3]string{"abc", userID.Hex(), "nice video"} {
		t.Errorf("unexpected args: %v", comments.addedArgs)
	}
}

func TestCommentHandlerAddUnknownVideo(t *testing.T) {
	comments := &stubCommentService{addErr: apierr.NotFound("video not found")}
	handler := CommentHandler{Comments: comments}

	body, _ := json.Marshal(commentRequest{Content: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/missing", bytes.NewReader(body))
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "videoId", "missing")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCommentHandlerUpdate(t *testing.T) {
	comments := &stubCommentService{updated: models.CommentView{ID: "c1", Content: "edited"}}
	handler := CommentHandler{Comments: comments}

	body, _ := json.Marshal(commentRequest{Content: "edited"})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/comments/c/c1", bytes.NewReader(body))
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "commentId", "c1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCommentHandlerDelete(t *testing.T) {
	comments := &stubCommentService{}
	handler := CommentHandler{Comments: comments}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/comments/c/c1", nil)
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "commentId", "c1")
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(comments.deleted) != 1 || comments.deleted[0] != "c1" {
		t.Errorf("expected delete for c1, got %v", comments.deleted)
	}
}

func TestCommentHandlerRejectsInvalidBody(t *testing.T) {
	handler := CommentHandler{Comments: &stubCommentService{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/abc", bytes.NewReader([]byte("not json")))
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "videoId", "abc")
	rec := httptest.NewRecorder()

	handler.Add(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
