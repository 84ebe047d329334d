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

type stubPlaylistService struct {
	playlist   models.PlaylistView
	createErr  error
	getErr     error
	updateErr  error
	deleteErr  error
	addArgs    [2]string
	removeArgs [2]string
}

func (s *stubPlaylistService) Create(_ context.Context, ownerID, name, description string) (models.PlaylistView, error) {
	if s.createErr != nil {
		return models.PlaylistView{}, s.createErr
	}
	return s.playlist, nil
}

func (s *stubPlaylistService) Get(_ context.Context, playlistID string) (models.PlaylistView, error) {
	if s.getErr != nil {
		return models.PlaylistView{}, s.getErr
	}
	return s.playlist, nil
}

func (s *stubPlaylistService) Update(_ context.Context, playlistID string, name, description *string) (models.PlaylistView, error) {
	if s.updateErr != nil {
		return models.PlaylistView{}, s.updateErr
	}
	return s.playlist, nil
}

func (s *stubPlaylistService) Delete(_ context.Context, playlistID string) error {
	return s.deleteErr
}

func (s *stubPlaylistService) AddVideo(_ context.Context, playlistID, videoID string) (models.PlaylistView, error) {
	s.addArgs = [2]string{playlistID, videoID}
	return s.playlist, nil
}

func (s *stubPlaylistService) RemoveVideo(_ context.Context, playlistID, videoID string) (models.PlaylistView, error) {
	s.removeArgs = [2]string{playlistID, videoID}
	return s.playlist, nil
}

func TestPlaylistHandlerCreate(t *testing.T) {
	playlists := &stubPlaylistService{playlist: models.PlaylistView{ID: "p1", Name: "Favorites"}}
	handler := PlaylistHandler{Playlists: playlists}

	body, _ := json.Marshal(createPlaylistRequest{Name: "Favorites", Description: "the good ones"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlaylistHandlerCreateValidation(t *testing.T) {
	playlists := &stubPlaylistService{createErr: apierr.BadRequest("name and description are required")}
	handler := PlaylistHandler{Playlists: playlists}

	body, _ := json.Marshal(createPlaylistRequest{Name: ""})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/playlists", bytes.NewReader(body))
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlaylistHandlerGetIsPublic(t *testing.T) {
	playlists := &stubPlaylistService{playlist: models.PlaylistView{ID: "p1"}}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/p1", nil)
	req = withURLParam(req, "playlistId", "p1")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without a session, got %d", rec.Code)
	}
}

func TestPlaylistHandlerGetNotFound(t *testing.T) {
	playlists := &stubPlaylistService{getErr: apierr.NotFound("playlist not found")}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/playlists/missing", nil)
	req = withURLParam(req, "playlistId", "missing")
	rec := httptest.NewRecorder()

	handler.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPlaylistHandlerAddVideo(t *testing.T) {
	playlists := &stubPlaylistService{playlist: models.PlaylistView{ID: "p1", Videos: []string{"v1"}}}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/add/v1/p1", nil)
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "videoId", "v1")
	req = withURLParam(req, "playlistId", "p1")
	rec := httptest.NewRecorder()

	handler.AddVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if playlists.addArgs != [2]string{"p1", "v1"} {
		t.Errorf("unexpected args: %v", playlists.addArgs)
	}
}

func TestPlaylistHandlerRemoveVideo(t *testing.T) {
	playlists := &stubPlaylistService{playlist: models.PlaylistView{ID: "p1", Videos: []string{}}}
	handler := PlaylistHandler{Playlists: playlists}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/remove/v1/p1", nil)
	req = req.WithContext(authedContext(req.Context(), primitive.NewObjectID()))
	req = withURLParam(req, "videoId", "v1")
	req = withURLParam(req, "playlistId", "p1")
	rec := httptest.NewRecorder()

	handler.RemoveVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if playlists.removeArgs != [2]string{"p1", "v1"} {
		t.Errorf("unexpected args: %v", playlists.removeArgs)
	}
}

func TestPlaylistHandlerUpdateWithoutSession(t *testing.T) {
	handler := PlaylistHandler{Playlists: &stubPlaylistService{}}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/playlists/p1", bytes.NewReader([]byte("{}")))
	req = withURLParam(req, "playlistId", "p1")
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
