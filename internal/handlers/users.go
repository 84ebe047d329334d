package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/models"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const maxUploadMemory = 32 << 20

// UserHandler implements account, session, and profile endpoints.
type UserHandler struct {
	Sessions SessionService
	Views    ViewService
	Limiter  RateLimiter
}

// Register handles POST /api/v1/users/register. The payload is multipart:
// text fields plus an avatar file (required) and a coverImage file (optional).
func (h UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "register") {
		respondData(ctx, w, http.StatusTooManyRequests, nil, "too many registration attempts")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		logger.Warn("invalid register payload", "error", err)
		respondError(ctx, w, apierr.BadRequest("multipart form data is required"))
		return
	}

	input := auth.RegisterInput{
		FullName: r.FormValue("fullname"),
		Email:    r.FormValue("email"),
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}

	avatar, avatarClose := formUpload(r, "avatar")
	if avatarClose != nil {
		defer avatarClose()
	}
	input.Avatar = avatar

	cover, coverClose := formUpload(r, "coverImage")
	if coverClose != nil {
		defer coverClose()
	}
	input.CoverImage = cover

	user, err := h.Sessions.Register(ctx, input)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	logger.Info("user registered", "userId", user.ID, "username", user.Username)
	respondData(ctx, w, http.StatusCreated, user, "user registered successfully")
}

// Login handles POST /api/v1/users/login. Callers may identify themselves by
// email or username; either JSON field is accepted.
func (h UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if !allowRequest(h.Limiter, r, "login") {
		respondData(ctx, w, http.StatusTooManyRequests, nil, "too many login attempts")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login payload", "error", err)
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	identifier := strings.TrimSpace(req.Email)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Username)
	}

	user, tokens, err := h.Sessions.Login(ctx, identifier, req.Password)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	logger.Info("user logged in", "userId", user.ID)
	respondData(ctx, w, http.StatusOK, loginResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, "user logged in successfully")
}

// Logout handles POST /api/v1/users/logout. It invalidates the stored refresh
// token and clears the session cookies.
func (h UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	if err := h.Sessions.Logout(ctx, user.ID.Hex()); err != nil {
		respondError(ctx, w, err)
		return
	}

	clearSessionCookies(w)
	respondData(ctx, w, http.StatusOK, nil, "user logged out")
}

// RefreshToken handles POST /api/v1/users/refresh-token. The refresh token is
// read from the cookie or, failing that, the JSON body.
func (h UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	token := ""
	if cookie, err := r.Cookie("refreshToken"); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			token = strings.TrimSpace(req.RefreshToken)
		}
	}
	if token == "" {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	tokens, err := h.Sessions.Refresh(ctx, token)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	setSessionCookies(w, tokens)
	logger.Info("session refreshed")
	respondData(ctx, w, http.StatusOK, tokens, "access token refreshed")
}

// ChangePassword handles POST /api/v1/users/change-password.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, apierr.BadRequest("invalid request body"))
		return
	}

	if err := h.Sessions.ChangePassword(ctx, user.ID.Hex(), req.OldPassword, req.NewPassword); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "password changed successfully")
}

// Current handles GET /api/v1/users/current.
func (h UserHandler) Current(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	view, err := h.Sessions.CurrentUser(ctx, user.ID.Hex())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, view, "current user fetched successfully")
}

// Channel handles GET /api/v1/users/channel/{username}.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	username := chi.URLParam(r, "username")
	profile, err := h.Views.ChannelProfile(ctx, username, user.ID.Hex())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, profile, "channel profile fetched successfully")
}

// History handles GET /api/v1/users/history.
func (h UserHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	videos, err := h.Views.WatchHistory(ctx, user.ID.Hex())
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, videos, "watch history fetched successfully")
}

// RecordWatch handles POST /api/v1/users/history/{videoId}.
func (h UserHandler) RecordWatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		respondError(ctx, w, apierr.Unauthorized("unauthorized request"))
		return
	}

	videoID := chi.URLParam(r, "videoId")
	if err := h.Views.RecordWatch(ctx, user.ID.Hex(), videoID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondData(ctx, w, http.StatusOK, nil, "watch recorded")
}

func formUpload(r *http.Request, field string) (*auth.FileUpload, func()) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, nil
	}
	return &auth.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Reader:      file,
	}, closeUpload(file)
}

func closeUpload(file multipart.File) func() {
	return func() { _ = file.Close() }
}

func setSessionCookies(w http.ResponseWriter, tokens models.SessionTokens) {
	http.SetCookie(w, sessionCookie("accessToken", tokens.AccessToken, tokens.AccessExpiresAt))
	http.SetCookie(w, sessionCookie("refreshToken", tokens.RefreshToken, tokens.RefreshExpiresAt))
}

func clearSessionCookies(w http.ResponseWriter) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, sessionCookie("accessToken", "", expired))
	http.SetCookie(w, sessionCookie("refreshToken", "", expired))
}

func sessionCookie(name, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.UserView `json:"user"`
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
