package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidtube/backend/internal/apierr"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/telemetry"
)

// UserStore captures the persistence operations the session service needs.
type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	FindByIdentifier(ctx context.Context, identifier string) (models.User, error)
	EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, error)
	UpdateRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// FileStorage transfers an uploaded file to durable object storage and
// returns its public location.
type FileStorage interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
}

// FileUpload is an inbound multipart file handed to the service by the HTTP
// boundary.
type FileUpload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// RegisterInput carries the fields required to create an account. Avatar is
// mandatory, CoverImage optional.
type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *FileUpload
	CoverImage *FileUpload
}

// Service implements the credential and session lifecycle: registration,
// login, logout, refresh token rotation, and password changes.
type Service struct {
	users   UserStore
	files   FileStorage
	tokens  *TokenManager
	nowFunc func() time.Time
}

// NewService wires the session service to its collaborators.
func NewService(users UserStore, files FileStorage, tokens *TokenManager) *Service {
	if users == nil || tokens == nil {
		panic("auth: user store and token manager must not be nil")
	}
	return &Service{users: users, files: files, tokens: tokens}
}

// Register validates input, uploads the avatar (and optional cover image),
// and creates the account. The returned view excludes password and refresh
// token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.UserView, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	username := strings.TrimSpace(strings.ToLower(in.Username))
	password := in.Password

	if fullName == "" || email == "" || username == "" || password == "" {
		return models.UserView{}, apierr.BadRequest("all fields are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return models.UserView{}, apierr.BadRequest("invalid email address")
	}
	if in.Avatar == nil || in.Avatar.Reader == nil {
		return models.UserView{}, apierr.BadRequest("avatar is required")
	}

	taken, err := s.users.EmailOrUsernameTaken(ctx, email, username)
	if err != nil {
		return models.UserView{}, apierr.Internal("unable to verify existing accounts", err)
	}
	if taken {
		return models.UserView{}, apierr.Conflict("user with this email or username already exists")
	}

	avatarURL, err := s.upload(ctx, "avatars", in.Avatar)
	if err != nil {
		return models.UserView{}, apierr.Dependency("avatar upload failed", err)
	}

	// A failed cover upload does not abort registration; the cover stays empty.
	coverURL := ""
	if in.CoverImage != nil && in.CoverImage.Reader != nil {
		coverURL, err = s.upload(ctx, "covers", in.CoverImage)
		if err != nil {
			logging.FromContext(ctx).Warn("cover image upload failed", "username", username, "error", err)
			coverURL = ""
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.UserView{}, apierr.Internal("failed to secure password", err)
	}

	now := s.now()
	user := models.User{
		Username:   username,
		Email:      email,
		FullName:   fullName,
		Password:   string(hashed),
		Avatar:     avatarURL,
		CoverImage: coverURL,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return models.UserView{}, apierr.Conflict("user with this email or username already exists")
		}
		return models.UserView{}, apierr.Internal("failed to create user", err)
	}

	return created.View(), nil
}

// Login authenticates by email or username and issues a fresh token pair.
// The issued refresh token replaces whatever was stored before: one session
// per user.
func (s *Service) Login(ctx context.Context, identifier, password string) (models.UserView, models.SessionTokens, error) {
	identifier = strings.TrimSpace(strings.ToLower(identifier))
	if identifier == "" || password == "" {
		return models.UserView{}, models.SessionTokens{}, apierr.BadRequest("identifier and password are required")
	}

	user, err := s.users.FindByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.UserView{}, models.SessionTokens{}, apierr.NotFound("user not found")
		}
		return models.UserView{}, models.SessionTokens{}, apierr.Internal("user lookup failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return models.UserView{}, models.SessionTokens{}, apierr.Unauthorized("invalid credentials")
	}

	tokens, err := s.rotate(ctx, user)
	if err != nil {
		return models.UserView{}, models.SessionTokens{}, err
	}

	return user.View(), tokens, nil
}

// Logout clears the stored refresh token so no refresh can succeed until the
// next login. Calling it repeatedly is harmless.
func (s *Service) Logout(ctx context.Context, userID string) error {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apierr.BadRequest("malformed user id")
	}

	if err := s.users.UpdateRefreshToken(ctx, id, ""); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return apierr.Internal("failed to clear session", err)
	}
	return nil
}

// Refresh exchanges a valid, current refresh token for a new pair. A token
// that was already superseded is rejected even if its expiry has not passed;
// this is the replay protection of the single-session model.
func (s *Service) Refresh(ctx context.Context, presented string) (models.SessionTokens, error) {
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return models.SessionTokens{}, apierr.Unauthorized("refresh token is required")
	}

	userID, err := s.tokens.VerifyRefresh(presented)
	if err != nil {
		return models.SessionTokens{}, apierr.Unauthorized("invalid refresh token")
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.SessionTokens{}, apierr.Unauthorized("invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.SessionTokens{}, apierr.Unauthorized("invalid refresh token")
		}
		return models.SessionTokens{}, apierr.Internal("user lookup failed", err)
	}

	if user.RefreshToken == "" || user.RefreshToken != presented {
		return models.SessionTokens{}, apierr.Unauthorized("refresh token is expired or used")
	}

	return s.rotate(ctx, user)
}

// ChangePassword verifies the old password and replaces the stored hash. The
// active refresh token is left untouched.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return apierr.BadRequest("new password is required")
	}

	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apierr.BadRequest("malformed user id")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apierr.NotFound("user not found")
		}
		return apierr.Internal("user lookup failed", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return apierr.Unauthorized("old password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apierr.Internal("failed to secure password", err)
	}

	if err := s.users.UpdatePassword(ctx, id, string(hashed)); err != nil {
		return apierr.Internal("failed to update password", err)
	}
	return nil
}

// CurrentUser returns the sanitized view of an authenticated user.
func (s *Service) CurrentUser(ctx context.Context, userID string) (models.UserView, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.UserView{}, apierr.BadRequest("malformed user id")
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.UserView{}, apierr.NotFound("user not found")
		}
		return models.UserView{}, apierr.Internal("user lookup failed", err)
	}
	return user.View(), nil
}

// rotate issues a new token pair and persists the refresh token, overwriting
// any previously stored value.
func (s *Service) rotate(ctx context.Context, user models.User) (models.SessionTokens, error) {
	tokens, err := s.tokens.Issue(user)
	if err != nil {
		return models.SessionTokens{}, apierr.Internal("failed to issue tokens", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, user.ID, tokens.RefreshToken); err != nil {
		return models.SessionTokens{}, apierr.Internal("failed to persist session", err)
	}

	if telemetry.SessionsIssued != nil {
		telemetry.SessionsIssued.Inc()
	}
	return tokens, nil
}

func (s *Service) upload(ctx context.Context, prefix string, file *FileUpload) (string, error) {
	if s.files == nil {
		return "", errors.New("file storage unavailable")
	}
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), path.Ext(file.Name))
	return s.files.Save(ctx, key, file.Reader, file.ContentType)
}

func (s *Service) now() time.Time {
	if s.nowFunc != nil {
		return s.nowFunc()
	}
	return time.Now().UTC()
}
