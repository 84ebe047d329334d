package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account within the VidTube platform. The password hash
// and the currently active refresh token never leave the service; responses
// carry a UserView instead.
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	Username     string               `bson:"username"`
	Email        string               `bson:"email"`
	FullName     string               `bson:"fullname"`
	Password     string               `bson:"password"`
	Avatar       string               `bson:"avatar"`
	CoverImage   string               `bson:"coverImage,omitempty"`
	RefreshToken string               `bson:"refreshToken,omitempty"`
	WatchHistory []primitive.ObjectID `bson:"watchHistory,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

// View returns the sanitized representation of the user.
func (u User) View() UserView {
	return UserView{
		ID:         u.ID.Hex(),
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserView is the user representation returned to callers. It excludes the
// password hash and refresh token.
type UserView struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Comment is a user comment attached to a video.
type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Content   string             `bson:"content"`
	Video     primitive.ObjectID `bson:"video"`
	Owner     primitive.ObjectID `bson:"owner"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

// View returns the comment with raw owner/video references rendered as hex ids.
func (c Comment) View() CommentView {
	return CommentView{
		ID:        c.ID.Hex(),
		Content:   c.Content,
		VideoID:   c.Video.Hex(),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CommentView is a comment as returned to callers. Owner is populated by the
// aggregation views; plain CRUD reads leave it nil.
type CommentView struct {
	ID        string        `json:"id" bson:"_id"`
	Content   string        `json:"content" bson:"content"`
	VideoID   string        `json:"videoId" bson:"video"`
	Owner     *OwnerSummary `json:"owner,omitempty" bson:"owner,omitempty"`
	CreatedAt time.Time     `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt" bson:"updatedAt"`
}

// OwnerSummary is the single-object projection of a joined owning user.
// One-to-one joins always collapse to this shape or nil, never to an array.
type OwnerSummary struct {
	FullName string `json:"fullname" bson:"fullname"`
	Username string `json:"username" bson:"username"`
	Avatar   string `json:"avatar" bson:"avatar"`
}

// CommentPage is a paginated slice of a video's comments along with totals
// computed over the whole comment set for that video.
type CommentPage struct {
	Comments      []CommentView `json:"comments"`
	TotalComments int64         `json:"totalComments"`
	TotalPages    int64         `json:"totalPages"`
	Page          int64         `json:"page"`
	Limit         int64         `json:"limit"`
}

// Video is stored by the upload pipeline, which is outside this service. The
// fields here are the subset the views need.
type Video struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     primitive.ObjectID `bson:"owner"`
	Title     string             `bson:"title"`
	Thumbnail string             `bson:"thumbnail,omitempty"`
	Duration  float64            `bson:"duration,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// WatchedVideo is a watch-history entry: a video with its owner collapsed to
// a single embedded summary.
type WatchedVideo struct {
	ID        string        `json:"id" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Thumbnail string        `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Duration  float64       `json:"duration,omitempty" bson:"duration,omitempty"`
	Owner     *OwnerSummary `json:"owner,omitempty" bson:"owner,omitempty"`
}

// Playlist groups an ordered list of video references under an owner.
type Playlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Name        string               `bson:"name"`
	Description string               `bson:"description"`
	Videos      []primitive.ObjectID `bson:"videos"`
	Owner       primitive.ObjectID   `bson:"owner"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// View renders the playlist for responses.
func (p Playlist) View() PlaylistView {
	videos := make([]string, 0, len(p.Videos))
	for _, v := range p.Videos {
		videos = append(videos, v.Hex())
	}
	return PlaylistView{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Description: p.Description,
		Videos:      videos,
		OwnerID:     p.Owner.Hex(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PlaylistView is a playlist as returned to callers.
type PlaylistView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Videos      []string  `json:"videos"`
	OwnerID     string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Subscription links a subscriber to the channel (user) they follow.
type Subscription struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Subscriber primitive.ObjectID `bson:"subscriber"`
	Channel    primitive.ObjectID `bson:"channel"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// ChannelProfile is the derived channel view for a user, including
// subscription counts and whether the requesting viewer is subscribed.
type ChannelProfile struct {
	ID                string `json:"id" bson:"_id"`
	FullName          string `json:"fullname" bson:"fullname"`
	Username          string `json:"username" bson:"username"`
	Email             string `json:"email" bson:"email"`
	Avatar            string `json:"avatar" bson:"avatar"`
	CoverImage        string `json:"coverImage,omitempty" bson:"coverImage,omitempty"`
	SubscribersCount  int64  `json:"subscribersCount" bson:"subscribersCount"`
	SubscribedToCount int64  `json:"subscribedToCount" bson:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed" bson:"isSubscribed"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
