package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/models"
)

// MongoPlaylistRepository provides MongoDB-backed persistence for playlists.
type MongoPlaylistRepository struct {
	playlists *mongo.Collection
}

// NewMongoPlaylistRepository constructs a playlist repository backed by MongoDB.
func NewMongoPlaylistRepository(db *mongo.Database) *MongoPlaylistRepository {
	return &MongoPlaylistRepository{playlists: db.Collection(playlistsCollection)}
}

// Insert persists a new playlist.
func (r *MongoPlaylistRepository) Insert(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now
	if playlist.Videos == nil {
		playlist.Videos = []primitive.ObjectID{}
	}

	res, err := r.playlists.InsertOne(ctx, playlist)
	if err != nil {
		return models.Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	playlist.ID = res.InsertedID.(primitive.ObjectID)
	return playlist, nil
}

// FindByID fetches a playlist by object id.
func (r *MongoPlaylistRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Playlist, error) {
	var playlist models.Playlist
	if err := r.playlists.FindOne(ctx, bson.M{"_id": id}).Decode(&playlist); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("select playlist: %w", err)
	}
	return playlist, nil
}

// UpdateFields applies a partial replacement of name and/or description and
// returns the updated document.
func (r *MongoPlaylistRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, name, description *string) (models.Playlist, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != nil {
		set["name"] = *name
	}
	if description != nil {
		set["description"] = *description
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := r.playlists.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	return playlist, nil
}

// Delete removes a playlist by id.
func (r *MongoPlaylistRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.playlists.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo appends a video reference unless it is already present.
func (r *MongoPlaylistRepository) AddVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	update := bson.M{
		"$addToSet": bson.M{"videos": videoID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := r.playlists.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("add video to playlist: %w", err)
	}
	return playlist, nil
}

// RemoveVideo removes a video reference; absent references are a no-op.
func (r *MongoPlaylistRepository) RemoveVideo(ctx context.Context, id, videoID primitive.ObjectID) (models.Playlist, error) {
	update := bson.M{
		"$pull": bson.M{"videos": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := r.playlists.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&playlist)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Playlist{}, ErrNotFound
		}
		return models.Playlist{}, fmt.Errorf("remove video from playlist: %w", err)
	}
	return playlist, nil
}
