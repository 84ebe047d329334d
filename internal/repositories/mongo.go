package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the Mongo repositories.
const (
	usersCollection         = "users"
	videosCollection        = "videos"
	commentsCollection      = "comments"
	playlistsCollection     = "playlists"
	subscriptionsCollection = "subscriptions"
)

// ownerSummaryProjection is the fixed field set a joined one-to-one owner is
// reduced to.
var ownerSummaryProjection = bson.D{
	{Key: "$project", Value: bson.M{
		"_id":      0,
		"fullname": 1,
		"username": 1,
		"avatar":   1,
	}},
}

// EnsureIndexes creates the indexes the service relies on. Uniqueness of
// username and email is enforced here, not in application code.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection(usersCollection)
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	comments := db.Collection(commentsCollection)
	if _, err := comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "video", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create comment index: %w", err)
	}

	subscriptions := db.Collection(subscriptionsCollection)
	if _, err := subscriptions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("create subscription index: %w", err)
	}

	playlists := db.Collection(playlistsCollection)
	if _, err := playlists.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}},
	}); err != nil {
		return fmt.Errorf("create playlist index: %w", err)
	}

	return nil
}
