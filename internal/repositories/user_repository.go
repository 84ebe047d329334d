package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/models"
)

// MongoUserRepository provides MongoDB-backed persistence for users,
// including the subscription-joined channel profile and watch history reads.
type MongoUserRepository struct {
	users *mongo.Collection
}

// NewMongoUserRepository constructs a user repository backed by MongoDB.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{users: db.Collection(usersCollection)}
}

// Create persists a new user record.
func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, ErrConflict
		}
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

// FindByID fetches a user by object id.
func (r *MongoUserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var user models.User
	if err := r.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return user, nil
}

// FindByIdentifier fetches a user whose email or username matches the
// identifier. Identifiers are stored lowercase.
func (r *MongoUserRepository) FindByIdentifier(ctx context.Context, identifier string) (models.User, error) {
	identifier = strings.ToLower(identifier)
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}}

	var user models.User
	if err := r.users.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by identifier: %w", err)
	}
	return user, nil
}

// EmailOrUsernameTaken reports whether either unique field is already in use.
func (r *MongoUserRepository) EmailOrUsernameTaken(ctx context.Context, email, username string) (bool, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": email},
		bson.M{"username": username},
	}}
	count, err := r.users.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

// UpdateRefreshToken stores the current refresh token for the user. An empty
// token clears the field entirely.
func (r *MongoUserRepository) UpdateRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error {
	update := bson.M{
		"$set": bson.M{"refreshToken": token, "updatedAt": time.Now().UTC()},
	}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"refreshToken": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	}

	res, err := r.users.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := r.users.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"password": hash, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ChannelProfile joins the subscriptions collection twice to derive the
// channel view for a username: subscriber count, subscribed-to count, and
// whether the viewer is among the subscribers.
func (r *MongoUserRepository) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (models.ChannelProfile, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"username": strings.ToLower(username)}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "channel",
			"as":           "subscribers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         subscriptionsCollection,
			"localField":   "_id",
			"foreignField": "subscriber",
			"as":           "subscribedTo",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"subscribersCount":  bson.M{"$size": "$subscribers"},
			"subscribedToCount": bson.M{"$size": "$subscribedTo"},
			"isSubscribed":      bson.M{"$in": bson.A{viewer, "$subscribers.subscriber"}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":               bson.M{"$toString": "$_id"},
			"fullname":          1,
			"username":          1,
			"email":             1,
			"avatar":            1,
			"coverImage":        1,
			"subscribersCount":  1,
			"subscribedToCount": 1,
			"isSubscribed":      1,
		}}},
	}

	cur, err := r.users.Aggregate(ctx, pipeline)
	if err != nil {
		return models.ChannelProfile{}, fmt.Errorf("aggregate channel profile: %w", err)
	}
	defer cur.Close(ctx)

	var profiles []models.ChannelProfile
	if err := cur.All(ctx, &profiles); err != nil {
		return models.ChannelProfile{}, fmt.Errorf("decode channel profile: %w", err)
	}
	if len(profiles) == 0 {
		return models.ChannelProfile{}, ErrNotFound
	}
	return profiles[0], nil
}

// WatchHistoryIDs returns the user's stored watch history references in
// stored order.
func (r *MongoUserRepository) WatchHistoryIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	var doc struct {
		WatchHistory []primitive.ObjectID `bson:"watchHistory"`
	}
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select watch history: %w", err)
	}
	return doc.WatchHistory, nil
}

// AppendWatchHistory records a watched video at the end of the user's history.
func (r *MongoUserRepository) AppendWatchHistory(ctx context.Context, userID, videoID primitive.ObjectID) error {
	res, err := r.users.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{"watchHistory": videoID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("append watch history: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
