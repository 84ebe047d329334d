package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/backend/internal/models"
)

// MongoVideoRepository reads the videos collection. Videos are written by the
// upload pipeline, which lives outside this service; this repository only
// needs existence checks and the watch-history resolution join.
type MongoVideoRepository struct {
	videos *mongo.Collection
}

// NewMongoVideoRepository constructs a video repository backed by MongoDB.
func NewMongoVideoRepository(db *mongo.Database) *MongoVideoRepository {
	return &MongoVideoRepository{videos: db.Collection(videosCollection)}
}

// Exists reports whether a video document exists.
func (r *MongoVideoRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.videos.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("count videos: %w", err)
	}
	return count > 0, nil
}

// ResolveWatchedVideos loads the given videos with each owner collapsed to a
// single embedded summary. Result order is whatever the join produces;
// callers reorder as needed.
func (r *MongoVideoRepository) ResolveWatchedVideos(ctx context.Context, ids []primitive.ObjectID) ([]models.WatchedVideo, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner",
			"pipeline":     mongo.Pipeline{ownerSummaryProjection},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"owner": bson.M{"$first": "$owner"},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":       bson.M{"$toString": "$_id"},
			"title":     1,
			"thumbnail": 1,
			"duration":  1,
			"owner":     1,
		}}},
	}

	cur, err := r.videos.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate watched videos: %w", err)
	}
	defer cur.Close(ctx)

	var videos []models.WatchedVideo
	if err := cur.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode watched videos: %w", err)
	}
	return videos, nil
}
