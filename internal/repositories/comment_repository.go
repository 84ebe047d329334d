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

// MongoCommentRepository provides MongoDB-backed persistence for comments,
// including the joined comment page used by the views component.
type MongoCommentRepository struct {
	comments *mongo.Collection
}

// NewMongoCommentRepository constructs a comment repository backed by MongoDB.
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{comments: db.Collection(commentsCollection)}
}

// Insert persists a new comment.
func (r *MongoCommentRepository) Insert(ctx context.Context, comment models.Comment) (models.Comment, error) {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := r.comments.InsertOne(ctx, comment)
	if err != nil {
		return models.Comment{}, fmt.Errorf("insert comment: %w", err)
	}
	comment.ID = res.InsertedID.(primitive.ObjectID)
	return comment, nil
}

// FindByID fetches a comment by object id.
func (r *MongoCommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error) {
	var comment models.Comment
	if err := r.comments.FindOne(ctx, bson.M{"_id": id}).Decode(&comment); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("select comment: %w", err)
	}
	return comment, nil
}

// UpdateContent replaces a comment's content and returns the updated document.
func (r *MongoCommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (models.Comment, error) {
	update := bson.M{"$set": bson.M{"content": content, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var comment models.Comment
	err := r.comments.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Comment{}, ErrNotFound
		}
		return models.Comment{}, fmt.Errorf("update comment: %w", err)
	}
	return comment, nil
}

// Delete removes a comment by id.
func (r *MongoCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.comments.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PageForVideo returns one window of a video's comments with each owner
// collapsed to a single embedded summary. No sort stage: insertion order,
// unspecified under concurrent writes.
func (r *MongoCommentRepository) PageForVideo(ctx context.Context, videoID primitive.ObjectID, skip, limit int64) ([]models.CommentView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"video": videoID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "owner",
			"foreignField": "_id",
			"as":           "owner",
			"pipeline":     mongo.Pipeline{ownerSummaryProjection},
		}}},
		// The foreign-key join yields an array; the relation is one-to-one,
		// so collapse it to a single object (or drop the field when empty).
		{{Key: "$addFields", Value: bson.M{
			"owner": bson.M{"$first": "$owner"},
		}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"_id":       bson.M{"$toString": "$_id"},
			"content":   1,
			"video":     bson.M{"$toString": "$video"},
			"owner":     1,
			"createdAt": 1,
			"updatedAt": 1,
		}}},
	}

	cur, err := r.comments.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate comments: %w", err)
	}
	defer cur.Close(ctx)

	var comments []models.CommentView
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}

// CountForVideo counts all comments for the video, ignoring pagination.
func (r *MongoCommentRepository) CountForVideo(ctx context.Context, videoID primitive.ObjectID) (int64, error) {
	count, err := r.comments.CountDocuments(ctx, bson.M{"video": videoID})
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
