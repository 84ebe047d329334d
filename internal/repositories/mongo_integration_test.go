package repositories

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/backend/internal/models"
)

// testDatabase connects to the Mongo instance named by VIDTUBE_TEST_MONGO_URI
// and returns a throwaway database. Tests are skipped when the variable is
// unset so the suite stays runnable without infrastructure.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv("VIDTUBE_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("VIDTUBE_TEST_MONGO_URI not set; skipping mongo integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}

	db := client.Database(fmt.Sprintf("vidtube_test_%d", time.Now().UnixNano()))

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(cleanupCtx)
		_ = client.Disconnect(cleanupCtx)
	})

	if err := EnsureIndexes(ctx, db); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *mongo.Database, username string) models.User {
	t.Helper()
	repo := NewMongoUserRepository(db)
	now := time.Now().UTC().Truncate(time.Millisecond)
	user, err := repo.Create(context.Background(), models.User{
		Username:  username,
		Email:     username + "@example.com",
		FullName:  "User " + username,
		Password:  "hashed",
		Avatar:    "https://cdn.example/avatars/" + username,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedVideo(t *testing.T, db *mongo.Database, owner primitive.ObjectID, title string) models.Video {
	t.Helper()
	video := models.Video{
		Owner:     owner,
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
	res, err := db.Collection(videosCollection).InsertOne(context.Background(), video)
	if err != nil {
		t.Fatalf("seed video %s: %v", title, err)
	}
	video.ID = res.InsertedID.(primitive.ObjectID)
	return video
}

func seedSubscription(t *testing.T, db *mongo.Database, subscriber, channel primitive.ObjectID) {
	t.Helper()
	_, err := db.Collection(subscriptionsCollection).InsertOne(context.Background(), models.Subscription{
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
}

func TestUserRepositoryUniqueness(t *testing.T) {
	db := testDatabase(t)
	repo := NewMongoUserRepository(db)
	seedUser(t, db, "alice")

	_, err := repo.Create(context.Background(), models.User{
		Username: "alice",
		Email:    "different@example.com",
		FullName: "Second Alice",
		Password: "hashed",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate username, got %v", err)
	}
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db := testDatabase(t)
	repo := NewMongoUserRepository(db)
	user := seedUser(t, db, "bob")

	if err := repo.UpdateRefreshToken(context.Background(), user.ID, "token-1"); err != nil {
		t.Fatalf("set refresh token: %v", err)
	}
	got, err := repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.RefreshToken != "token-1" {
		t.Errorf("expected stored token, got %q", got.RefreshToken)
	}

	if err := repo.UpdateRefreshToken(context.Background(), user.ID, ""); err != nil {
		t.Fatalf("clear refresh token: %v", err)
	}
	got, err = repo.FindByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.RefreshToken != "" {
		t.Errorf("expected cleared token, got %q", got.RefreshToken)
	}

	if err := repo.UpdateRefreshToken(context.Background(), primitive.NewObjectID(), "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestChannelProfileAggregation(t *testing.T) {
	db := testDatabase(t)
	repo := NewMongoUserRepository(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")

	seedSubscription(t, db, bob.ID, alice.ID)
	seedSubscription(t, db, carol.ID, alice.ID)
	seedSubscription(t, db, alice.ID, bob.ID)

	profile, err := repo.ChannelProfile(context.Background(), "ALICE", bob.ID)
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.SubscribersCount != 2 {
		t.Errorf("expected 2 subscribers, got %d", profile.SubscribersCount)
	}
	if profile.SubscribedToCount != 1 {
		t.Errorf("expected 1 subscribed-to, got %d", profile.SubscribedToCount)
	}
	if !profile.IsSubscribed {
		t.Error("expected isSubscribed true for bob")
	}

	profile, err = repo.ChannelProfile(context.Background(), "alice", primitive.NewObjectID())
	if err != nil {
		t.Fatalf("channel profile: %v", err)
	}
	if profile.IsSubscribed {
		t.Error("expected isSubscribed false for a stranger")
	}

	if _, err := repo.ChannelProfile(context.Background(), "nobody", bob.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCommentPageAggregation(t *testing.T) {
	db := testDatabase(t)
	comments := NewMongoCommentRepository(db)

	owner := seedUser(t, db, "dave")
	video := seedVideo(t, db, owner.ID, "a video")

	for i := 1; i <= 5; i++ {
		if _, err := comments.Insert(context.Background(), models.Comment{
			Content: fmt.Sprintf("comment %d", i),
			Video:   video.ID,
			Owner:   owner.ID,
		}); err != nil {
			t.Fatalf("insert comment %d: %v", i, err)
		}
	}

	page, err := comments.PageForVideo(context.Background(), video.ID, 2, 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(page))
	}
	if page[0].Content != "comment 3" || page[1].Content != "comment 4" {
		t.Errorf("wrong window: %q, %q", page[0].Content, page[1].Content)
	}
	for _, c := range page {
		if c.Owner == nil {
			t.Fatal("owner should be a single embedded object")
		}
		if c.Owner.Username != "dave" {
			t.Errorf("unexpected owner: %+v", c.Owner)
		}
	}

	total, err := comments.CountForVideo(context.Background(), video.ID)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 5 {
		t.Errorf("expected 5 comments total, got %d", total)
	}
}

func TestCommentPageOrphanedOwner(t *testing.T) {
	db := testDatabase(t)
	comments := NewMongoCommentRepository(db)

	owner := seedUser(t, db, "erin")
	video := seedVideo(t, db, owner.ID, "another video")

	if _, err := comments.Insert(context.Background(), models.Comment{
		Content: "orphan",
		Video:   video.ID,
		Owner:   primitive.NewObjectID(), // no such user
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	page, err := comments.PageForVideo(context.Background(), video.ID, 0, 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(page))
	}
	if page[0].Owner != nil {
		t.Errorf("expected nil owner for orphaned join, got %+v", page[0].Owner)
	}
}

func TestWatchHistoryResolution(t *testing.T) {
	db := testDatabase(t)
	users := NewMongoUserRepository(db)
	videos := NewMongoVideoRepository(db)

	owner := seedUser(t, db, "frank")
	watcher := seedUser(t, db, "grace")

	v1 := seedVideo(t, db, owner.ID, "first")
	v2 := seedVideo(t, db, owner.ID, "second")

	for _, id := range []primitive.ObjectID{v2.ID, v1.ID} {
		if err := users.AppendWatchHistory(context.Background(), watcher.ID, id); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	ids, err := users.WatchHistoryIDs(context.Background(), watcher.ID)
	if err != nil {
		t.Fatalf("history ids: %v", err)
	}
	if len(ids) != 2 || ids[0] != v2.ID || ids[1] != v1.ID {
		t.Fatalf("unexpected history order: %v", ids)
	}

	resolved, err := videos.ResolveWatchedVideos(context.Background(), ids)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 2 {
		t.Fatalf("expected 2 videos, got %d", len(resolved))
	}
	for _, v := range resolved {
		if v.Owner == nil || v.Owner.Username != "frank" {
			t.Errorf("expected embedded owner summary, got %+v", v.Owner)
		}
	}
}

func TestPlaylistRepository(t *testing.T) {
	db := testDatabase(t)
	playlists := NewMongoPlaylistRepository(db)

	owner := seedUser(t, db, "heidi")
	video := seedVideo(t, db, owner.ID, "clip")

	created, err := playlists.Insert(context.Background(), models.Playlist{
		Name:        "Favorites",
		Description: "the good ones",
		Owner:       owner.ID,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	withVideo, err := playlists.AddVideo(context.Background(), created.ID, video.ID)
	if err != nil {
		t.Fatalf("add video: %v", err)
	}
	if len(withVideo.Videos) != 1 {
		t.Fatalf("expected 1 video, got %d", len(withVideo.Videos))
	}

	// $addToSet keeps membership unique.
	again, err := playlists.AddVideo(context.Background(), created.ID, video.ID)
	if err != nil {
		t.Fatalf("re-add video: %v", err)
	}
	if len(again.Videos) != 1 {
		t.Errorf("expected duplicate add to be a no-op, got %d", len(again.Videos))
	}

	name := "Renamed"
	updated, err := playlists.UpdateFields(context.Background(), created.ID, &name, nil)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Renamed" || updated.Description != "the good ones" {
		t.Errorf("partial update wrong: %+v", updated)
	}

	if err := playlists.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := playlists.FindByID(context.Background(), created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
