package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"scribble/internal/models"
	"scribble/internal/observability"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedRepository backs the public GET/POST /posts feed.
type FeedRepository interface {
	List(ctx context.Context) ([]models.RemotePost, error)
	Create(ctx context.Context, username, content string) (*models.RemotePost, error)
}

func newFeedPost(username, content string) (models.RemotePost, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.RemotePost{}, models.NewValidationError("post content cannot be empty")
	}
	if strings.TrimSpace(username) == "" {
		return models.RemotePost{}, models.NewValidationError("username is required")
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	return models.RemotePost{
		ID:        models.PostID(uuid.NewString()),
		Username:  username,
		Content:   content,
		Timestamp: now.Format(time.RFC3339),
		CreatedAt: now,
	}, nil
}

// memoryFeedRepository keeps the feed in a slice, newest first.
type memoryFeedRepository struct {
	mu    sync.RWMutex
	posts []models.RemotePost
}

// NewMemoryFeedRepository returns a feed seeded with posts (kept in order).
func NewMemoryFeedRepository(posts ...models.RemotePost) FeedRepository {
	return &memoryFeedRepository{posts: slices.Clone(posts)}
}

func (r *memoryFeedRepository) List(_ context.Context) ([]models.RemotePost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.RemotePost, len(r.posts))
	copy(out, r.posts)
	return out, nil
}

func (r *memoryFeedRepository) Create(_ context.Context, username, content string) (*models.RemotePost, error) {
	post, err := newFeedPost(username, content)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts = append([]models.RemotePost{post}, r.posts...)
	return &post, nil
}

const feedCollection = "posts"

type mongoFeedRepository struct {
	coll   *mongo.Collection
	logger *observability.RepoLogger
}

// NewMongoFeedRepository stores feed posts in coll.
func NewMongoFeedRepository(coll *mongo.Collection) FeedRepository {
	return &mongoFeedRepository{
		coll:   coll,
		logger: observability.NewRepoLogger(feedCollection),
	}
}

// FeedCollection returns the posts collection of db.
func FeedCollection(db *mongo.Database) *mongo.Collection {
	return db.Collection(feedCollection)
}

func (r *mongoFeedRepository) List(ctx context.Context) (_ []models.RemotePost, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, feedCollection, "List")
	defer func() { observability.EndSpan(span, err) }()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	posts := []models.RemotePost{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("posts mapping failed: %w", err)
	}
	return posts, nil
}

func (r *mongoFeedRepository) Create(ctx context.Context, username, content string) (_ *models.RemotePost, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, feedCollection, "Create")
	defer func() { observability.EndSpan(span, err) }()

	post, err := newFeedPost(username, content)
	if err != nil {
		return nil, err
	}
	if _, err := r.coll.InsertOne(ctx, post); err != nil {
		r.logger.LogError(ctx, err, "create")
		return nil, fmt.Errorf("insertion failed: %w", err)
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "username": username})
	return &post, nil
}
