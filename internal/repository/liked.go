package repository

import (
	"context"
	"slices"
	"sync"

	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/store"
)

// LikedRepository holds denormalized snapshots of liked posts.
type LikedRepository interface {
	// Like stores a snapshot of post and reports whether it was added.
	Like(ctx context.Context, post models.Post) (bool, error)
	Unlike(ctx context.Context, id models.PostID) error
	IsLiked(ctx context.Context, id models.PostID) bool
	List(ctx context.Context) []models.LikedPost
}

type likedRepository struct {
	mu     sync.Mutex
	store  *store.Store
	liked  []models.LikedPost
	logger *observability.RepoLogger
}

// NewLikedRepository loads the liked collection once from s.
func NewLikedRepository(ctx context.Context, s *store.Store) LikedRepository {
	return &likedRepository{
		store:  s,
		liked:  store.ReadList[models.LikedPost](ctx, s, store.KeyLikedPosts),
		logger: observability.NewRepoLogger(store.KeyLikedPosts),
	}
}

func (r *likedRepository) Like(ctx context.Context, post models.Post) (_ bool, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyLikedPosts, "Like")
	defer func() { observability.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(post.ID) >= 0 {
		return false, nil
	}
	next := append(slices.Clone(r.liked), post)
	if err := r.commit(ctx, next, "like"); err != nil {
		return false, err
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID})
	return true, nil
}

func (r *likedRepository) Unlike(ctx context.Context, id models.PostID) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyLikedPosts, "Unlike")
	defer func() { observability.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(r.liked), idx, idx+1)
	if err := r.commit(ctx, next, "unlike"); err != nil {
		return err
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *likedRepository) IsLiked(_ context.Context, id models.PostID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(id) >= 0
}

func (r *likedRepository) List(_ context.Context) []models.LikedPost {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.liked)
}

func (r *likedRepository) commit(ctx context.Context, next []models.LikedPost, operation string) error {
	if err := store.WriteList(ctx, r.store, store.KeyLikedPosts, next); err != nil {
		r.logger.LogError(ctx, err, operation)
		return models.NewInternalError(err)
	}
	r.liked = next
	return nil
}

func (r *likedRepository) indexOf(id models.PostID) int {
	return slices.IndexFunc(r.liked, func(p models.LikedPost) bool { return p.ID == id })
}
