// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/store"

	"github.com/google/uuid"
)

// PostRepository defines the interface for local post operations
type PostRepository interface {
	Create(ctx context.Context, content, author string) (*models.Post, error)
	Delete(ctx context.Context, id models.PostID) error
	SetDraft(ctx context.Context, id models.PostID, isDraft bool) error
	Transition(ctx context.Context, id models.PostID, action models.PostAction) (*models.Post, error)
	BulkDelete(ctx context.Context, ids []models.PostID) (int, error)
	Get(ctx context.Context, id models.PostID) (*models.Post, error)
	List(ctx context.Context) []models.Post
	ListPublished(ctx context.Context) []models.Post
	ListDrafts(ctx context.Context) []models.Post
}

// postRepository keeps the whole collection in memory and writes it back in
// full after every mutation.
type postRepository struct {
	mu     sync.Mutex
	store  *store.Store
	posts  []models.Post
	logger *observability.RepoLogger
	newID  func() models.PostID
}

// NewPostRepository loads the posts collection once from s.
func NewPostRepository(ctx context.Context, s *store.Store) PostRepository {
	return &postRepository{
		store:  s,
		posts:  store.ReadList[models.Post](ctx, s, store.KeyPosts),
		logger: observability.NewRepoLogger(store.KeyPosts),
		newID:  func() models.PostID { return models.PostID(uuid.NewString()) },
	}
}

func (r *postRepository) Create(ctx context.Context, content, author string) (_ *models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyPosts, "Create")
	defer func() { observability.EndSpan(span, err) }()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("post content cannot be empty")
	}
	if strings.TrimSpace(author) == "" {
		return nil, models.NewUnauthenticatedError("sign in to publish a post")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post := models.Post{
		ID:       r.newID(),
		Username: author,
		Content:  content,
		IsDraft:  false,
	}
	next := make([]models.Post, 0, len(r.posts)+1)
	next = append(next, post)
	next = append(next, r.posts...)

	if err := r.commit(ctx, next, "create"); err != nil {
		return nil, err
	}
	r.logger.LogCreate(ctx, map[string]any{"post_id": post.ID, "username": author})
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id models.PostID) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyPosts, "Delete")
	defer func() { observability.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil
	}
	next := slices.Delete(slices.Clone(r.posts), idx, idx+1)
	if err := r.commit(ctx, next, "delete"); err != nil {
		return err
	}
	r.logger.LogDelete(ctx, map[string]any{"post_id": id})
	return nil
}

func (r *postRepository) SetDraft(ctx context.Context, id models.PostID, isDraft bool) (err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyPosts, "SetDraft")
	defer func() { observability.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 || r.posts[idx].IsDraft == isDraft {
		return nil
	}
	_, err = r.setDraftAt(ctx, idx, isDraft)
	return err
}

func (r *postRepository) Transition(ctx context.Context, id models.PostID, action models.PostAction) (_ *models.Post, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyPosts, "Transition")
	defer func() { observability.EndSpan(span, err) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	to, changed, err := models.Transition(r.posts[idx].State(), action)
	if err != nil {
		return nil, err
	}
	if !changed {
		post := r.posts[idx]
		return &post, nil
	}
	return r.setDraftAt(ctx, idx, to == models.StateDraft)
}

func (r *postRepository) BulkDelete(ctx context.Context, ids []models.PostID) (_ int, err error) {
	ctx, span := observability.StartRepositorySpan(ctx, store.KeyPosts, "BulkDelete")
	defer func() { observability.EndSpan(span, err) }()

	doomed := make(map[models.PostID]struct{}, len(ids))
	for _, id := range ids {
		doomed[id] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if _, ok := doomed[p.ID]; !ok {
			next = append(next, p)
		}
	}
	removed := len(r.posts) - len(next)
	if removed == 0 {
		return 0, nil
	}
	if err := r.commit(ctx, next, "bulk_delete"); err != nil {
		return 0, err
	}
	r.logger.LogDelete(ctx, map[string]any{"requested": len(ids), "removed": removed})
	return removed, nil
}

func (r *postRepository) Get(_ context.Context, id models.PostID) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return nil, models.NewNotFoundError("Post", id)
	}
	post := r.posts[idx]
	return &post, nil
}

func (r *postRepository) List(_ context.Context) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.posts)
}

func (r *postRepository) ListPublished(_ context.Context) []models.Post {
	return r.filter(false)
}

func (r *postRepository) ListDrafts(_ context.Context) []models.Post {
	return r.filter(true)
}

func (r *postRepository) filter(isDraft bool) []models.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if p.IsDraft == isDraft {
			out = append(out, p)
		}
	}
	return out
}

// setDraftAt must be called with r.mu held.
func (r *postRepository) setDraftAt(ctx context.Context, idx int, isDraft bool) (*models.Post, error) {
	next := slices.Clone(r.posts)
	next[idx].IsDraft = isDraft
	if err := r.commit(ctx, next, "set_draft"); err != nil {
		return nil, err
	}
	r.logger.LogUpdate(ctx, map[string]any{"post_id": next[idx].ID, "is_draft": isDraft})
	post := next[idx]
	return &post, nil
}

// commit writes next and, only on success, makes it the in-memory collection.
func (r *postRepository) commit(ctx context.Context, next []models.Post, operation string) error {
	if err := store.WriteList(ctx, r.store, store.KeyPosts, next); err != nil {
		r.logger.LogError(ctx, err, operation)
		return models.NewInternalError(err)
	}
	r.posts = next
	return nil
}

func (r *postRepository) indexOf(id models.PostID) int {
	return slices.IndexFunc(r.posts, func(p models.Post) bool { return p.ID == id })
}
