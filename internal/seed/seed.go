// Package seed creates demo data for development: a top-creators file, feed
// posts and local posts. Not for production use.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data the Seeder creates.
type Options struct {
	Creators   int
	FeedPosts  int
	LocalPosts int
	Author     string
	// DraftEvery archives every n-th local post; 0 disables drafts.
	DraftEvery int
}

// Factory builds demo entities from a seeded faker, so the same seed gives
// the same data.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a Factory seeded with seed.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// Usernames returns n distinct usernames.
func (f *Factory) Usernames(n int) []string {
	seen := make(map[string]struct{}, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := strings.ToLower(f.faker.Username())
		if _, dup := seen[name]; dup {
			name += strconv.Itoa(len(names))
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Creators builds one leaderboard row per username.
func (f *Factory) Creators(usernames []string) []models.TopCreator {
	creators := make([]models.TopCreator, 0, len(usernames))
	for i, name := range usernames {
		creators = append(creators, models.TopCreator{
			ID:          strconv.Itoa(i + 1),
			Username:    name,
			Views:       f.faker.Number(100, 100000),
			Description: f.faker.HipsterSentence(8),
		})
	}
	return creators
}

// PostContent returns a short paragraph of post text.
func (f *Factory) PostContent() string {
	return f.faker.Paragraph(1, f.faker.Number(1, 3), 12, " ")
}

// Pick returns a random element of names.
func (f *Factory) Pick(names []string) string {
	return names[f.faker.Number(0, len(names)-1)]
}

// Seeder writes demo data through the application's repositories.
type Seeder struct {
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder.
func NewSeeder(factory *Factory, opts Options) *Seeder {
	return &Seeder{factory: factory, opts: opts}
}

// WriteCreators writes the top-creators file served by GET /top/user and
// returns the usernames it used.
func (s *Seeder) WriteCreators(path string) ([]string, error) {
	usernames := s.factory.Usernames(s.opts.Creators)
	data, err := json.MarshalIndent(s.factory.Creators(usernames), "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing creators file: %w", err)
	}
	observability.Logger.Info("seeded creators", slog.String("path", path), slog.Int("count", len(usernames)))
	return usernames, nil
}

// SeedFeed creates feed posts authored by random usernames.
func (s *Seeder) SeedFeed(ctx context.Context, feed repository.FeedRepository, usernames []string) (int, error) {
	if len(usernames) == 0 {
		usernames = s.factory.Usernames(5)
	}
	for i := 0; i < s.opts.FeedPosts; i++ {
		if _, err := feed.Create(ctx, s.factory.Pick(usernames), s.factory.PostContent()); err != nil {
			return i, fmt.Errorf("creating feed post %d: %w", i, err)
		}
	}
	observability.Logger.Info("seeded feed", slog.Int("count", s.opts.FeedPosts))
	return s.opts.FeedPosts, nil
}

// SeedLocal creates local posts for the configured author, archiving every
// DraftEvery-th one.
func (s *Seeder) SeedLocal(ctx context.Context, posts repository.PostRepository) (int, error) {
	author := s.opts.Author
	if author == "" {
		author = s.factory.Usernames(1)[0]
	}
	for i := 0; i < s.opts.LocalPosts; i++ {
		post, err := posts.Create(ctx, s.factory.PostContent(), author)
		if err != nil {
			return i, fmt.Errorf("creating local post %d: %w", i, err)
		}
		if s.opts.DraftEvery > 0 && (i+1)%s.opts.DraftEvery == 0 {
			if err := posts.SetDraft(ctx, post.ID, true); err != nil {
				return i, err
			}
		}
	}
	observability.Logger.Info("seeded local posts", slog.String("author", author), slog.Int("count", s.opts.LocalPosts))
	return s.opts.LocalPosts, nil
}
