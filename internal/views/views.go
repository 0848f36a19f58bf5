// Package views derives the read-only lists the UI renders from the post
// collections. Nothing here writes to the store.
package views

import (
	"hash/fnv"
	"time"

	"scribble/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// Placeholder ranges for display metadata a post does not carry.
const (
	MaxPlaceholderLikes = 500
	MaxPlaceholderViews = 5000
	PlaceholderWindow   = 30 * 24 * time.Hour
)

// RenderContext seeds the display decorator. Equal contexts render equal
// placeholders; a new seed per request makes them vary across reloads.
type RenderContext struct {
	Seed int64
	Now  time.Time
}

// HomeFeed merges the remote feed with the local collection. Remote posts
// come first in remote order, followed by local published posts the remote
// feed does not already contain. Drafts never appear. When an id repeats,
// its first occurrence wins.
func HomeFeed(local, remote []models.Post) []models.Post {
	out := make([]models.Post, 0, len(remote)+len(local))
	seen := make(map[models.PostID]struct{}, len(remote)+len(local))

	add := func(posts []models.Post) {
		for _, p := range posts {
			if p.IsDraft {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			out = append(out, p)
		}
	}
	add(remote)
	add(local)
	return out
}

// ArchiveView returns the drafts in stored order, decorated for display.
func ArchiveView(posts []models.Post, rc RenderContext) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsDraft {
			out = append(out, Decorate(p, rc))
		}
	}
	return out
}

// MyPostsView returns the published posts in stored order.
func MyPostsView(posts []models.Post) []models.Post {
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if !p.IsDraft {
			out = append(out, p)
		}
	}
	return out
}

// LikedView returns the liked snapshots in stored order.
func LikedView(liked []models.LikedPost) []models.LikedPost {
	out := make([]models.LikedPost, len(liked))
	copy(out, liked)
	return out
}

// Decorate fills in timestamp, likes and views when the post lacks them.
// Values present on the post are kept. The faker is seeded from rc.Seed and
// the post id, so a post renders the same placeholders for the same seed
// wherever it sits in the list.
func Decorate(p models.Post, rc RenderContext) models.Post {
	if p.Timestamp != "" && p.Likes != nil && p.Views != nil {
		return p
	}

	faker := gofakeit.New(postSeed(rc.Seed, p.ID))
	now := rc.Now
	if now.IsZero() {
		now = time.Now()
	}

	if p.Timestamp == "" {
		ts := faker.DateRange(now.Add(-PlaceholderWindow), now)
		p.Timestamp = ts.UTC().Format(time.RFC3339)
	}
	if p.Likes == nil {
		likes := faker.Number(0, MaxPlaceholderLikes)
		p.Likes = &likes
	}
	if p.Views == nil {
		views := faker.Number(0, MaxPlaceholderViews)
		p.Views = &views
	}
	return p
}

func postSeed(seed int64, id models.PostID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return seed ^ int64(h.Sum64())
}
