package views

import (
	"context"
	"log/slog"

	"scribble/internal/models"
	"scribble/internal/observability"
)

// Banner texts shown when the remote feed cannot be reached.
const (
	BannerPostsUnavailable    = "Could not load the latest posts. Showing your posts only."
	BannerCreatorsUnavailable = "Could not load top creators."
)

// Feed is the remote side of the home page.
type Feed interface {
	Posts(ctx context.Context) ([]models.Post, error)
	TopCreators(ctx context.Context) ([]models.TopCreator, error)
}

// HomeView is the rendered home page.
type HomeView struct {
	Posts       []models.Post       `json:"posts"`
	TopCreators []models.TopCreator `json:"topCreators"`
	Banner      string              `json:"banner,omitempty"`
}

// Home assembles the home page from the remote feed and local posts.
type Home struct {
	feed Feed
}

// NewHome creates a Home over feed.
func NewHome(feed Feed) *Home {
	return &Home{feed: feed}
}

// Build fetches the remote feed once and merges it with local. Fetch
// failures are not retried; they turn into a banner and the page renders
// with whatever is available.
func (h *Home) Build(ctx context.Context, local []models.Post) HomeView {
	view := HomeView{TopCreators: []models.TopCreator{}}

	remote, err := h.feed.Posts(ctx)
	if err != nil {
		observability.Logger.WarnContext(ctx, "remote posts unavailable", slog.String("error", err.Error()))
		view.Banner = BannerPostsUnavailable
		remote = nil
	}
	view.Posts = HomeFeed(local, remote)

	creators, err := h.feed.TopCreators(ctx)
	if err != nil {
		observability.Logger.WarnContext(ctx, "top creators unavailable", slog.String("error", err.Error()))
		if view.Banner == "" {
			view.Banner = BannerCreatorsUnavailable
		}
		return view
	}
	if creators != nil {
		view.TopCreators = creators
	}
	return view
}
