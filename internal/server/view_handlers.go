package server

import (
	"strconv"

	"scribble/internal/models"
	"scribble/internal/views"

	"github.com/gofiber/fiber/v2"
)

// HomeView handles GET /api/views/home
func (s *Server) HomeView(c *fiber.Ctx) error {
	return c.JSON(s.home.Build(c.UserContext(), s.posts.List(c.UserContext())))
}

// ArchiveView handles GET /api/views/archive?seed=. Without a seed the
// placeholders differ on every request.
func (s *Server) ArchiveView(c *fiber.Ctx) error {
	now := s.now()
	seed := now.UnixNano()
	if raw := c.Query("seed"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return respondError(c, models.NewValidationError("seed must be an integer"))
		}
		seed = parsed
	}

	posts := views.ArchiveView(s.posts.List(c.UserContext()), views.RenderContext{Seed: seed, Now: now})
	return c.JSON(fiber.Map{
		"seed":  seed,
		"posts": posts,
	})
}

// MyPostsView handles GET /api/views/mine
func (s *Server) MyPostsView(c *fiber.Ctx) error {
	return c.JSON(views.MyPostsView(s.posts.List(c.UserContext())))
}

// LikedView handles GET /api/views/liked
func (s *Server) LikedView(c *fiber.Ctx) error {
	return c.JSON(views.LikedView(s.liked.List(c.UserContext())))
}
