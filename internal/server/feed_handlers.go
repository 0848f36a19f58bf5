package server

import (
	"scribble/internal/middleware"
	"scribble/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListFeed handles GET /posts
func (s *Server) ListFeed(c *fiber.Ctx) error {
	posts, err := s.feedRepo.List(c.UserContext())
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(posts)
}

// CreateFeedPost handles POST /posts. The author is the token subject.
func (s *Server) CreateFeedPost(c *fiber.Ctx) error {
	var req struct {
		Content     string `json:"content"`
		PostContent string `json:"postContent"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	content := req.Content
	if content == "" {
		content = req.PostContent
	}

	post, err := s.feedRepo.Create(c.UserContext(), middleware.Username(c), content)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetTopCreators handles GET /top/user?limit=
func (s *Server) GetTopCreators(c *fiber.Ctx) error {
	creators, err := s.creatorRepo.Top(c.UserContext(), parseLimit(c, 10, 100))
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.JSON(creators)
}
