package server

import (
	"scribble/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	author, err := s.session.Author()
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.posts.Create(c.UserContext(), req.Content, author)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Deleting a missing post succeeds.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.posts.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ArchivePost handles POST /api/posts/:id/archive
func (s *Server) ArchivePost(c *fiber.Ctx) error {
	return s.transition(c, models.ActionArchive)
}

// RestorePost handles POST /api/posts/:id/restore
func (s *Server) RestorePost(c *fiber.Ctx) error {
	return s.transition(c, models.ActionRestore)
}

func (s *Server) transition(c *fiber.Ctx, action models.PostAction) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}
	post, err := s.posts.Transition(c.UserContext(), id, action)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// BulkDeletePosts handles POST /api/posts/bulk-delete
func (s *Server) BulkDeletePosts(c *fiber.Ctx) error {
	var req struct {
		IDs []models.PostID `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	removed, err := s.posts.BulkDelete(c.UserContext(), req.IDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"removed": removed})
}

// LikePost handles POST /api/posts/:id/like. The post may be local or come
// from the remote feed; a snapshot of it is stored either way.
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.findPost(c, id)
	if err != nil {
		return respondError(c, err)
	}
	added, err := s.liked.Like(c.UserContext(), *post)
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusOK
	if added {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"liked": true, "added": added, "post": post})
}

// UnlikePost handles DELETE /api/likes/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parsePostID(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.liked.Unlike(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) findPost(c *fiber.Ctx, id models.PostID) (*models.Post, error) {
	post, err := s.posts.Get(c.UserContext(), id)
	if err == nil || !models.IsNotFound(err) {
		return post, err
	}

	remotePosts, rerr := s.remote.Posts(c.UserContext())
	if rerr != nil {
		return nil, err
	}
	for _, p := range remotePosts {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, err
}
