package server

import (
	"scribble/internal/models"

	"github.com/gofiber/fiber/v2"
)

type sessionResponse struct {
	models.Session
	Token string `json:"token,omitempty"`
}

// GetSession handles GET /api/session
func (s *Server) GetSession(c *fiber.Ctx) error {
	return c.JSON(sessionResponse{Session: s.session.Session()})
}

// SessionLogin handles POST /api/session/login. Credentials are checked by
// the account backend before the local session changes.
func (s *Server) SessionLogin(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Username and password are required"))
	}

	auth, err := s.remote.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondRemoteError(c, err)
	}
	if err := s.session.Login(c.UserContext(), accountName(auth, req.Username)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse{Session: s.session.Session(), Token: auth.Token})
}

// SessionRegister handles POST /api/session/register
func (s *Server) SessionRegister(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if req.Username == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Username and password are required"))
	}

	auth, err := s.remote.Register(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondRemoteError(c, err)
	}
	if err := s.session.Register(c.UserContext(), accountName(auth, req.Username), req.Email); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse{Session: s.session.Session(), Token: auth.Token})
}

// SessionSignOut handles POST /api/session/signout
func (s *Server) SessionSignOut(c *fiber.Ctx) error {
	if err := s.session.SignOut(c.UserContext()); err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessionResponse{Session: s.session.Session()})
}

func accountName(auth *models.AuthResponse, fallback string) string {
	if auth.User.Username != "" {
		return auth.User.Username
	}
	return fallback
}
