package server

import (
	"strings"

	"scribble/internal/middleware"
	"scribble/internal/models"

	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterAccount handles POST /auth/register
func (s *Server) RegisterAccount(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return respondError(c, models.NewValidationError("Username and password are required"))
	}

	user, err := s.userRepo.Create(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.respondWithToken(c, fiber.StatusCreated, user)
}

// LoginAccount handles POST /auth/login
func (s *Server) LoginAccount(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return s.respondWithToken(c, fiber.StatusOK, user)
}

// Me handles GET /auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"username": middleware.Username(c)})
}

func (s *Server) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, err := middleware.GenerateToken(s.config.JWTSecret, user.Username, middleware.TokenTTL)
	if err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.Status(status).JSON(models.AuthResponse{Token: token, User: *user})
}
