package server

import (
	"errors"
	"strconv"
	"strings"

	"scribble/internal/models"
	"scribble/internal/remote"

	"github.com/gofiber/fiber/v2"
)

// respondError answers with the status that matches err's AppError code.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.StatusFor(err), err)
}

// respondRemoteError relays a backend rejection and turns transport
// failures into 502.
func respondRemoteError(c *fiber.Ctx, err error) error {
	var statusErr *remote.StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.Status == fiber.StatusUnauthorized:
			return respondError(c, models.NewUnauthenticatedError(statusErr.Message))
		case statusErr.Status >= 400 && statusErr.Status < 500:
			return respondError(c, models.NewValidationError(statusErr.Message))
		}
	}
	return models.RespondWithError(c, fiber.StatusBadGateway, &models.AppError{
		Code:    models.CodeInternal,
		Message: "account service unavailable",
		Err:     err,
	})
}

func parsePostID(c *fiber.Ctx) (models.PostID, error) {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return "", models.NewValidationError("post id is required")
	}
	return models.PostID(id), nil
}

func parseLimit(c *fiber.Ctx, def, maxLimit int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
