// Package remote talks to the feed and account endpoints over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scribble/internal/models"
	"scribble/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// Client calls GET /posts, GET /top/user and the /auth endpoints of a
// backend. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient returns a client for baseURL (no trailing slash).
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, timeout: timeout}
}

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote returned %d: %s", e.Status, e.Message)
}

// Posts fetches the public feed and maps it onto canonical posts.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var feed []models.RemotePost
	if err := c.do(ctx, "posts", fiber.Get(c.baseURL+"/posts"), &feed); err != nil {
		return nil, err
	}
	posts := make([]models.Post, 0, len(feed))
	for _, rp := range feed {
		posts = append(posts, rp.ToPost())
	}
	return posts, nil
}

// TopCreators fetches the leaderboard.
func (c *Client) TopCreators(ctx context.Context) ([]models.TopCreator, error) {
	creators := []models.TopCreator{}
	if err := c.do(ctx, "top_user", fiber.Get(c.baseURL+"/top/user"), &creators); err != nil {
		return nil, err
	}
	return creators, nil
}

// Login checks credentials against the backend.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	agent := fiber.Post(c.baseURL + "/auth/login").JSON(fiber.Map{
		"username": username,
		"password": password,
	})
	var resp models.AuthResponse
	if err := c.do(ctx, "auth_login", agent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account on the backend.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error) {
	agent := fiber.Post(c.baseURL + "/auth/register").JSON(fiber.Map{
		"username": username,
		"email":    email,
		"password": password,
	})
	var resp models.AuthResponse
	if err := c.do(ctx, "auth_register", agent, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, endpoint string, agent *fiber.Agent, dest any) (err error) {
	ctx, span := observability.StartClientSpan(ctx, endpoint)
	defer func() {
		if err != nil {
			observability.RemoteFetchErrors.WithLabelValues(endpoint).Inc()
		}
		observability.EndSpan(span, err)
	}()

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout || timeout <= 0 {
			timeout = left
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return fmt.Errorf("%s: build request: %w", endpoint, err)
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s: %w", endpoint, errors.Join(errs...))
	}

	if status < 200 || status > 299 {
		var apiErr models.ErrorResponse
		msg := string(body)
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &StatusError{Status: status, Message: msg}
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return nil
}
