package remote

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"scribble/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBackend(t *testing.T, register func(app *fiber.App)) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	register(app)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String()
}

func TestClient_Posts(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/posts", func(c *fiber.Ctx) error {
			return c.Type("json").SendString(`[
				{"id":"a","username":"alice","content":"modern"},
				{"id":17,"username":"bob","postContent":"legacy"}
			]`)
		})
	})

	posts, err := NewClient(base, 2*time.Second).Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "modern", posts[0].Content)
	assert.Equal(t, models.PostID("17"), posts[1].ID)
	assert.Equal(t, "legacy", posts[1].Content)
	assert.False(t, posts[1].IsDraft)
}

func TestClient_TopCreators(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/top/user", func(c *fiber.Ctx) error {
			return c.JSON([]models.TopCreator{{ID: "1", Username: "star", Views: 99, Description: "hi"}})
		})
	})

	creators, err := NewClient(base, 2*time.Second).TopCreators(context.Background())
	require.NoError(t, err)
	require.Len(t, creators, 1)
	assert.Equal(t, 99, creators[0].Views)
}

func TestClient_ErrorStatus(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/auth/login", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
				Error: "invalid username or password",
				Code:  models.CodeUnauthenticated,
			})
		})
		app.Get("/posts", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadGateway).SendString("upstream down")
		})
	})
	client := NewClient(base, 2*time.Second)

	_, err := client.Login(context.Background(), "alice", "wrong")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, fiber.StatusUnauthorized, statusErr.Status)
	assert.Equal(t, "invalid username or password", statusErr.Message)

	_, err = client.Posts(context.Background())
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "upstream down", statusErr.Message)
}

func TestClient_RegisterSendsBody(t *testing.T) {
	var got struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	base := startBackend(t, func(app *fiber.App) {
		app.Post("/auth/register", func(c *fiber.Ctx) error {
			if err := c.BodyParser(&got); err != nil {
				return err
			}
			return c.Status(fiber.StatusCreated).JSON(models.AuthResponse{
				Token: "tok",
				User:  models.User{Username: got.Username, Email: got.Email},
			})
		})
	})

	resp, err := NewClient(base, 2*time.Second).Register(context.Background(), "carol", "c@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.Equal(t, "carol", resp.User.Username)
	assert.Equal(t, "pw", got.Password)
}

func TestClient_Timeout(t *testing.T) {
	base := startBackend(t, func(app *fiber.App) {
		app.Get("/posts", func(c *fiber.Ctx) error {
			time.Sleep(500 * time.Millisecond)
			return c.JSON([]models.RemotePost{})
		})
	})

	_, err := NewClient(base, 50*time.Millisecond).Posts(context.Background())
	assert.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	_, err = NewClient("http://"+addr, time.Second).TopCreators(context.Background())
	assert.Error(t, err)
}

func TestClient_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://127.0.0.1:1", time.Second).Posts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
