// Package session tracks the current identity and persists it under the
// legacy local store keys.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/store"
)

// Identity is the view of the session other components depend on.
type Identity struct {
	Username      string               `json:"username"`
	Authenticated bool                 `json:"authenticated"`
	Source        models.SessionSource `json:"source,omitempty"`
}

// Provider owns the session. Mutations are serialized and persisted before
// the in-memory session changes.
type Provider struct {
	mu      sync.RWMutex
	store   *store.Store
	session models.Session
	logger  *observability.RepoLogger
}

// NewProvider restores the session persisted in s.
func NewProvider(ctx context.Context, s *store.Store) *Provider {
	loggedIn := s.GetFlag(ctx, store.KeyIsLoggedIn)
	registered := s.GetFlag(ctx, store.KeyIsRegistered)

	sess := models.Session{
		Username:      s.GetString(ctx, store.KeyUsername),
		Email:         s.GetString(ctx, store.KeyEmail),
		Authenticated: loggedIn || registered,
	}
	switch {
	case loggedIn:
		sess.Source = models.SourceLogin
	case registered:
		sess.Source = models.SourceRegister
	}

	return &Provider{
		store:   s,
		session: sess,
		logger:  observability.NewRepoLogger("session"),
	}
}

// Login marks username as signed in.
func (p *Provider) Login(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.NewValidationError("username is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.session
	if next.Username != username {
		next.Email = ""
	}
	next.Username = username
	next.Authenticated = true
	next.Source = models.SourceLogin
	return p.persist(ctx, next, "login")
}

// Register marks a newly created account as signed in.
func (p *Provider) Register(ctx context.Context, username, email string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.NewValidationError("username is required")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	next := models.Session{
		Username:      username,
		Email:         strings.TrimSpace(email),
		Authenticated: true,
		Source:        models.SourceRegister,
	}
	return p.persist(ctx, next, "register")
}

// SignOut clears both flags. Username and email stay stored so a later
// visit can greet the user by name.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	next := p.session
	next.Authenticated = false
	next.Source = models.SourceNone
	return p.persist(ctx, next, "sign_out")
}

// Current returns the current identity.
func (p *Provider) Current() Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Identity{
		Username:      p.session.Username,
		Authenticated: p.session.Authenticated,
		Source:        p.session.Source,
	}
}

// Session returns a copy of the full session, email included.
func (p *Provider) Session() models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.session
}

// Author returns the username to stamp on new content.
func (p *Provider) Author() (string, error) {
	id := p.Current()
	if !id.Authenticated || id.Username == "" {
		return "", models.NewUnauthenticatedError("sign in to continue")
	}
	return id.Username, nil
}

// sessionField writes one legacy key from a session.
type sessionField struct {
	key   string
	write func(ctx context.Context, s *store.Store, sess models.Session) error
}

var sessionFields = []sessionField{
	{store.KeyUsername, func(ctx context.Context, s *store.Store, sess models.Session) error {
		return s.SetString(ctx, store.KeyUsername, sess.Username)
	}},
	{store.KeyEmail, func(ctx context.Context, s *store.Store, sess models.Session) error {
		if sess.Email == "" {
			return s.Remove(ctx, store.KeyEmail)
		}
		return s.SetString(ctx, store.KeyEmail, sess.Email)
	}},
	{store.KeyIsLoggedIn, func(ctx context.Context, s *store.Store, sess models.Session) error {
		return s.SetFlag(ctx, store.KeyIsLoggedIn, sess.Authenticated && sess.Source == models.SourceLogin)
	}},
	{store.KeyIsRegistered, func(ctx context.Context, s *store.Store, sess models.Session) error {
		return s.SetFlag(ctx, store.KeyIsRegistered, sess.Authenticated && sess.Source == models.SourceRegister)
	}},
}

// persist writes next under the legacy keys and adopts it once every write
// has succeeded. On the first failed write the keys already written are
// restored from the current session. Must be called with p.mu held.
func (p *Provider) persist(ctx context.Context, next models.Session, operation string) error {
	for i, field := range sessionFields {
		if err := field.write(ctx, p.store, next); err != nil {
			err = fmt.Errorf("write %s: %w", field.key, err)
			if rerr := p.restore(ctx, sessionFields[:i]); rerr != nil {
				err = errors.Join(err, rerr)
			}
			p.logger.LogError(ctx, err, operation)
			return models.NewInternalError(fmt.Errorf("persist session: %w", err))
		}
	}

	p.session = next
	p.logger.LogUpdate(ctx, map[string]any{
		"operation_kind": operation,
		"username":       next.Username,
		"authenticated":  next.Authenticated,
	})
	return nil
}

// restore rewrites fields from the in-memory session, newest first.
func (p *Provider) restore(ctx context.Context, fields []sessionField) error {
	var errs []error
	for i := len(fields) - 1; i >= 0; i-- {
		if err := fields[i].write(ctx, p.store, p.session); err != nil {
			errs = append(errs, fmt.Errorf("restore %s: %w", fields[i].key, err))
		}
	}
	return errors.Join(errs...)
}
