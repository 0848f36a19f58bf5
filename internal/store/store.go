// Package store is the local key-value persistence layer. Values are
// JSON-encoded strings under fixed keys, the layout older clients wrote to
// browser local storage.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"scribble/internal/models"
	"scribble/internal/observability"
)

// Keys used by the application. The names and the string-boolean encoding of
// the flags are part of the persisted format and must not change.
const (
	KeyPosts        = "posts"
	KeyLikedPosts   = "likedPosts"
	KeyUsername     = "username"
	KeyIsLoggedIn   = "isLoggedIn"
	KeyIsRegistered = "isRegistered"
	KeyEmail        = "email"
)

// Backend is a raw string key-value store.
type Backend interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Store wraps a Backend with the typed accessors the repositories use.
type Store struct {
	backend Backend
	name    string
}

// New creates a Store over backend. name labels metrics and logs.
func New(backend Backend, name string) *Store {
	return &Store{backend: backend, name: name}
}

// Name returns the backend label.
func (s *Store) Name() string {
	return s.name
}

// Ping reports whether the backend can serve reads.
func (s *Store) Ping(ctx context.Context) error {
	_, _, err := s.backend.Get(ctx, KeyPosts)
	return err
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// ReadList decodes the JSON array under key. A missing key, a backend read
// failure or malformed data all yield an empty slice; the failure is logged
// and never reaches the caller.
func ReadList[T any](ctx context.Context, s *Store, key string) []T {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		observability.Logger.WarnContext(ctx, "local store read failed",
			slog.String("key", key),
			slog.String("backend", s.name),
			slog.String("error", err.Error()),
		)
		return []T{}
	}
	if !ok || raw == "" {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		corruption := models.NewStorageCorruptionError(key, err)
		observability.StoreCorruption.WithLabelValues(key).Inc()
		observability.Logger.WarnContext(ctx, "discarding unreadable stored value",
			slog.String("key", key),
			slog.String("backend", s.name),
			slog.String("error", corruption.Error()),
		)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

// WriteList encodes items as a JSON array and stores it under key in one write.
func WriteList[T any](ctx context.Context, s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.set(ctx, key, string(b))
}

// GetString returns the plain string stored under key, or "" when absent.
func (s *Store) GetString(ctx context.Context, key string) string {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return decodeScalar(raw)
}

// SetString stores value under key.
func (s *Store) SetString(ctx context.Context, key, value string) error {
	return s.set(ctx, key, value)
}

// GetFlag reads a "true"/"false" flag. Anything else reads as false.
func (s *Store) GetFlag(ctx context.Context, key string) bool {
	v, err := strconv.ParseBool(s.GetString(ctx, key))
	return err == nil && v
}

// SetFlag stores a flag as "true" or "false".
func (s *Store) SetFlag(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, strconv.FormatBool(value))
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.backend.Remove(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	done := observability.TrackStoreWrite(s.name)
	defer done()

	if err := s.backend.Set(ctx, key, value); err != nil {
		observability.StoreWrites.WithLabelValues(key, "error").Inc()
		return fmt.Errorf("write %s: %w", key, err)
	}
	observability.StoreWrites.WithLabelValues(key, "ok").Inc()
	return nil
}

// decodeScalar tolerates values some clients stored JSON-encoded ("\"bob\"").
func decodeScalar(raw string) string {
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			return s
		}
	}
	return raw
}

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("store: backend closed")
