package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"scribble/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteBackend(t *testing.T) *SQLBackend {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	b, err := NewSQLBackend(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func newRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisBackend(rdb, "test")
}

func newFileBackend(t *testing.T) *FileBackend {
	t.Helper()
	b, err := NewFileBackend(filepath.Join(t.TempDir(), "store.json"))
	require.NoError(t, err)
	return b
}

func TestBackends_Contract(t *testing.T) {
	backends := map[string]func(t *testing.T) Backend{
		"memory": func(_ *testing.T) Backend { return NewMemoryBackend() },
		"file":   func(t *testing.T) Backend { return newFileBackend(t) },
		"redis":  func(t *testing.T) Backend { return newRedisBackend(t) },
		"sqlite": func(t *testing.T) Backend { return newSQLiteBackend(t) },
	}

	for name, build := range backends {
		t.Run(name, func(t *testing.T) {
			b := build(t)
			ctx := context.Background()

			_, ok, err := b.Get(ctx, KeyPosts)
			require.NoError(t, err)
			assert.False(t, ok, "fresh backend must report absence")

			require.NoError(t, b.Set(ctx, KeyPosts, `[{"id":"1"}]`))
			v, ok, err := b.Get(ctx, KeyPosts)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `[{"id":"1"}]`, v)

			require.NoError(t, b.Set(ctx, KeyPosts, `[]`))
			v, _, err = b.Get(ctx, KeyPosts)
			require.NoError(t, err)
			assert.Equal(t, `[]`, v, "second write must overwrite")

			require.NoError(t, b.Remove(ctx, KeyPosts))
			_, ok, err = b.Get(ctx, KeyPosts)
			require.NoError(t, err)
			assert.False(t, ok)

			assert.NoError(t, b.Remove(ctx, "never-set"), "removing a missing key is not an error")
		})
	}
}

func TestFileBackend_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	ctx := context.Background()

	b, err := NewFileBackend(path)
	require.NoError(t, err)
	require.NoError(t, b.Set(ctx, KeyUsername, "alice"))

	reopened, err := NewFileBackend(path)
	require.NoError(t, err)
	v, ok, err := reopened.Get(ctx, KeyUsername)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}

func TestFileBackend_UnreadableFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	b, err := NewFileBackend(path)
	require.NoError(t, err)
	_, ok, err := b.Get(context.Background(), KeyPosts)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisBackend_Namespace(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	b := NewRedisBackend(rdb, "scribble:local")
	require.NoError(t, b.Set(context.Background(), KeyIsLoggedIn, "true"))

	got, err := mr.Get("scribble:local:isLoggedIn")
	require.NoError(t, err)
	assert.Equal(t, "true", got)
}

func TestMemoryBackend_Closed(t *testing.T) {
	b := NewMemoryBackend()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Set(context.Background(), "k", "v"), ErrClosed)
}

func TestReadList_DegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		raw  *string
	}{
		{"absent", nil},
		{"empty string", strPtr("")},
		{"malformed json", strPtr("[{oops")},
		{"wrong shape", strPtr(`{"id":"1"}`)},
		{"json null", strPtr("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			if tt.raw != nil {
				require.NoError(t, backend.Set(ctx, KeyPosts, *tt.raw))
			}
			posts := ReadList[models.Post](ctx, New(backend, "memory"), KeyPosts)
			assert.NotNil(t, posts)
			assert.Empty(t, posts)
		})
	}
}

func TestReadList_BackendFailureDegradesToEmpty(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Close())
	posts := ReadList[models.Post](context.Background(), New(backend, "memory"), KeyPosts)
	assert.Empty(t, posts)
}

func TestWriteListReadList_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend(), "memory")

	require.NoError(t, WriteList[models.Post](ctx, s, KeyPosts, nil))
	raw, _, _ := s.backend.Get(ctx, KeyPosts)
	assert.Equal(t, "[]", raw, "nil collections persist as an empty array")

	in := []models.Post{{ID: "a", Username: "alice", Content: "hi"}}
	require.NoError(t, WriteList(ctx, s, KeyPosts, in))
	assert.Equal(t, in, ReadList[models.Post](ctx, s, KeyPosts))
}

func TestFlagsAndStrings(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := New(backend, "memory")

	assert.False(t, s.GetFlag(ctx, KeyIsLoggedIn))
	require.NoError(t, s.SetFlag(ctx, KeyIsLoggedIn, true))
	raw, _, _ := backend.Get(ctx, KeyIsLoggedIn)
	assert.Equal(t, "true", raw)
	assert.True(t, s.GetFlag(ctx, KeyIsLoggedIn))

	require.NoError(t, backend.Set(ctx, KeyIsRegistered, "yes"))
	assert.False(t, s.GetFlag(ctx, KeyIsRegistered), "non-boolean strings read as false")

	require.NoError(t, backend.Set(ctx, KeyUsername, `"bob"`))
	assert.Equal(t, "bob", s.GetString(ctx, KeyUsername), "JSON-quoted strings are unwrapped")

	require.NoError(t, s.Remove(ctx, KeyUsername))
	assert.Equal(t, "", s.GetString(ctx, KeyUsername))
}

func TestSQLBackend_PostgresStatements(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	b := &SQLBackend{db: db}
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "local_entries"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, b.Set(ctx, KeyPosts, "[]"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "local_entries" WHERE key = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"key", "value"}).AddRow(KeyPosts, "[]"))
	v, ok, err := b.Get(ctx, KeyPosts)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "local_entries" WHERE key = $1`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	require.NoError(t, b.Remove(ctx, KeyPosts))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
