package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"scribble/internal/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const creatorsJSON = `[
  {"id":"1","username":"quiet","views":10,"description":"rarely posts"},
  {"id":"2","username":"star","views":900,"description":"everyone reads"},
  {"id":"3","username":"steady","views":300,"description":"weekly"}
]`

func writeCreators(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creators.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileCreatorRepository_Top(t *testing.T) {
	cache.SetClient(nil)
	ctx := context.Background()
	repo := NewFileCreatorRepository(writeCreators(t, creatorsJSON))

	all, err := repo.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "star", all[0].Username)
	assert.Equal(t, "steady", all[1].Username)
	assert.Equal(t, "quiet", all[2].Username)

	top, err := repo.Top(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestFileCreatorRepository_MissingFile(t *testing.T) {
	cache.SetClient(nil)
	repo := NewFileCreatorRepository(filepath.Join(t.TempDir(), "absent.json"))

	creators, err := repo.Top(context.Background(), 5)
	require.NoError(t, err)
	assert.NotNil(t, creators)
	assert.Empty(t, creators)
}

func TestFileCreatorRepository_Malformed(t *testing.T) {
	cache.SetClient(nil)
	repo := NewFileCreatorRepository(writeCreators(t, "{oops"))

	_, err := repo.Top(context.Background(), 5)
	assert.Error(t, err)
}

func TestFileCreatorRepository_ServesFromCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
		mr.Close()
	})

	ctx := context.Background()
	path := writeCreators(t, creatorsJSON)
	repo := NewFileCreatorRepository(path)

	first, err := repo.Top(ctx, 3)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.TopCreatorsKey(3)))

	// The file changing underneath does not matter until the entry expires.
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o600))
	second, err := repo.Top(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
