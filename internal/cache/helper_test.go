package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
		mr.Close()
	})
	return mr
}

func TestAside_FetchesOnceThenHitsCache(t *testing.T) {
	withMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"alice", "bob"}
			return nil
		}
	}

	var first []string
	require.NoError(t, Aside(ctx, TopCreatorsKey(2), &first, TopCreatorsTTL, fetch(&first)))
	var second []string
	require.NoError(t, Aside(ctx, TopCreatorsKey(2), &second, TopCreatorsTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"alice", "bob"}, second)
}

func TestAside_WithoutClientAlwaysFetches(t *testing.T) {
	SetClient(nil)
	calls := 0
	var dest int
	for i := 0; i < 2; i++ {
		require.NoError(t, Aside(context.Background(), "k", &dest, TopCreatorsTTL, func() error {
			calls++
			dest = 7
			return nil
		}))
	}
	assert.Equal(t, 2, calls)
}

func TestAside_PropagatesFetchError(t *testing.T) {
	withMiniredis(t)
	var dest int
	err := Aside(context.Background(), "k", &dest, TopCreatorsTTL, func() error {
		return errors.New("source down")
	})
	assert.EqualError(t, err, "source down")
}

func TestInvalidate(t *testing.T) {
	mr := withMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, "k", 1, TopCreatorsTTL))
	assert.True(t, mr.Exists("k"))
	Invalidate(ctx, "k")
	assert.False(t, mr.Exists("k"))
}
