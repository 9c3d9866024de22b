package kv

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/salazaroliveros-prog/billar-finanzas/internal/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, prefix string) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, NewRedisStore(rdb, prefix)
}

// storeContract runs the same behaviour checks against every backend.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, KeyState, []byte(`{"a":1}`)))
	got, ok, err := s.Get(ctx, KeyState)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, s.Put(ctx, KeyState, []byte(`{"a":2}`)))
	got, _, err = s.Get(ctx, KeyState)
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	require.NoError(t, s.Delete(ctx, KeyState))
	_, ok, err = s.Get(ctx, KeyState)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-existed"))

	require.NoError(t, s.Put(ctx, KeyMeta, []byte(`{}`)))
	require.NoError(t, s.Put(ctx, SnapshotKey("1"), []byte(`{}`)))
	require.NoError(t, s.ClearAll(ctx))
	_, ok, _ = s.Get(ctx, KeyMeta)
	assert.False(t, ok)
	_, ok, _ = s.Get(ctx, SnapshotKey("1"))
	assert.False(t, ok)
}

func TestMemoryStoreContract(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestRedisStoreContract(t *testing.T) {
	_, s := newRedisStore(t, "billar:")
	storeContract(t, s)
}

func TestMemoryStoreCopiesDocuments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	doc := []byte("abc")
	require.NoError(t, s.Put(ctx, "k", doc))
	doc[0] = 'x'

	got, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))
	got[1] = 'y'
	again, _, _ := s.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestRedisClearAllKeepsOtherNamespaces(t *testing.T) {
	mr, s := newRedisStore(t, "billar:")
	ctx := context.Background()
	require.NoError(t, mr.Set("legacy:productos", "[]"))
	require.NoError(t, s.Put(ctx, KeyState, []byte("{}")))

	require.NoError(t, s.ClearAll(ctx))

	assert.True(t, mr.Exists("legacy:productos"))
	assert.False(t, mr.Exists("billar:state"))
}

func TestRedisStoreSurfacesStorageErrors(t *testing.T) {
	mr, s := newRedisStore(t, "billar:")
	mr.Close()

	_, _, err := s.Get(context.Background(), KeyState)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStorage))

	err = s.Put(context.Background(), KeyState, []byte("{}"))
	assert.True(t, errors.Is(err, apperror.ErrStorage))
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var v map[string]int
	ok, err := GetJSON(ctx, s, "doc", &v)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, PutJSON(ctx, s, "doc", map[string]int{"n": 3}))
	ok, err = GetJSON(ctx, s, "doc", &v)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, v["n"])

	require.NoError(t, s.Put(ctx, "broken", []byte("{")))
	_, err = GetJSON(ctx, s, "broken", &v)
	assert.True(t, errors.Is(err, apperror.ErrStorage))

	err = PutJSON(ctx, s, "bad", func() {})
	assert.True(t, errors.Is(err, apperror.ErrStorage))
}

func TestLazyOpensOnce(t *testing.T) {
	backing := NewMemoryStore()
	opens := 0
	l := NewLazy(func(context.Context) (Store, error) {
		opens++
		return backing, nil
	})
	ctx := context.Background()

	require.NoError(t, l.Put(ctx, "a", []byte("1")))
	require.NoError(t, l.Put(ctx, "b", []byte("2")))
	_, ok, err := l.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Delete(ctx, "a"))

	assert.Equal(t, 1, opens)
	keys := backing.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"b"}, keys)
}

func TestLazyRetriesFailedOpen(t *testing.T) {
	attempts := 0
	l := NewLazy(func(context.Context) (Store, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("redis not ready")
		}
		return NewMemoryStore(), nil
	})
	ctx := context.Background()

	err := l.Put(ctx, "a", []byte("1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrStorage))

	require.NoError(t, l.Put(ctx, "a", []byte("1")))
	assert.Equal(t, 2, attempts)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}
