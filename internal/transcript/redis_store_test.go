package transcript

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestNewRedisStoreErrors(t *testing.T) {
	_, err := NewRedisStore("not a url", time.Hour)
	assert.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisStore("redis://"+addr, time.Hour)
	assert.Error(t, err)
}

func TestSaveAssignsIDAndTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	ex := &Exchange{Message: "Hola", Intent: "faq", Language: "es", PMSStatus: "ok", Reply: "Claro"}
	require.NoError(t, store.Save(ctx, ex))
	require.NotEmpty(t, ex.ID)
	assert.False(t, ex.ReceivedAt.IsZero())

	key := "exchange:" + ex.ID
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
	assert.Equal(t, time.Hour, mr.TTL(indexKey))
}

func TestRecentNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	for i, msg := range []string{"first", "second", "third"} {
		require.NoError(t, store.Save(ctx, &Exchange{
			ReceivedAt: start.Add(time.Duration(i) * time.Minute),
			Message:    msg,
		}))
	}

	got, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Message)
	assert.Equal(t, "second", got[1].Message)

	all, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecentSkipsExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	old := &Exchange{ID: "old", ReceivedAt: time.Now().Add(-time.Minute), Message: "old"}
	fresh := &Exchange{ID: "fresh", ReceivedAt: time.Now(), Message: "fresh"}
	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, fresh))

	mr.Del("exchange:old")

	got, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)

	members, err := mr.ZMembers(indexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, members)
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	require.NoError(t, s.Save(context.Background(), &Exchange{}))
	got, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Close())
}
