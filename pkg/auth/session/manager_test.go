package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = value.(string)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string {
	return "pl:session:" + accessID
}

func newTestManager(store *fakeStore) *Manager {
	return &Manager{store: store, keyer: fakeKeyer{}, ttl: 15 * time.Minute}
}

func TestEstablishAndHasSession(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	require.NoError(t, mgr.Establish(ctx, accessID))
	assert.Equal(t, 15*time.Minute, store.ttls["pl:session:"+accessID])

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = mgr.HasSession(ctx, NewAccessID())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevoke(t *testing.T) {
	store := newFakeStore()
	mgr := newTestManager(store)
	ctx := context.Background()

	accessID := NewAccessID()
	require.NoError(t, mgr.Establish(ctx, accessID))
	require.NoError(t, mgr.Revoke(ctx, accessID))

	ok, err := mgr.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmptyAccessIDRejected(t *testing.T) {
	mgr := newTestManager(newFakeStore())
	ctx := context.Background()

	assert.Error(t, mgr.Establish(ctx, " "))
	assert.Error(t, mgr.Revoke(ctx, ""))
	_, err := mgr.HasSession(ctx, "")
	assert.Error(t, err)
}
