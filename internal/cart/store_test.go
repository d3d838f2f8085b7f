package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	s := NewRedisStore(client, time.Hour)

	c, err := s.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Add(gloves, 2))
	require.NoError(t, s.Save(ctx, c))

	assert.True(t, mr.Exists("cart:"+c.ID))
	assert.Equal(t, time.Hour, mr.TTL("cart:"+c.ID))

	loaded, err := s.Load(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, 2, loaded.Lines[0].Quantity)
	assert.Equal(t, "軍手", loaded.Lines[0].Product.Name)

	require.NoError(t, s.Delete(ctx, c.ID))
	_, err = s.Load(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	s := NewRedisStore(client, time.Minute)

	c, err := s.Create(ctx)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, err = s.Load(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_PublishesChanges(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, client := setupRedis(t)
	s := NewRedisStore(client, time.Hour)

	c, err := s.Create(ctx)
	require.NoError(t, err)

	sub := s.Subscribe(ctx, c.ID)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, c))
	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, MessageUpdated, msg.Payload)

	require.NoError(t, s.Delete(ctx, c.ID))
	msg, err = sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, MessageCleared, msg.Payload)
}

func TestMemoryStore_IsolatesCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	c, err := s.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Add(gloves, 1))
	require.NoError(t, s.Save(ctx, c))

	loaded, err := s.Load(ctx, c.ID)
	require.NoError(t, err)
	loaded.Lines[0].Quantity = 99

	again, err := s.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Lines[0].Quantity)

	require.NoError(t, s.Delete(ctx, c.ID))
	_, err = s.Load(ctx, c.ID)
	assert.ErrorIs(t, err, ErrCartNotFound)
}
