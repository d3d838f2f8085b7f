package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supply_order_back_end/internal/models"
)

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	limiter := NewRateLimiter(client, "submit", 2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "1001")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = limiter.Allow(ctx, "1002")
	require.NoError(t, err)
	assert.True(t, ok, "compteur séparé par clé")

	mr.FastForward(2 * time.Minute)
	ok, err = limiter.Allow(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRateLimiter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	limiter := NewRateLimiter(client, "submit", 10, time.Minute)

	for i := 0; i < 10; i++ {
		ok, err := limiter.Allow(ctx, "1001")
		require.NoError(t, err)
		require.True(t, ok)
	}

	// Des tentatives refusées ne repoussent pas la fin de la fenêtre
	mr.FastForward(30 * time.Second)
	ok, err := limiter.Allow(ctx, "1001")
	require.NoError(t, err)
	assert.False(t, ok)

	mr.FastForward(31 * time.Second)
	ok, err = limiter.Allow(ctx, "1001")
	require.NoError(t, err)
	assert.True(t, ok, "nouvelle fenêtre après une minute")
}

func TestIncrementRateLimit_ExpirySetOnce(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)

	_, err := IncrementRateLimit(ctx, client, "k", time.Minute)
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	n, err := IncrementRateLimit(ctx, client, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 20*time.Second, mr.TTL("k"))
}

func TestEventBus_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, client := setupRedis(t)
	bus := NewEventBus(client)

	sub := bus.Subscribe(ctx)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, bus.PublishLedgerEvent(ctx, models.LedgerEvent{
		Type:    models.EventOrderReceived,
		OrderID: "ORD-1-1",
		Status:  models.OrderPartial,
		Changed: 1,
		At:      at,
	}))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, LedgerChannel, msg.Channel)

	ev, err := DecodeLedgerEvent(msg.Payload)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1-1", ev.OrderID)
	assert.Equal(t, models.OrderPartial, ev.Status)
	assert.True(t, ev.At.Equal(at))
}
