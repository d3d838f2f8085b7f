package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"supply_order_back_end/internal/models"
)

// LedgerChannel est le canal pub/sub des modifications du registre
const LedgerChannel = "ledger:events"

// --- Rate Limiting ---

// IncrementRateLimit incrémente le compteur de la fenêtre courante.
// La fenêtre est fixe : l'expiration n'est posée qu'à la création du compteur.
func IncrementRateLimit(ctx context.Context, client *redis.Client, key string, window time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// RateLimiter autorise au plus Limit appels par clé et par fenêtre
type RateLimiter struct {
	client *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

func NewRateLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{client: client, prefix: prefix, limit: int64(limit), window: window}
}

func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := IncrementRateLimit(ctx, r.client, fmt.Sprintf("ratelimit:%s:%s", r.prefix, key), r.window)
	if err != nil {
		return false, err
	}
	return count <= r.limit, nil
}

// --- Événements du registre ---

// EventBus publie et diffuse les événements du registre via Redis pub/sub
type EventBus struct {
	client *redis.Client
}

func NewEventBus(client *redis.Client) *EventBus {
	return &EventBus{client: client}
}

func (b *EventBus) PublishLedgerEvent(ctx context.Context, ev models.LedgerEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, LedgerChannel, data).Err()
}

// Subscribe ouvre un abonnement au canal du registre
func (b *EventBus) Subscribe(ctx context.Context) *redis.PubSub {
	return b.client.Subscribe(ctx, LedgerChannel)
}

// DecodeLedgerEvent décode un message reçu sur le canal
func DecodeLedgerEvent(payload string) (models.LedgerEvent, error) {
	var ev models.LedgerEvent
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
