package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL est la durée de vie d'un panier inactif
const DefaultTTL = 24 * time.Hour

// Messages publiés sur le canal du panier
const (
	MessageUpdated = "updated"
	MessageCleared = "cleared"
)

type Store interface {
	Create(ctx context.Context) (*Cart, error)
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

func key(id string) string { return "cart:" + id }

// RedisStore garde chaque panier sous cart:<id> en JSON et publie ses changements
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func (s *RedisStore) Create(ctx context.Context) (*Cart, error) {
	c := &Cart{ID: uuid.NewString(), UpdatedAt: s.now()}
	if err := s.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*Cart, error) {
	data, err := s.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, c *Cart) error {
	c.UpdatedAt = s.now()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, key(c.ID), data, s.ttl)
	pipe.Publish(ctx, key(c.ID), MessageUpdated)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, key(id))
	pipe.Publish(ctx, key(id), MessageCleared)
	_, err := pipe.Exec(ctx)
	return err
}

// Subscribe ouvre l'abonnement aux changements d'un panier
func (s *RedisStore) Subscribe(ctx context.Context, id string) *redis.PubSub {
	return s.client.Subscribe(ctx, key(id))
}

// MemoryStore sert quand Redis n'est pas configuré (pas de TTL, pas de pub/sub)
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Create(ctx context.Context) (*Cart, error) {
	c := &Cart{ID: uuid.NewString(), UpdatedAt: time.Now()}
	return c, s.Save(ctx, c)
}

func (s *MemoryStore) Load(ctx context.Context, id string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, ErrCartNotFound
	}
	c.Lines = append(c.Lines[:0:0], c.Lines...)
	return &c, nil
}

func (s *MemoryStore) Save(ctx context.Context, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = time.Now()
	stored := *c
	stored.Lines = append(c.Lines[:0:0], c.Lines...)
	s.carts[c.ID] = stored
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}
