package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cartKeyFormat = "storefront:cart:%s"
	cartTTL       = 30 * 24 * time.Hour
)

// envelope is the persisted shape: items only, no warnings, no explicit
// schema version field.
type envelope struct {
	Items []Item `json:"items"`
}

// RedisStorage persists one cart under a fixed key derived from the cart id.
type RedisStorage struct {
	client *redis.Client
	key    string
}

func NewRedisStorage(client *redis.Client, cartID string) *RedisStorage {
	return &RedisStorage{
		client: client,
		key:    fmt.Sprintf(cartKeyFormat, cartID),
	}
}

func (r *RedisStorage) Save(c context.Context, items []Item) error {
	payload, err := json.Marshal(envelope{Items: items})
	if err != nil {
		return fmt.Errorf("failed marshaling cart with error=%w", err)
	}
	err = r.client.Set(c, r.key, payload, cartTTL).Err()
	if err != nil {
		return fmt.Errorf("failed persisting cart with error=%w", err)
	}
	return nil
}

func (r *RedisStorage) Load(c context.Context) ([]Item, error) {
	payload, err := r.client.Get(c, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed loading cart with error=%w", err)
	}
	stored := envelope{}
	err = json.Unmarshal(payload, &stored)
	if err != nil {
		return nil, fmt.Errorf("failed unmarshaling cart with error=%w", err)
	}
	return stored.Items, nil
}
