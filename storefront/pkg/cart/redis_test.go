package cart

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupRedis(t *testing.T, c context.Context) *redis.Client {
	t.Helper()

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(redisContainer); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}
	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}
	client := redis.NewClient(redisOpt)
	t.Cleanup(func() { client.Close() })
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	return client
}

func TestRedisStorageRoundTrip(t *testing.T) {
	c := context.Background()
	client := setupRedis(t, c)

	storage := NewRedisStorage(client, "guest-42")
	items := []Item{
		{VariantID: 101, ProductName: "Camiseta", Price: "50000", Quantity: 3},
		{VariantID: 202, ProductName: "Gorra", Price: "30000", Quantity: 1},
	}

	assert.NoError(t, storage.Save(c, items))

	loaded, err := storage.Load(c)
	assert.NoError(t, err)
	assert.EqualValues(t, items, loaded)
}

func TestRedisStorageLoadMissingKey(t *testing.T) {
	c := context.Background()
	client := setupRedis(t, c)

	storage := NewRedisStorage(client, "never-saved")

	loaded, err := storage.Load(c)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorageIsolatedByCartID(t *testing.T) {
	c := context.Background()
	client := setupRedis(t, c)

	first := NewRedisStorage(client, "cart-a")
	second := NewRedisStorage(client, "cart-b")

	assert.NoError(t, first.Save(c, []Item{{VariantID: 101, Price: "50000", Quantity: 1}}))

	loaded, err := second.Load(c)
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}
