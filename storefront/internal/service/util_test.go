package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/casamora/storefront/internal/config"
	"github.com/casamora/storefront/storefront/internal/repository"
)

type harness struct {
	pool           *pgxpool.Pool
	cache          *redis.Client
	pgContainer    *postgres.PostgresContainer
	redisContainer *testRedis.RedisContainer
	variants       *repository.VariantRepository
	orders         *repository.OrderRepository
	stock          StockService
	shipping       ShippingService
	orderService   OrderService
}

func setup(t *testing.T, c context.Context, seedPaths ...string) *harness {
	t.Helper()

	initScripts := append(
		[]string{filepath.Join("..", "..", "..", "migrations", "000001_init_storefront.up.sql")},
		seedPaths...,
	)
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(initScripts...),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgConfig, err := pgxpool.ParseConfig(pgConnStr)
	if err != nil {
		t.Fatalf("failed parsing pgx config with error: %s", err)
	}

	pool, err := pgxpool.NewWithConfig(c, pgConfig)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}
	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	cache := redis.NewClient(redisOpt)
	if err = cache.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	variants := repository.NewVariantRepository(pool, cache)
	orders := repository.NewOrderRepository(pool)
	stock := NewStockService(variants)
	shipping, err := NewShippingService(config.Shipping{
		FreeThreshold: "150000",
		BogotaCost:    "8000",
		NationalCost:  "15000",
	})
	if err != nil {
		t.Fatalf("failed building shipping service with error: %s", err)
	}
	orderService := NewOrderService(pool, variants, orders, stock, shipping)

	return &harness{
		pool:           pool,
		cache:          cache,
		pgContainer:    pgContainer,
		redisContainer: redisContainer,
		variants:       variants,
		orders:         orders,
		stock:          stock,
		shipping:       shipping,
		orderService:   orderService,
	}
}

func (h *harness) teardown(t *testing.T) {
	t.Helper()
	h.cache.Close()
	h.pool.Close()
	if err := testcontainers.TerminateContainer(h.pgContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := testcontainers.TerminateContainer(h.redisContainer); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}
