package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	variantCacheKey = "storefront:variant:%d"
	variantCacheTTL = 5 * time.Minute
)

var ErrVariantNotFound = errors.New("product variant not found")

type Variant struct {
	ID          int             `json:"id"`
	ProductID   int             `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductSlug string          `json:"product_slug"`
	Label       string          `json:"label"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
}

type VariantRepository struct {
	pool  *pgxpool.Pool
	cache *redis.Client
}

func NewVariantRepository(pool *pgxpool.Pool, cache *redis.Client) *VariantRepository {
	return &VariantRepository{pool: pool, cache: cache}
}

const selectVariantColumns = `id, product_id, product_name, product_slug, label, price, stock, is_active`

func scanVariant(row pgx.Row) (Variant, error) {
	v := Variant{}
	err := row.Scan(
		&v.ID,
		&v.ProductID,
		&v.ProductName,
		&v.ProductSlug,
		&v.Label,
		&v.Price,
		&v.Stock,
		&v.IsActive,
	)
	return v, err
}

// FindVariantsByIds resolves variants cache-aside: per-variant redis entries
// first, the database for the misses. Ids not present in either are simply
// absent from the returned map.
func (t *VariantRepository) FindVariantsByIds(
	c context.Context,
	ids []int,
) (map[int]Variant, error) {
	variants := make(map[int]Variant, len(ids))
	misses := make([]int, 0, len(ids))

	for _, id := range ids {
		cached, err := t.cache.Get(c, fmt.Sprintf(variantCacheKey, id)).Bytes()
		if err != nil {
			misses = append(misses, id)
			continue
		}
		v := Variant{}
		if err := json.Unmarshal(cached, &v); err != nil {
			misses = append(misses, id)
			continue
		}
		variants[v.ID] = v
	}
	if len(misses) == 0 {
		return variants, nil
	}

	rows, err := t.pool.Query(
		c,
		`SELECT `+selectVariantColumns+` FROM product_variants WHERE id = ANY($1)`,
		misses,
	)
	if err != nil {
		return nil, fmt.Errorf("failed finding variants with error=%w", err)
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning variant with error=%w", err)
		}
		variants[v.ID] = v

		payload, err := json.Marshal(v)
		if err != nil {
			continue
		}
		t.cache.Set(c, fmt.Sprintf(variantCacheKey, v.ID), payload, variantCacheTTL)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating variants with error=%w", err)
	}
	return variants, nil
}

// FindVariantByIdForUpdate locks the variant row for the duration of the
// surrounding transaction. Checkout uses this to decrement stock without
// overselling under concurrent orders.
func (t *VariantRepository) FindVariantByIdForUpdate(
	c context.Context,
	tx pgx.Tx,
	id int,
) (Variant, error) {
	v, err := scanVariant(tx.QueryRow(
		c,
		`SELECT `+selectVariantColumns+` FROM product_variants WHERE id = $1 FOR UPDATE`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrVariantNotFound
		}
		return Variant{}, fmt.Errorf("failed locking variant id=%d with error=%w", id, err)
	}
	return v, nil
}

func (t *VariantRepository) DecrementStock(
	c context.Context,
	tx pgx.Tx,
	id int,
	quantity int,
) error {
	tag, err := tx.Exec(
		c,
		`UPDATE product_variants SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
		id,
		quantity,
	)
	if err != nil {
		return fmt.Errorf("failed decrementing stock for variant id=%d with error=%w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variant id=%d has insufficient stock", id)
	}
	t.invalidate(c, id)
	return nil
}

// UpdateStock sets an absolute stock count. Used by the admin adjustment
// endpoint.
func (t *VariantRepository) UpdateStock(c context.Context, id, stock int) (Variant, error) {
	v, err := scanVariant(t.pool.QueryRow(
		c,
		`UPDATE product_variants SET stock = $2 WHERE id = $1 RETURNING `+selectVariantColumns,
		id,
		stock,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrVariantNotFound
		}
		return Variant{}, fmt.Errorf("failed updating stock for variant id=%d with error=%w", id, err)
	}
	t.invalidate(c, id)
	return v, nil
}

// UpdatePrice sets an absolute price. Used by the admin adjustment endpoint.
func (t *VariantRepository) UpdatePrice(
	c context.Context,
	id int,
	price decimal.Decimal,
) (Variant, error) {
	v, err := scanVariant(t.pool.QueryRow(
		c,
		`UPDATE product_variants SET price = $2 WHERE id = $1 RETURNING `+selectVariantColumns,
		id,
		price,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Variant{}, ErrVariantNotFound
		}
		return Variant{}, fmt.Errorf("failed updating price for variant id=%d with error=%w", id, err)
	}
	t.invalidate(c, id)
	return v, nil
}

func (t *VariantRepository) invalidate(c context.Context, id int) {
	t.cache.Del(c, fmt.Sprintf(variantCacheKey, id))
}
