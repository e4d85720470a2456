package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Customer struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	Phone          string
	DocumentType   string
	DocumentNumber string
}

type Order struct {
	ID               uuid.UUID
	CustomerID       uuid.UUID
	Status           string
	PaymentMethod    string
	PaymentReference string
	CityCode         string
	Address          string
	Notes            string
	Subtotal         decimal.Decimal
	ShippingCost     decimal.Decimal
	Total            decimal.Decimal
}

type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductVariantID int
	Quantity         int
	UnitPrice        decimal.Decimal
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// UpsertCustomer keys customers by email; a returning shopper updates their
// snapshot fields in place.
func (t *OrderRepository) UpsertCustomer(
	c context.Context,
	tx pgx.Tx,
	customer Customer,
) (Customer, error) {
	row := tx.QueryRow(
		c,
		`INSERT INTO customers (id, full_name, email, phone, document_type, document_number)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE SET
		   full_name = EXCLUDED.full_name,
		   phone = EXCLUDED.phone,
		   document_type = EXCLUDED.document_type,
		   document_number = EXCLUDED.document_number
		 RETURNING id, full_name, email, phone, document_type, document_number`,
		uuid.New(),
		customer.FullName,
		customer.Email,
		customer.Phone,
		customer.DocumentType,
		customer.DocumentNumber,
	)
	saved := Customer{}
	err := row.Scan(
		&saved.ID,
		&saved.FullName,
		&saved.Email,
		&saved.Phone,
		&saved.DocumentType,
		&saved.DocumentNumber,
	)
	if err != nil {
		return Customer{}, fmt.Errorf("failed upserting customer with error=%w", err)
	}
	return saved, nil
}

func (t *OrderRepository) InsertOrder(c context.Context, tx pgx.Tx, order Order) (Order, error) {
	row := tx.QueryRow(
		c,
		`INSERT INTO orders
		   (id, customer_id, status, payment_method, payment_reference,
		    city_code, address, notes, subtotal, shipping_cost, total)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		order.ID,
		order.CustomerID,
		order.Status,
		order.PaymentMethod,
		order.PaymentReference,
		order.CityCode,
		order.Address,
		order.Notes,
		order.Subtotal,
		order.ShippingCost,
		order.Total,
	)
	if err := row.Scan(&order.ID); err != nil {
		return Order{}, fmt.Errorf("failed inserting order with error=%w", err)
	}
	return order, nil
}

func (t *OrderRepository) InsertOrderItems(
	c context.Context,
	tx pgx.Tx,
	items []OrderItem,
) (int64, error) {
	rows := make([][]interface{}, len(items))
	for i, item := range items {
		rows[i] = []interface{}{
			item.ID,
			item.OrderID,
			item.ProductVariantID,
			item.Quantity,
			item.UnitPrice,
		}
	}
	inserted, err := tx.CopyFrom(
		c,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "product_variant_id", "quantity", "unit_price"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed inserting order items with error=%w", err)
	}
	return inserted, nil
}
