package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/casamora/storefront/internal/errors"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/internal/repository"
	"github.com/casamora/storefront/storefront/pkg/request"
	"github.com/casamora/storefront/storefront/pkg/response"
)

const StatusPendingPayment = "pending_payment"

// StockConflictError carries the per-variant diagnosis of a checkout rejected
// for stock reasons, so the controller can answer with the same shape the
// stock-validate endpoint uses.
type StockConflictError struct {
	Result response.StockValidate
}

func (e *StockConflictError) Error() string {
	return "stock conflict"
}

type OrderService struct {
	pool     *pgxpool.Pool
	variants *repository.VariantRepository
	orders   *repository.OrderRepository
	stock    StockService
	shipping ShippingService
}

func NewOrderService(
	pool *pgxpool.Pool,
	variants *repository.VariantRepository,
	orders *repository.OrderRepository,
	stock StockService,
	shipping ShippingService,
) OrderService {
	return OrderService{
		pool:     pool,
		variants: variants,
		orders:   orders,
		stock:    stock,
		shipping: shipping,
	}
}

// Checkout re-validates stock strictly, then creates the order and its items
// in one transaction, decrementing stock under row locks.
func (s OrderService) Checkout(
	c context.Context,
	param request.Checkout,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService Checkout").
		Int("items", len(param.Items)).
		Str(log.KeyCityCode, param.ShippingAddress.CityCode).
		Logger()

	if len(param.Items) == 0 {
		return response.Order{}, inErrors.ErrEmptyCart
	}
	if !s.shipping.KnownCity(param.ShippingAddress.CityCode) {
		return response.Order{}, inErrors.ErrUnknownCity
	}

	logger = logger.With().Str(log.KeyProcess, "validating stock").Logger()
	logger.Info().Msg("validating stock")
	stockItems := make([]request.StockItem, 0, len(param.Items))
	for _, item := range param.Items {
		stockItems = append(stockItems, request.StockItem{
			ProductVariantID: item.ProductVariantID,
			Quantity:         item.Quantity,
		})
	}
	c = logger.WithContext(c)
	validation, err := s.stock.ValidateStock(c, stockItems)
	if err != nil {
		err = fmt.Errorf("failed validating stock with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if !validation.OK {
		err = &StockConflictError{Result: validation}
		inErrors.HandleError(err, span)
		logger.Error().
			Err(err).
			Int(log.KeyWarnings, len(validation.WarningsByVariantID)).
			Msg("checkout rejected for stock conflict")
		return response.Order{}, err
	}
	logger.Info().Msg("validated stock")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Info().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("initialized transaction")
	defer func(lg zerolog.Logger) {
		rollbackErr := tx.Rollback(c)
		if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			rollbackErr = fmt.Errorf("failed rolling back transaction with error=%w", rollbackErr)
			inErrors.HandleError(rollbackErr, span)
			lg.Error().Err(rollbackErr).Msg(rollbackErr.Error())
		}
	}(logger)

	logger = logger.With().Str(log.KeyProcess, "locking variants").Logger()
	logger.Info().Msg("locking variants and decrementing stock")
	subtotal := decimal.Zero
	orderItems := make([]repository.OrderItem, 0, len(param.Items))
	for _, item := range param.Items {
		variant, err := s.variants.FindVariantByIdForUpdate(c, tx, item.ProductVariantID)
		if err != nil {
			err = fmt.Errorf(
				"failed locking variantId=%d with error=%w",
				item.ProductVariantID,
				err,
			)
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if !variant.IsActive || variant.Stock < item.Quantity {
			// Stock moved between the strict validation and the lock.
			err = &StockConflictError{Result: conflictFor(variant, item.Quantity)}
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msgf("variantId=%d no longer sellable", variant.ID)
			return response.Order{}, err
		}
		if err := s.variants.DecrementStock(c, tx, variant.ID, item.Quantity); err != nil {
			inErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		subtotal = subtotal.Add(
			variant.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		)
		orderItems = append(orderItems, repository.OrderItem{
			ID:               uuid.New(),
			ProductVariantID: variant.ID,
			Quantity:         item.Quantity,
			UnitPrice:        variant.Price,
		})
	}
	logger = logger.With().Str(log.KeySubtotal, subtotal.String()).Logger()
	logger.Info().Msg("locked variants and decremented stock")

	logger = logger.With().Str(log.KeyProcess, "upserting customer").Logger()
	logger.Info().Msg("upserting customer")
	customer, err := s.orders.UpsertCustomer(c, tx, repository.Customer{
		FullName:       param.Customer.FullName,
		Email:          param.Customer.Email,
		Phone:          param.Customer.Phone,
		DocumentType:   param.Customer.DocumentType,
		DocumentNumber: param.Customer.DocumentNumber,
	})
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("upserted customer")

	logger = logger.With().Str(log.KeyProcess, "inserting order").Logger()
	logger.Info().Msg("inserting order")
	quote, err := s.shipping.Quote(param.ShippingAddress.CityCode, subtotal)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	orderID := uuid.New()
	order := repository.Order{
		ID:               orderID,
		CustomerID:       customer.ID,
		Status:           StatusPendingPayment,
		PaymentMethod:    param.PaymentMethod,
		PaymentReference: paymentReference(orderID),
		CityCode:         param.ShippingAddress.CityCode,
		Address:          param.ShippingAddress.Address,
		Notes:            param.ShippingAddress.Notes,
		Subtotal:         subtotal,
		ShippingCost:     quote.ShippingCost,
		Total:            subtotal.Add(quote.ShippingCost),
	}
	order, err = s.orders.InsertOrder(c, tx, order)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	for i := range orderItems {
		orderItems[i].OrderID = order.ID
	}
	insertedCount, err := s.orders.InsertOrderItems(c, tx, orderItems)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().
		Str(log.KeyOrderID, order.ID.String()).
		Int64("orderItems", insertedCount).
		Logger()
	logger.Info().Msg("inserted order")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Info().Msg("committing transaction")
	err = tx.Commit(c)
	if err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Msg("committed transaction")

	return response.Order{
		OrderID:          order.ID,
		PaymentReference: order.PaymentReference,
		Status:           order.Status,
		Subtotal:         order.Subtotal,
		ShippingCost:     order.ShippingCost,
		Total:            order.Total,
	}, nil
}

func conflictFor(variant repository.Variant, requested int) response.StockValidate {
	key := fmt.Sprintf("%d", variant.ID)
	status := ReasonInsufficient
	message := fmt.Sprintf("Stock insuficiente. Disponible: %d", variant.Stock)
	if !variant.IsActive {
		status = ReasonInactive
		message = "Variante inactiva."
	}
	return response.StockValidate{
		OK: false,
		WarningsByVariantID: map[string]response.StockWarning{
			key: {
				Status:    status,
				Available: variant.Stock,
				Requested: requested,
				Message:   message,
			},
		},
		HintsByVariantID: map[string]response.StockHint{},
	}
}

func paymentReference(orderID uuid.UUID) string {
	return "CM-" + strings.ToUpper(strings.ReplaceAll(orderID.String(), "-", "")[:10])
}
