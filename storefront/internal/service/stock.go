package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	inErrors "github.com/casamora/storefront/internal/errors"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/internal/repository"
	"github.com/casamora/storefront/storefront/pkg/request"
	"github.com/casamora/storefront/storefront/pkg/response"
)

const (
	ReasonMissing      = "missing"
	ReasonInactive     = "inactive"
	ReasonInsufficient = "insufficient"

	HintLastUnit = "last_unit"
)

type StockService struct {
	variants *repository.VariantRepository
}

func NewStockService(variants *repository.VariantRepository) StockService {
	return StockService{variants: variants}
}

// ValidateStock checks the requested lines against current stock and builds
// the warning/hint maps of the stock-validate contract. One source of truth:
// checkout re-uses these rules before creating an order.
//
// Rules per line: quantity must be >= 1, the variant must exist, must be
// active, and stock must cover the requested quantity.
func (s StockService) ValidateStock(
	c context.Context,
	items []request.StockItem,
) (response.StockValidate, error) {
	c, span := otel.Tracer.Start(c, "StockService ValidateStock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StockService ValidateStock").
		Int("items", len(items)).
		Logger()

	result := response.StockValidate{
		OK:                  true,
		WarningsByVariantID: map[string]response.StockWarning{},
		HintsByVariantID:    map[string]response.StockHint{},
	}
	if len(items) == 0 {
		return result, nil
	}

	logger = logger.With().Str(log.KeyProcess, "finding variants").Logger()
	logger.Info().Msg("finding variants")
	ids := make([]int, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductVariantID)
	}
	c = logger.WithContext(c)
	variants, err := s.variants.FindVariantsByIds(c, ids)
	if err != nil {
		err = fmt.Errorf("failed finding variants with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.StockValidate{}, err
	}
	logger.Info().Msgf("found %d variants", len(variants))

	logger = logger.With().Str(log.KeyProcess, "validating stock").Logger()
	logger.Info().Msg("validating stock")
	for _, item := range items {
		key := strconv.Itoa(item.ProductVariantID)
		row := response.StockRow{
			Requested: item.Quantity,
		}

		variant, ok := variants[item.ProductVariantID]
		if !ok {
			row.Reason = ReasonMissing
			result.Items = append(result.Items, row)
			result.WarningsByVariantID[key] = response.StockWarning{
				Status:    ReasonMissing,
				Requested: item.Quantity,
				Message:   "Variante no encontrada.",
			}
			continue
		}

		variantID := variant.ID
		row.ProductVariantID = &variantID
		row.Available = variant.Stock
		row.IsActive = variant.IsActive

		if !variant.IsActive {
			row.Reason = ReasonInactive
			result.Items = append(result.Items, row)
			result.WarningsByVariantID[key] = response.StockWarning{
				Status:    ReasonInactive,
				Available: variant.Stock,
				Requested: item.Quantity,
				Message:   "Variante inactiva.",
			}
			continue
		}

		if variant.Stock < item.Quantity {
			row.Reason = ReasonInsufficient
			result.Items = append(result.Items, row)
			result.WarningsByVariantID[key] = response.StockWarning{
				Status:    ReasonInsufficient,
				Available: variant.Stock,
				Requested: item.Quantity,
				Message:   fmt.Sprintf("Stock insuficiente. Disponible: %d", variant.Stock),
			}
			continue
		}

		row.OK = true
		result.Items = append(result.Items, row)
		if variant.Stock == 1 && item.Quantity == 1 {
			result.HintsByVariantID[key] = response.StockHint{
				Kind:    HintLastUnit,
				Message: "Última unidad disponible",
			}
		}
	}

	// A variant never carries both a hint and a warning.
	for key := range result.WarningsByVariantID {
		delete(result.HintsByVariantID, key)
	}
	result.OK = len(result.WarningsByVariantID) == 0

	logger.Info().
		Int(log.KeyWarnings, len(result.WarningsByVariantID)).
		Int(log.KeyHints, len(result.HintsByVariantID)).
		Msg("validated stock")
	return result, nil
}
