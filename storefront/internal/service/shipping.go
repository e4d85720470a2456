package service

import (
	"github.com/shopspring/decimal"

	"github.com/casamora/storefront/internal/config"
	inErrors "github.com/casamora/storefront/internal/errors"
	"github.com/casamora/storefront/storefront/pkg/response"
)

const BogotaCode = "BOG"

var cities = []response.City{
	{Code: "BOG", Label: "Bogotá"},
	{Code: "MED", Label: "Medellín"},
	{Code: "CLO", Label: "Cali"},
	{Code: "BAQ", Label: "Barranquilla"},
	{Code: "CTG", Label: "Cartagena"},
	{Code: "BGA", Label: "Bucaramanga"},
	{Code: "PEI", Label: "Pereira"},
	{Code: "SMR", Label: "Santa Marta"},
}

// ShippingService is the single source of truth for shipping cost: the quote
// endpoint and checkout both go through Quote, so the numbers can never
// disagree.
type ShippingService struct {
	freeThreshold decimal.Decimal
	bogotaCost    decimal.Decimal
	nationalCost  decimal.Decimal
}

func NewShippingService(cfg config.Shipping) (ShippingService, error) {
	freeThreshold, err := decimal.NewFromString(cfg.FreeThreshold)
	if err != nil {
		return ShippingService{}, err
	}
	bogotaCost, err := decimal.NewFromString(cfg.BogotaCost)
	if err != nil {
		return ShippingService{}, err
	}
	nationalCost, err := decimal.NewFromString(cfg.NationalCost)
	if err != nil {
		return ShippingService{}, err
	}
	return ShippingService{
		freeThreshold: freeThreshold,
		bogotaCost:    bogotaCost,
		nationalCost:  nationalCost,
	}, nil
}

func (s ShippingService) Cities() []response.City {
	return cities
}

func (s ShippingService) KnownCity(cityCode string) bool {
	for _, city := range cities {
		if city.Code == cityCode {
			return true
		}
	}
	return false
}

// Quote applies the shipping rules: free above the threshold, the Bogotá flat
// rate for Bogotá, the national flat rate otherwise.
func (s ShippingService) Quote(
	cityCode string,
	subtotal decimal.Decimal,
) (response.ShippingQuote, error) {
	if !s.KnownCity(cityCode) {
		return response.ShippingQuote{}, inErrors.ErrUnknownCity
	}
	quote := response.ShippingQuote{CityCode: cityCode}
	if subtotal.GreaterThanOrEqual(s.freeThreshold) {
		quote.ShippingCost = decimal.Zero
		quote.FreeShipping = true
		return quote, nil
	}
	if cityCode == BogotaCode {
		quote.ShippingCost = s.bogotaCost
		return quote, nil
	}
	quote.ShippingCost = s.nationalCost
	return quote, nil
}
