package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	inErrors "github.com/casamora/storefront/internal/errors"
	inHttp "github.com/casamora/storefront/internal/http"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/internal/service"
	"github.com/casamora/storefront/storefront/pkg/request"
	"github.com/casamora/storefront/storefront/pkg/response"
)

type StockController struct {
	service service.StockService
}

func AttachStockController(router *mux.Router, service service.StockService) {
	controller := StockController{service: service}
	router.HandleFunc("/stock-validate/", controller.ValidateStock).Methods(http.MethodPost)
}

// ValidateStock implements POST /stock-validate/. The endpoint never surfaces
// a 500 for parsing problems: malformed input degrades to a 400 with the
// well-formed error envelope the UI expects.
func (t StockController) ValidateStock(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "StockController ValidateStock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StockController ValidateStock").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	body := map[string]json.RawMessage{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeStockError(c, w, http.StatusBadRequest, request.ErrItemsRequired.Error())
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "normalizing items").Logger()
	logger.Info().Msg("normalizing items")
	items, err := request.NormalizeStockItems(body["items"])
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeStockError(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger.Info().Msgf("normalized %d items", len(items))

	// An explicitly empty list is a valid request: 200 with empty maps, so
	// the UI needs no guessing. A list that normalized away entirely is not.
	if len(items) == 0 {
		rawRows := []json.RawMessage{}
		if unmarshalErr := json.Unmarshal(body["items"], &rawRows); unmarshalErr == nil &&
			len(rawRows) == 0 {
			inHttp.WriteJson(c, w, http.StatusOK, response.StockValidate{
				OK:                  true,
				WarningsByVariantID: map[string]response.StockWarning{},
				HintsByVariantID:    map[string]response.StockHint{},
			})
			return
		}
		writeStockError(
			c,
			w,
			http.StatusBadRequest,
			"items debe incluir al menos un product_variant_id válido",
		)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "validating stock").Logger()
	logger.Info().Msg("validating stock")
	c = logger.WithContext(c)
	result, err := t.service.ValidateStock(c, items)
	if err != nil {
		err = fmt.Errorf("failed validating stock with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeStockError(c, w, http.StatusBadGateway, "Error inesperado al validar stock.")
		return
	}
	logger.Info().Msg("validated stock")

	inHttp.WriteJson(c, w, http.StatusOK, result)
}

func writeStockError(c context.Context, w http.ResponseWriter, statusCode int, message string) {
	inHttp.WriteJson(c, w, statusCode, response.StockValidate{
		OK:                  false,
		WarningsByVariantID: map[string]response.StockWarning{},
		HintsByVariantID:    map[string]response.StockHint{},
		Error:               message,
	})
}
