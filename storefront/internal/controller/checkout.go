package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/casamora/storefront/internal/errors"
	inHttp "github.com/casamora/storefront/internal/http"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/internal/validate"
	"github.com/casamora/storefront/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/internal/service"
	"github.com/casamora/storefront/storefront/pkg/request"
)

type CheckoutController struct {
	orders   service.OrderService
	shipping service.ShippingService
}

func AttachCheckoutController(
	router *mux.Router,
	orders service.OrderService,
	shipping service.ShippingService,
) {
	controller := CheckoutController{orders: orders, shipping: shipping}
	router.HandleFunc("/checkout/", controller.Checkout).Methods(http.MethodPost)
	router.HandleFunc("/shipping-quote/", controller.ShippingQuote).Methods(http.MethodGet)
	router.HandleFunc("/cities/", controller.Cities).Methods(http.MethodGet)
}

func (t CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"detail": "El cuerpo de la solicitud no es JSON válido.",
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Info().Msg("validating request body")
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, fieldErrorsFor(err))
		return
	}
	if err := reqBody.Normalize(); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"customer": map[string]interface{}{
				"phone": []string{err.Error()},
			},
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "checking out").Logger()
	logger.Info().Msg("checking out")
	c = logger.WithContext(c)
	order, err := t.orders.Checkout(c, reqBody)
	if err != nil {
		conflict := &service.StockConflictError{}
		if errors.As(err, &conflict) {
			logger.Error().Err(err).Msg("checkout rejected for stock conflict")
			inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
				"message":             "Hay productos sin stock suficiente.",
				"warningsByVariantId": conflict.Result.WarningsByVariantID,
				"items":               conflict.Result.Items,
			})
			return
		}
		err = fmt.Errorf("failed checking out with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"detail": "No se pudo crear la orden.",
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, order.OrderID.String()).Logger()
	logger.Info().Msg("checked out")

	inHttp.WriteJson(c, w, http.StatusCreated, order)
}

func (t CheckoutController) ShippingQuote(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController ShippingQuote")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutController ShippingQuote").
		Str(log.KeyProcess, "validating query params").
		Logger()

	cityCode := r.URL.Query().Get("city_code")
	subtotalRaw := r.URL.Query().Get("subtotal")
	if cityCode == "" || subtotalRaw == "" {
		logger.Error().Msg("city_code and subtotal are required")
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"detail": "city_code y subtotal son requeridos.",
		})
		return
	}
	subtotal, err := decimal.NewFromString(subtotalRaw)
	if err != nil {
		err = fmt.Errorf("failed parsing subtotal=%s with error=%w", subtotalRaw, err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"detail": "subtotal debe ser un número.",
		})
		return
	}

	logger = logger.With().
		Str(log.KeyProcess, "quoting shipping").
		Str(log.KeyCityCode, cityCode).
		Str(log.KeySubtotal, subtotal.String()).
		Logger()
	logger.Info().Msg("quoting shipping")
	quote, err := t.shipping.Quote(cityCode, subtotal)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJson(c, w, http.StatusBadRequest, map[string]interface{}{
			"detail": "city_code desconocido.",
		})
		return
	}
	logger.Info().Msg("quoted shipping")

	inHttp.WriteJson(c, w, http.StatusOK, quote)
}

func (t CheckoutController) Cities(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CheckoutController Cities")
	defer span.End()

	inHttp.WriteJson(c, w, http.StatusOK, map[string]interface{}{
		"cities": t.shipping.Cities(),
	})
}

// fieldErrorsFor renders validator failures in the nested field shape the
// storefront UI's error normalizer flattens (customer.phone style paths).
// Namespace carries json tag names, so dropping the root struct segment
// leaves the wire path: Checkout.customer.phone becomes customer.phone.
func fieldErrorsFor(err error) map[string]interface{} {
	out := map[string]interface{}{}
	validationErrors := validator.ValidationErrors{}
	if !errors.As(err, &validationErrors) {
		out["detail"] = "Solicitud inválida."
		return out
	}
	for _, fieldError := range validationErrors {
		path := fieldError.Namespace()
		if i := strings.Index(path, "."); i >= 0 {
			path = path[i+1:]
		}
		segments := strings.Split(path, ".")
		node := out
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[segment] = child
			}
			node = child
		}
		leaf := segments[len(segments)-1]
		if _, exists := node[leaf]; !exists {
			node[leaf] = []string{
				fmt.Sprintf("El campo no cumple la regla %s.", fieldError.Tag()),
			}
		}
	}
	return out
}
