package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/casamora/storefront/internal/auth"
	"github.com/casamora/storefront/internal/config"
	inErrors "github.com/casamora/storefront/internal/errors"
	inHttp "github.com/casamora/storefront/internal/http"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/internal/middleware"
	"github.com/casamora/storefront/internal/validate"
	"github.com/casamora/storefront/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/internal/repository"
	"github.com/casamora/storefront/storefront/pkg/response"
)

type AdminController struct {
	cfg      config.Application
	variants *repository.VariantRepository
}

func AttachAdminController(
	router *mux.Router,
	cfg config.Application,
	variants *repository.VariantRepository,
) {
	controller := AdminController{cfg: cfg, variants: variants}
	router.HandleFunc("/admin/login", controller.Login).Methods(http.MethodPost)

	protected := router.PathPrefix("/admin").Subrouter()
	protected.Use(middleware.Auth(cfg))
	protected.HandleFunc("/variants/{id}/stock", controller.UpdateStock).
		Methods(http.MethodPut)
	protected.HandleFunc("/variants/{id}/price", controller.UpdatePrice).
		Methods(http.MethodPut)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type updateStockRequest struct {
	Stock *int `json:"stock" validate:"required,min=0"`
}

type updatePriceRequest struct {
	Price string `json:"price" validate:"required,price"`
}

// variantResponse keeps the repository model off the wire.
func variantResponse(v repository.Variant) response.Variant {
	return response.Variant{
		ID:          v.ID,
		ProductID:   v.ProductID,
		ProductName: v.ProductName,
		ProductSlug: v.ProductSlug,
		Label:       v.Label,
		Price:       v.Price,
		Stock:       v.Stock,
		IsActive:    v.IsActive,
	}
}

func (t AdminController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController Login").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := loginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "failed decoding request body",
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
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "username and password are required",
		})
		return
	}
	logger.Info().Msg("validated request body")

	logger = logger.With().Str(log.KeyProcess, "verifying credentials").Logger()
	logger.Info().Msg("verifying credentials")
	c = logger.WithContext(c)
	if err := auth.VerifyCredentials(t.cfg, reqBody.Username, reqBody.Password); err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusUnauthorized,
			"message":    inErrors.ErrInvalidCredentials.Error(),
		})
		return
	}
	logger.Info().Msg("verified credentials")

	logger = logger.With().Str(log.KeyProcess, "minting token").Logger()
	logger.Info().Msg("minting token")
	token, err := auth.MintToken(c, t.cfg)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusInternalServerError,
			"message":    "failed minting token",
		})
		return
	}
	logger.Info().Msg("minted token")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "logged in",
		"data": map[string]interface{}{
			"token": token,
		},
	})
}

func (t AdminController) UpdateStock(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController UpdateStock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController UpdateStock").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing path params").Logger()
	logger.Info().Msg("parsing path params")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		err = fmt.Errorf("failed parsing variant id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "variant id must be an integer",
		})
		return
	}
	logger = logger.With().Int(log.KeyVariantID, id).Logger()
	logger.Info().Msg("parsed path params")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := updateStockRequest{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "failed decoding request body",
		})
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "stock must be an integer >= 0",
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating stock").Logger()
	logger.Info().Msg("updating stock")
	c = logger.WithContext(c)
	variant, err := t.variants.UpdateStock(c, id, *reqBody.Stock)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		message := "failed updating stock"
		if errors.Is(err, repository.ErrVariantNotFound) {
			statusCode = http.StatusNotFound
			message = repository.ErrVariantNotFound.Error()
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    message,
		})
		return
	}
	logger.Info().Msg("updated stock")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated stock",
		"data": map[string]interface{}{
			"variant": variantResponse(variant),
		},
	})
}

func (t AdminController) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminController UpdatePrice")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "AdminController UpdatePrice").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing path params").Logger()
	logger.Info().Msg("parsing path params")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		err = fmt.Errorf("failed parsing variant id with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "variant id must be an integer",
		})
		return
	}
	logger = logger.With().Int(log.KeyVariantID, id).Logger()
	logger.Info().Msg("parsed path params")

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Info().Msg("decoding request body")
	reqBody := updatePriceRequest{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "failed decoding request body",
		})
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "price must be a positive decimal string",
		})
		return
	}
	logger.Info().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "updating price").Logger()
	logger.Info().Msg("updating price")
	price, err := decimal.NewFromString(reqBody.Price)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    "price must be a positive decimal string",
		})
		return
	}
	c = logger.WithContext(c)
	variant, err := t.variants.UpdatePrice(c, id, price)
	if err != nil {
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		statusCode := http.StatusInternalServerError
		message := "failed updating price"
		if errors.Is(err, repository.ErrVariantNotFound) {
			statusCode = http.StatusNotFound
			message = repository.ErrVariantNotFound.Error()
		}
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": statusCode,
			"message":    message,
		})
		return
	}
	logger.Info().Msg("updated price")

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated price",
		"data": map[string]interface{}{
			"variant": variantResponse(variant),
		},
	})
}
