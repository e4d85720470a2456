package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/casamora/storefront/internal/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Add(HeaderContentType, HeaderValueJson)
	for k, v := range header {
		w.Header().Add(k, v)
	}

	if v, ok := body["statusCode"]; ok {
		w.WriteHeader(v.(int))
	}

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error().Err(err).Msgf("failed encoding response body with error=%s", err.Error())
		return
	}
}

// WriteJson writes a bare body without the status/data envelope. Contract
// endpoints consumed by the storefront UI (stock-validate, checkout) use the
// body shapes their clients were built against.
func WriteJson(c context.Context, w http.ResponseWriter, statusCode int, body interface{}) {
	c, span := otel.Tracer.Start(c, "WriteJson")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJson").Logger()

	w.Header().Add(HeaderContentType, HeaderValueJson)
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		logger.Error().Err(err).Msgf("failed encoding response body with error=%s", err.Error())
		return
	}
}
