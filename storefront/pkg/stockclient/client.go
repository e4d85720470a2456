package stockclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inErrors "github.com/casamora/storefront/internal/errors"
	inHttp "github.com/casamora/storefront/internal/http"
	"github.com/casamora/storefront/internal/log"
	"github.com/casamora/storefront/internal/otel"
	"github.com/casamora/storefront/storefront/pkg/cart"
)

const msgCouldNotValidate = "No se pudo validar el stock. Intenta de nuevo."

// Line is one {variant, quantity} pair submitted for validation.
type Line struct {
	ProductVariantID int `json:"product_variant_id"`
	Quantity         int `json:"quantity"`
}

// Row is a raw diagnostic row as reported by the stock-validate endpoint.
type Row struct {
	ProductVariantID *int   `json:"product_variant_id"`
	Requested        int    `json:"requested"`
	Available        int    `json:"available"`
	IsActive         bool   `json:"is_active"`
	OK               bool   `json:"ok"`
	Reason           string `json:"reason"`
}

// Result is always renderable: ValidateStock never returns an error that
// would crash the caller. On any transport or parsing failure OK is false,
// the maps are empty and Error carries a generic message.
type Result struct {
	OK                  bool                         `json:"ok"`
	WarningsByVariantID map[string]cart.StockWarning `json:"warningsByVariantId"`
	HintsByVariantID    map[string]cart.StockHint    `json:"hintsByVariantId"`
	Items               []Row                        `json:"items,omitempty"`
	Error               string                       `json:"error,omitempty"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient builds a client for the stock-validate endpoint. The otelhttp
// default client propagates the active trace context to the backend.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, client: otelhttp.DefaultClient}
}

// ValidateStock POSTs the current cart's lines and normalizes the response.
// Context cancellation is the abort signal: callers cancel superseded
// in-flight requests, or tolerate out-of-order application. Last request wins
// is NOT guaranteed by this component alone.
func (t *Client) ValidateStock(c context.Context, lines []Line) Result {
	c, span := otel.Tracer.Start(c, "StockClient ValidateStock")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "StockClient ValidateStock").
		Int("lines", len(lines)).
		Logger()

	payload, err := json.Marshal(map[string]interface{}{"items": lines})
	if err != nil {
		err = fmt.Errorf("failed marshaling stock-validate request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return failedResult()
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		t.baseURL+"/stock-validate/",
		bytes.NewReader(payload),
	)
	if err != nil {
		err = fmt.Errorf("failed creating stock-validate request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return failedResult()
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling stock-validate with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return failedResult()
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed reading stock-validate response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return failedResult()
	}

	result := parseResult(body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		// The proxy contract guarantees a well-formed error envelope on
		// failure statuses; whatever arrived, the caller still gets a
		// renderable fail-closed result.
		result.OK = false
		if result.Error == "" {
			result.Error = msgCouldNotValidate
		}
		logger.Info().
			Int("statusCode", resp.StatusCode).
			Msg("stock-validate returned a failure status")
		return result
	}
	return result
}

// parseResult coerces the raw JSON into the typed result exactly once, at the
// boundary. Malformed or missing fields degrade to empty values instead of
// failing the whole response.
func parseResult(body []byte) Result {
	result := Result{
		WarningsByVariantID: map[string]cart.StockWarning{},
		HintsByVariantID:    map[string]cart.StockHint{},
	}

	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &raw); err != nil {
		result.Error = msgCouldNotValidate
		return result
	}

	// ok is fail-closed: nothing but an explicit JSON true counts.
	result.OK = bytes.Equal(bytes.TrimSpace(raw["ok"]), []byte("true"))

	if rawWarnings, ok := raw["warningsByVariantId"]; ok {
		entries := map[string]json.RawMessage{}
		if err := json.Unmarshal(rawWarnings, &entries); err == nil {
			for key, entry := range entries {
				warning := cart.StockWarning{}
				if err := json.Unmarshal(entry, &warning); err != nil {
					continue
				}
				result.WarningsByVariantID[key] = warning
			}
		}
	}

	if rawHints, ok := raw["hintsByVariantId"]; ok {
		entries := map[string]json.RawMessage{}
		if err := json.Unmarshal(rawHints, &entries); err == nil {
			for key, entry := range entries {
				hint := cart.StockHint{}
				if err := json.Unmarshal(entry, &hint); err != nil {
					continue
				}
				result.HintsByVariantID[key] = hint
			}
		}
	}

	if rawItems, ok := raw["items"]; ok {
		rows := []Row{}
		if err := json.Unmarshal(rawItems, &rows); err == nil {
			result.Items = rows
		}
	}

	if rawError, ok := raw["error"]; ok {
		message := ""
		if err := json.Unmarshal(rawError, &message); err == nil {
			result.Error = message
		}
	}

	// Older backend responses carry only diagnostic rows; derive warnings
	// from them so the UI still gets per-variant annotations. Reasons pass
	// through verbatim (open taxonomy).
	if len(result.WarningsByVariantID) == 0 {
		for _, row := range result.Items {
			if row.OK || row.ProductVariantID == nil {
				continue
			}
			status := cart.Status(row.Reason)
			if row.Reason == "" {
				status = cart.StatusError
			}
			result.WarningsByVariantID[keyFor(*row.ProductVariantID)] = cart.StockWarning{
				Status:    status,
				Available: row.Available,
				Requested: row.Requested,
			}
		}
	}

	return result
}

func failedResult() Result {
	return Result{
		OK:                  false,
		WarningsByVariantID: map[string]cart.StockWarning{},
		HintsByVariantID:    map[string]cart.StockHint{},
		Error:               msgCouldNotValidate,
	}
}

func keyFor(variantID int) string {
	return fmt.Sprintf("%d", variantID)
}
