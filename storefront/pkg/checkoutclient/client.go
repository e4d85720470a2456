package checkoutclient

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
	"github.com/casamora/storefront/storefront/pkg/request"
	"github.com/casamora/storefront/storefront/pkg/response"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, client: otelhttp.DefaultClient}
}

// Checkout POSTs the order. Unlike the stock client this one does return
// errors: a non-2xx response comes back as *errors.ResponseError carrying the
// status and raw body, so the caller can run it through errors.Normalize and
// render the result.
func (t *Client) Checkout(
	c context.Context,
	param request.Checkout,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "CheckoutClient Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CheckoutClient Checkout").
		Int("items", len(param.Items)).
		Logger()

	payload, err := json.Marshal(param)
	if err != nil {
		err = fmt.Errorf("failed marshaling checkout request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	req, err := http.NewRequestWithContext(
		c,
		http.MethodPost,
		t.baseURL+"/checkout/",
		bytes.NewReader(payload),
	)
	if err != nil {
		err = fmt.Errorf("failed creating checkout request with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	req.Header.Set(inHttp.HeaderContentType, inHttp.HeaderValueJson)
	if requestID := log.RequestIDFromContext(c); requestID != "" {
		req.Header.Set(inHttp.HeaderRequestID, requestID)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed calling checkout with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed reading checkout response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		err = &inErrors.ResponseError{StatusCode: resp.StatusCode, Body: body}
		inErrors.HandleError(err, span)
		logger.Error().
			Err(err).
			Int("statusCode", resp.StatusCode).
			Msg("checkout returned a failure status")
		return response.Order{}, err
	}

	order := response.Order{}
	if err := json.Unmarshal(body, &order); err != nil {
		err = fmt.Errorf("failed unmarshaling checkout response with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Str(log.KeyOrderID, order.OrderID.String()).Msg("checked out")
	return order, nil
}
