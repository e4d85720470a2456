package stockclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/casamora/storefront/storefront/pkg/cart"
)

func TestValidateStock(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		expected   func(t *testing.T, actual Result)
	}{
		{
			name:       "given ok true and warnings should parse both maps",
			statusCode: http.StatusOK,
			body: `{
				"ok": true,
				"warningsByVariantId": {},
				"hintsByVariantId": {"101": {"kind": "last_unit", "message": "Última unidad disponible"}}
			}`,
			expected: func(t *testing.T, actual Result) {
				assert.True(t, actual.OK)
				assert.Empty(t, actual.WarningsByVariantID)
				assert.EqualValues(t, "last_unit", actual.HintsByVariantID["101"].Kind)
			},
		},
		{
			name:       "given ok false with warning entries should surface them",
			statusCode: http.StatusOK,
			body: `{
				"ok": false,
				"warningsByVariantId": {
					"101": {"status": "exceeds_stock", "available": 2, "requested": 3}
				},
				"hintsByVariantId": {}
			}`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				warning := actual.WarningsByVariantID["101"]
				assert.EqualValues(t, cart.StatusExceedsStock, warning.Status)
				assert.EqualValues(t, 2, warning.Available)
				assert.EqualValues(t, 3, warning.Requested)
			},
		},
		{
			name:       "given malformed warning entries should keep the rest and not panic",
			statusCode: http.StatusOK,
			body: `{
				"ok": false,
				"warningsByVariantId": {
					"101": "not-an-object",
					"202": {"status": "insufficient", "available": 1, "requested": 4}
				}
			}`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				assert.Len(t, actual.WarningsByVariantID, 1)
				assert.EqualValues(t, cart.StatusInsufficient, actual.WarningsByVariantID["202"].Status)
			},
		},
		{
			name:       "given ok as string should stay fail-closed",
			statusCode: http.StatusOK,
			body:       `{"ok": "true", "warningsByVariantId": {}, "hintsByVariantId": {}}`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
			},
		},
		{
			name:       "given only diagnostic rows should derive warnings from them",
			statusCode: http.StatusOK,
			body: `{
				"ok": false,
				"items": [
					{"product_variant_id": 101, "requested": 3, "available": 2, "is_active": true, "ok": false, "reason": "exceeds_stock"},
					{"product_variant_id": 202, "requested": 1, "available": 5, "is_active": true, "ok": true}
				]
			}`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				assert.Len(t, actual.WarningsByVariantID, 1)
				warning := actual.WarningsByVariantID["101"]
				assert.EqualValues(t, cart.StatusExceedsStock, warning.Status)
				assert.EqualValues(t, 2, warning.Available)
				assert.EqualValues(t, 3, warning.Requested)
			},
		},
		{
			name:       "given diagnostic row without reason should fall back to error status",
			statusCode: http.StatusOK,
			body: `{
				"ok": false,
				"items": [
					{"product_variant_id": 101, "requested": 1, "available": 0, "ok": false}
				]
			}`,
			expected: func(t *testing.T, actual Result) {
				assert.EqualValues(t, cart.StatusError, actual.WarningsByVariantID["101"].Status)
			},
		},
		{
			name:       "given 400 with error envelope should stay fail-closed with message",
			statusCode: http.StatusBadRequest,
			body:       `{"ok": false, "warningsByVariantId": {}, "hintsByVariantId": {}, "error": "items es requerido y debe ser una lista"}`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				assert.EqualValues(t, "items es requerido y debe ser una lista", actual.Error)
				assert.NotNil(t, actual.WarningsByVariantID)
				assert.NotNil(t, actual.HintsByVariantID)
			},
		},
		{
			name:       "given 500 with html body should degrade to generic error",
			statusCode: http.StatusInternalServerError,
			body:       `<html><body>Internal Server Error</body></html>`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				assert.EqualValues(t, msgCouldNotValidate, actual.Error)
				assert.Empty(t, actual.WarningsByVariantID)
			},
		},
		{
			name:       "given garbage json should degrade to generic error",
			statusCode: http.StatusOK,
			body:       `not json at all`,
			expected: func(t *testing.T, actual Result) {
				assert.False(t, actual.OK)
				assert.EqualValues(t, msgCouldNotValidate, actual.Error)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, http.MethodPost, r.Method)
					assert.Equal(t, "/stock-validate/", r.URL.Path)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(tt.statusCode)
					_, _ = w.Write([]byte(tt.body))
				}),
			)
			defer server.Close()

			client := NewClient(server.URL)
			actual := client.ValidateStock(context.Background(), []Line{
				{ProductVariantID: 101, Quantity: 3},
			})

			tt.expected(t, actual)
		})
	}
}

func TestValidateStockTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL)
	actual := client.ValidateStock(context.Background(), []Line{{ProductVariantID: 101, Quantity: 1}})

	assert.False(t, actual.OK)
	assert.EqualValues(t, msgCouldNotValidate, actual.Error)
	assert.NotNil(t, actual.WarningsByVariantID)
	assert.NotNil(t, actual.HintsByVariantID)
}

func TestValidateStockCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	c, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	actual := client.ValidateStock(c, []Line{{ProductVariantID: 101, Quantity: 1}})

	assert.False(t, actual.OK, "a superseded request never reports ok")
}
