package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation Kind = "validation"
	KindStock      Kind = "stock"
	KindServer     Kind = "server"
	KindNetwork    Kind = "network"
)

const (
	msgNetwork = "No se pudo conectar con el servidor. Revisa tu conexión e intenta de nuevo."
	msgAuth    = "No tienes autorización para realizar esta acción."
	msgServer  = "Ocurrió un error en el servidor. Intenta de nuevo en unos minutos."
	msgStock   = "Hay productos sin stock suficiente en tu carrito."
)

// ResponseError is the transport boundary error: a response was received but
// carried a non-2xx status. Body is kept raw so Normalize can classify it.
type ResponseError struct {
	StatusCode int
	Body       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("server returned status code=%d", e.StatusCode)
}

// Normalized is the single closed result type safe to render directly in UI.
// Message never contains raw JSON or HTML.
type Normalized struct {
	Kind        Kind              `json:"kind"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
	StatusCode  int               `json:"statusCode,omitempty"`
}

// fieldAliases maps backend serializer field paths to the field names the UI
// renders. Unlisted paths fall back to their last path segment.
var fieldAliases = map[string]string{
	"customer.full_name":         "full_name",
	"customer.email":             "email",
	"customer.phone":             "phone",
	"customer.document_type":     "document_type",
	"customer.document_number":   "document_number",
	"shipping_address.city_code": "city_code",
	"shipping_address.address":   "address",
	"shipping_address.notes":     "notes",
	"non_field_errors":           "detail",
	"cedula":                     "document_number",
}

var stockPayloadKeys = []string{"warningsByVariantId", "stock", "qty", "items"}

// Normalize collapses heterogeneous error shapes into the closed taxonomy.
// Classification order, first match wins:
//  1. no resolvable HTTP status -> network
//  2. 400 -> stock or validation
//  3. 401/403 -> server (authorization message)
//  4. >= 500 -> server (generic, server detail is never surfaced)
//  5. anything else -> server (generic)
func Normalize(err error) Normalized {
	if err == nil {
		return Normalized{Kind: KindServer, Message: msgServer}
	}

	respErr := &ResponseError{}
	if !errors.As(err, &respErr) || respErr.StatusCode == 0 {
		return Normalized{Kind: KindNetwork, Message: sanitizeMessage(err.Error(), msgNetwork)}
	}

	switch {
	case respErr.StatusCode == http.StatusBadRequest:
		return normalizeBadRequest(respErr)
	case respErr.StatusCode == http.StatusUnauthorized,
		respErr.StatusCode == http.StatusForbidden:
		return Normalized{Kind: KindServer, Message: msgAuth, StatusCode: respErr.StatusCode}
	case respErr.StatusCode >= http.StatusInternalServerError:
		return Normalized{Kind: KindServer, Message: msgServer, StatusCode: respErr.StatusCode}
	default:
		return Normalized{Kind: KindServer, Message: msgServer, StatusCode: respErr.StatusCode}
	}
}

func normalizeBadRequest(respErr *ResponseError) Normalized {
	payload := map[string]interface{}{}
	if err := json.Unmarshal(respErr.Body, &payload); err != nil {
		// Non-JSON 400 body: nothing field-level to extract.
		return Normalized{
			Kind:       KindValidation,
			Message:    sanitizeMessage(string(respErr.Body), msgServer),
			StatusCode: respErr.StatusCode,
		}
	}

	if isStockPayload(payload) {
		msg := msgStock
		if s := extractMessage(payload); s != "" {
			msg = sanitizeMessage(s, msgStock)
		}
		return Normalized{Kind: KindStock, Message: msg, StatusCode: respErr.StatusCode}
	}

	// Reserved message keys are the summary, not per-field errors.
	fieldPayload := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		if key == "message" || key == "detail" || key == "error" {
			continue
		}
		fieldPayload[key] = value
	}
	fields := map[string]string{}
	flattenFieldErrors("", fieldPayload, fields)
	aliased := map[string]string{}
	for path, msg := range fields {
		aliased[aliasField(path)] = msg
	}

	msg := extractMessage(payload)
	if msg == "" && len(aliased) > 0 {
		msg = firstFieldMessage(aliased)
	}
	return Normalized{
		Kind:        KindValidation,
		Message:     sanitizeMessage(msg, "Revisa los campos marcados e intenta de nuevo."),
		FieldErrors: aliased,
		StatusCode:  respErr.StatusCode,
	}
}

// isStockPayload heuristically decides whether a 400 payload describes an
// inventory conflict rather than a form validation problem.
func isStockPayload(payload map[string]interface{}) bool {
	for _, key := range stockPayloadKeys {
		v, ok := payload[key]
		if !ok {
			continue
		}
		if key == "warningsByVariantId" {
			if m, ok := v.(map[string]interface{}); ok && len(m) > 0 {
				return true
			}
			continue
		}
		if containsStockKeyword(fmt.Sprintf("%v", v)) {
			return true
		}
	}
	return containsStockKeyword(extractMessage(payload))
}

func containsStockKeyword(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "stock") || strings.Contains(lower, "agotado")
}

// flattenFieldErrors walks nested objects and arrays collecting the first
// message per dot-and-bracket path, e.g. customer.phone or items[0].quantity.
func flattenFieldErrors(prefix string, value interface{}, out map[string]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			flattenFieldErrors(path, v[k], out)
		}
	case []interface{}:
		for i, item := range v {
			if s, ok := item.(string); ok {
				// DRF convention: a list of message strings for one field.
				if prefix != "" {
					if _, exists := out[prefix]; !exists {
						out[prefix] = s
					}
				}
				continue
			}
			flattenFieldErrors(fmt.Sprintf("%s[%d]", prefix, i), item, out)
		}
	case string:
		if prefix != "" {
			if _, exists := out[prefix]; !exists {
				out[prefix] = v
			}
		}
	}
}

func aliasField(path string) string {
	if alias, ok := fieldAliases[path]; ok {
		return alias
	}
	// items[0].quantity and similar keep their full path; plain nested paths
	// fall back to the last segment so UI fields still match.
	if strings.Contains(path, "[") {
		return path
	}
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func firstFieldMessage(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if fields[k] != "" {
			return fields[k]
		}
	}
	return ""
}

func extractMessage(payload map[string]interface{}) string {
	for _, key := range []string{"message", "detail", "error"} {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// sanitizeMessage guards the invariant that a normalized message never carries
// raw JSON or HTML to the UI.
func sanitizeMessage(s, fallback string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return fallback
	}
	if looksLikePayload(trimmed) {
		return fallback
	}
	return trimmed
}

func looksLikePayload(s string) bool {
	if len(s) < 2 {
		return false
	}
	first := s[0]
	if (first == '{' || first == '[') && len(s) > 16 {
		return true
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "<html") || strings.Contains(lower, "<!doctype") ||
		strings.Contains(lower, "<body") {
		return true
	}
	return false
}
