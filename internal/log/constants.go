package log

const (
	KeyAppName       = "app"
	KeyTag           = "tag"
	KeyProcess       = "process"
	KeyConfig        = "config"
	KeyRequestID     = "requestId"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyCacheKey      = "cacheKey"
	KeyCartID        = "cartId"
	KeyVariantID     = "variantId"
	KeyOrderID       = "orderId"
	KeyQuantity      = "quantity"
	KeyCityCode      = "cityCode"
	KeySubtotal      = "subtotal"
	KeyWarnings      = "warnings"
	KeyHints         = "hints"
	KeyToken         = "token"
)
