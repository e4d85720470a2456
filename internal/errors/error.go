package errors

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrEmptyAuth          = errors.New("missing authorization")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrVariantNotFound    = errors.New("product variant not found")
	ErrVariantInactive    = errors.New("product variant is inactive")
	ErrOutOfStock         = errors.New("product is out of stock")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnknownCity        = errors.New("unknown city code")
)

func HandleError(err error, span trace.Span) {
	if err == nil {
		return
	}
	span.AddEvent(err.Error())
	span.SetStatus(codes.Error, err.Error())
	span.RecordError(err)
}
