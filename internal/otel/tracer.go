package otel

import (
	"go.opentelemetry.io/otel"

	"github.com/casamora/storefront/internal/constants"
)

var Tracer = otel.Tracer(constants.AppMainStorefront)
