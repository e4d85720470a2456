package request

import (
	"errors"
	"strings"
	"unicode"
)

var (
	ErrInvalidPhone    = errors.New("ingresa un celular colombiano válido (10 dígitos, inicia en 3)")
	ErrInvalidDocument = errors.New("el número de documento es inválido")
)

type Customer struct {
	FullName       string `json:"full_name"       validate:"required,max=150"`
	Email          string `json:"email"           validate:"required,email"`
	Phone          string `json:"phone"           validate:"required,max=30"`
	DocumentType   string `json:"document_type"   validate:"required,oneof=CC NIT"`
	DocumentNumber string `json:"document_number" validate:"required,max=32"`
}

type ShippingAddress struct {
	CityCode string `json:"city_code" validate:"required"`
	Address  string `json:"address"   validate:"required,max=255"`
	Notes    string `json:"notes"     validate:"omitempty,max=500"`
}

type CheckoutItem struct {
	ProductVariantID int `json:"product_variant_id" validate:"required,min=1"`
	Quantity         int `json:"quantity"           validate:"required,min=1"`
}

type Checkout struct {
	Customer        Customer        `json:"customer"         validate:"required"`
	ShippingAddress ShippingAddress `json:"shipping_address" validate:"required"`
	Items           []CheckoutItem  `json:"items"            validate:"required,min=1,dive"`
	PaymentMethod   string          `json:"payment_method"   validate:"omitempty,oneof=transferencia contraentrega"`
}

// NormalizePhone normalizes Colombian cell phones: spaces, dashes and a +57 /
// 57 country prefix are accepted, the result must be exactly 10 digits
// starting with 3.
func NormalizePhone(raw string) (string, error) {
	digits := keepDigits(raw)
	if strings.HasPrefix(digits, "57") && (len(digits) == 11 || len(digits) == 12) {
		digits = digits[2:]
	}
	if len(digits) != 10 || !strings.HasPrefix(digits, "3") {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// NormalizeDocument strips non-digits and checks length by document type:
// CC between 6 and 10 digits, NIT between 6 and 12.
func NormalizeDocument(documentType, raw string) (string, error) {
	digits := keepDigits(raw)
	if digits == "" {
		return "", ErrInvalidDocument
	}
	switch documentType {
	case "CC":
		if len(digits) < 6 || len(digits) > 10 {
			return "", ErrInvalidDocument
		}
	case "NIT":
		if len(digits) < 6 || len(digits) > 12 {
			return "", ErrInvalidDocument
		}
	default:
		return "", ErrInvalidDocument
	}
	return digits, nil
}

// Normalize applies phone and document normalization in place, after tag
// validation has passed.
func (t *Checkout) Normalize() error {
	phone, err := NormalizePhone(t.Customer.Phone)
	if err != nil {
		return err
	}
	t.Customer.Phone = phone

	document, err := NormalizeDocument(t.Customer.DocumentType, t.Customer.DocumentNumber)
	if err != nil {
		return err
	}
	t.Customer.DocumentNumber = document

	if t.PaymentMethod == "" {
		t.PaymentMethod = "transferencia"
	}
	return nil
}

func keepDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
