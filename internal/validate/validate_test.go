package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type priced struct {
	Price string `validate:"required,price"`
}

func TestPriceRule(t *testing.T) {
	tests := []struct {
		name        string
		price       string
		expectedErr bool
	}{
		{name: "given positive decimal string should pass", price: "50000"},
		{name: "given decimal with cents should pass", price: "49999.99"},
		{name: "given zero should fail", price: "0", expectedErr: true},
		{name: "given negative should fail", price: "-1", expectedErr: true},
		{name: "given non-numeric should fail", price: "gratis", expectedErr: true},
		{name: "given empty should fail", price: "", expectedErr: true},
	}

	validate := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(priced{Price: tt.price})
			if tt.expectedErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
