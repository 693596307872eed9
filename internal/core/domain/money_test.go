package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "$2,499", want: "2499"},
		{raw: "$299", want: "299"},
		{raw: "$1,299.50", want: "1299.5"},
		{raw: " 1 899 ", want: "1899"},
		{raw: "€12.99", want: "12.99"},
		{raw: "-$5", want: "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			m, err := ParsePrice(tt.raw, "USD")
			require.NoError(t, err)
			assert.True(t, m.Amount.Equal(decimal.RequireFromString(tt.want)), "got %s", m.Amount)
			assert.Equal(t, "USD", m.Currency)
		})
	}
}

func TestParsePrice_Invalid(t *testing.T) {
	for _, raw := range []string{"", "$", "free", "1.2.3", "-"} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParsePrice(raw, "USD")
			assert.True(t, errors.Is(err, ErrInvalidPrice), "got %v", err)
		})
	}
}

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{amount: "4998", currency: "USD", want: "$4,998.00"},
		{amount: "0", currency: "USD", want: "$0.00"},
		{amount: "199", currency: "USD", want: "$199.00"},
		{amount: "1234567.891", currency: "USD", want: "$1,234,567.89"},
		{amount: "-12.5", currency: "EUR", want: "-€12.50"},
		{amount: "100", currency: "CHF", want: "100.00 CHF"},
		{amount: "350", currency: "GBP", want: "£350.00"},
		{amount: "12", currency: "XYZ1", want: "12.00 XYZ1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			m := NewMoney(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.want, m.Format())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	price := NewMoney(decimal.RequireFromString("2499"), "USD")

	assert.Equal(t, 7497.0, price.Mul(3).Float64())

	assert.Equal(t, 0.0, price.Mul(0).Float64())
	assert.True(t, Zero("USD").IsZero())
}
