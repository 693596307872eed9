package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DefaultCurrency = "USD"

var (
	ErrInvalidPrice     = errors.New("invalid price")
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money is an amount in a single currency.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func Zero(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

// ParsePrice reads a display price such as "$2,499" or "1 299.50 EUR".
// Currency symbols, grouping separators and whitespace are dropped and the
// rest is parsed as a decimal number.
func ParsePrice(raw, currency string) (Money, error) {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	return Money{Amount: amount, Currency: currency}, nil
}

func (m Money) Mul(quantity int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(quantity))), Currency: m.Currency}
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// Float64 returns the raw amount for consumers that do their own formatting.
func (m Money) Float64() float64 {
	return m.Amount.InexactFloat64()
}

// Format renders the amount for display, e.g. "$2,499.00". Currencies
// without a display symbol fall back to a trailing ISO code.
func (m Money) Format() string {
	p := message.NewPrinter(language.AmericanEnglish)
	amount := p.Sprint(number.Decimal(m.Amount.Abs().Round(2).InexactFloat64(), number.Scale(2)))

	sign := ""
	if m.Amount.IsNegative() {
		sign = "-"
	}

	unit, err := currency.ParseISO(m.Currency)
	if err != nil {
		return sign + amount + " " + m.Currency
	}
	// Symbol with no amount writes only the symbol, or the ISO code when
	// the locale has none.
	symbol := p.Sprint(currency.Symbol(unit))
	if symbol == m.Currency {
		return sign + amount + " " + m.Currency
	}
	return sign + symbol + amount
}

func (m Money) String() string {
	return m.Format()
}
