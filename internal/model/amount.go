package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// UnitKind distinguishes currency amounts from commodity quantities.
type UnitKind int

const (
	KindCurrency UnitKind = iota + 1
	KindCommodity
)

func (k UnitKind) String() string {
	switch k {
	case KindCurrency:
		return "currency"
	case KindCommodity:
		return "commodity"
	default:
		return "unknown"
	}
}

// UnitKey identifies the unit an amount is measured in. Amounts only combine
// when their keys are equal.
type UnitKey struct {
	Kind UnitKind
	Unit string // ISO 4217 code or commodity symbol
}

func (k UnitKey) String() string { return k.Unit }

// Amount is a signed exact quantity of a currency or a commodity.
type Amount struct {
	Quantity decimal.Decimal
	Key      UnitKey
}

// Money returns an amount in the currency identified by its ISO 4217 code.
func Money(q decimal.Decimal, code string) Amount {
	return Amount{Quantity: q, Key: UnitKey{Kind: KindCurrency, Unit: strings.ToUpper(code)}}
}

// USD returns an amount in US dollars.
func USD(q decimal.Decimal) Amount { return Money(q, "USD") }

// Commodity returns a quantity of the commodity with the given symbol (e.g. AAPL).
func Commodity(q decimal.Decimal, symbol string) Amount {
	return Amount{Quantity: q, Key: UnitKey{Kind: KindCommodity, Unit: symbol}}
}

// ParseCurrency validates an ISO 4217 currency code and returns it in canonical form.
func ParseCurrency(code string) (string, error) {
	u, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("parsing currency %q: %w", code, err)
	}
	return u.String(), nil
}

// IsMoney reports whether a is a currency amount.
func (a Amount) IsMoney() bool { return a.Key.Kind == KindCurrency }

// IsZero reports whether the quantity is zero.
func (a Amount) IsZero() bool { return a.Quantity.IsZero() }

// Add returns a + b. Both must share a unit key.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Key != b.Key {
		return Amount{}, fmt.Errorf("%w: cannot add %s %s and %s %s",
			ErrUnitMismatch, a.Key.Kind, a.Key.Unit, b.Key.Kind, b.Key.Unit)
	}
	return Amount{Quantity: a.Quantity.Add(b.Quantity), Key: a.Key}, nil
}

// Mul scales a by f.
func (a Amount) Mul(f decimal.Decimal) Amount {
	return Amount{Quantity: a.Quantity.Mul(f), Key: a.Key}
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{Quantity: a.Quantity.Neg(), Key: a.Key}
}

// Equal reports whether a and b have the same unit and numerically equal
// quantities, so 15 USD equals 15.00 USD.
func (a Amount) Equal(b Amount) bool {
	return a.Key == b.Key && a.Quantity.Equal(b.Quantity)
}

// String renders the amount the way ledger expects it: money as "$1,234.56"
// (negative "-$1,234.56"), commodities as "3.14 AAPL".
func (a Amount) String() string {
	if a.Key.Kind == KindCommodity {
		return formatGrouped(a.Quantity, -1) + " " + a.Key.Unit
	}

	scale := a.Scale()
	s := formatGrouped(a.Quantity.Abs(), scale)
	if sym, ok := currencySymbols[a.Key.Unit]; ok {
		s = sym + s
	} else {
		s = s + " " + a.Key.Unit
	}
	if a.Quantity.IsNegative() && !a.Quantity.Round(int32(scale)).IsZero() {
		s = "-" + s
	}
	return s
}

// Scale returns the fraction digits money is rounded to: the currency's
// standard rounding, or 2 for codes x/text does not know. Commodities keep
// their own precision.
func (a Amount) Scale() int {
	if a.Key.Kind == KindCommodity {
		if exp := int(-a.Quantity.Exponent()); exp > 0 {
			return exp
		}
		return 0
	}
	if u, err := currency.ParseISO(a.Key.Unit); err == nil {
		scale, _ := currency.Standard.Rounding(u)
		return scale
	}
	return 2
}

// currencySymbols are the en-US display symbols; other currencies render
// with their ISO code after the number.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
}

// formatGrouped renders d exactly with en-US thousands grouping. A negative
// scale keeps the fraction digits d already carries.
func formatGrouped(d decimal.Decimal, scale int) string {
	s := d.String()
	if scale >= 0 {
		s = d.Round(int32(scale)).StringFixed(int32(scale))
	}
	neg := strings.HasPrefix(s, "-")
	whole, frac, hasFrac := strings.Cut(strings.TrimPrefix(s, "-"), ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
