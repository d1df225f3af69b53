package common

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	minMantissa = 1_000_000_000_000_000  // 10^15
	maxMantissa = 10_000_000_000_000_000 // 10^16

	MinIssuedExponent = -96
	MaxIssuedExponent = 80
)

var ten = big.NewInt(10)

// IssuedValue is an issued-currency amount in the ledger's normalised form:
// a 16 digit mantissa and a decimal exponent.
type IssuedValue struct {
	Mantissa uint64
	Exponent int
	Negative bool
}

// IsZero reports whether the value is zero
func (v IssuedValue) IsZero() bool {
	return v.Mantissa == 0
}

// Decimal returns the value as an arbitrary precision decimal
func (v IssuedValue) Decimal() decimal.Decimal {
	d := decimal.New(int64(v.Mantissa), int32(v.Exponent))
	if v.Negative {
		d = d.Neg()
	}
	return d
}

// String returns the shortest decimal string for the value
func (v IssuedValue) String() string {
	return v.Decimal().String()
}

// ParseIssuedValue parses a decimal string (plain or scientific notation) into normalised form.
// Values with more than 16 significant digits or outside the exponent range are rejected.
func ParseIssuedValue(s string) (IssuedValue, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return IssuedValue{}, fmt.Errorf("invalid issued value '%s': %w", s, err)
	}
	if d.IsZero() {
		return IssuedValue{}, nil
	}

	coeff := new(big.Int).Abs(d.Coefficient())
	exp := int(d.Exponent())

	mod := new(big.Int)
	for {
		q, r := new(big.Int).QuoRem(coeff, ten, mod)
		if r.Sign() != 0 {
			break
		}
		coeff = q
		exp++
	}
	if coeff.Cmp(big.NewInt(maxMantissa)) >= 0 {
		return IssuedValue{}, fmt.Errorf("invalid issued value '%s': more than 16 significant digits", s)
	}

	m := coeff.Uint64()
	for m < minMantissa {
		m *= 10
		exp--
	}
	if exp < MinIssuedExponent || exp > MaxIssuedExponent {
		return IssuedValue{}, fmt.Errorf("invalid issued value '%s': exponent out of range", s)
	}

	return IssuedValue{Mantissa: m, Exponent: exp, Negative: d.Sign() < 0}, nil
}

// NormalizeValue validates an issued-currency value and returns its canonical decimal string
func NormalizeValue(s string) (string, error) {
	v, err := ParseIssuedValue(s)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// CompareAmounts compares two decimal string amounts without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareAmounts(a, b string) (int, error) {
	aVal, err := decimal.NewFromString(a)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := decimal.NewFromString(b)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}

// AddAmounts returns a+b as a decimal string
func AddAmounts(a, b string) (string, error) {
	aVal, err := decimal.NewFromString(a)
	if err != nil {
		return "", fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}
	bVal, err := decimal.NewFromString(b)
	if err != nil {
		return "", fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}
	return aVal.Add(bVal).String(), nil
}
