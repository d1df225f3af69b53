package common

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	NativeCurrency = "XRP"

	currencyBytes     = 20
	currencyHexLength = currencyBytes * 2
)

// EncodeCurrency converts a currency code to the form the ledger accepts in JSON.
// Three character codes pass through. Longer codes are hex encoded and right padded
// with zeros to the fixed 160-bit width. 40 hex digit codes are returned upper-cased.
func EncodeCurrency(code string) (string, error) {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return "", fmt.Errorf("empty currency code")
	case len(code) == 3:
		if strings.ToUpper(code) == NativeCurrency {
			return "", fmt.Errorf("XRP is not an issued currency")
		}
		return code, nil
	case IsHexCurrency(code):
		return strings.ToUpper(code), nil
	case len(code) < 3:
		return "", fmt.Errorf("currency code '%s' is too short", code)
	case len(code) > currencyBytes:
		return "", fmt.Errorf("currency code '%s' is longer than %d bytes", code, currencyBytes)
	}

	for i := 0; i < len(code); i++ {
		if !printable(code[i]) {
			return "", fmt.Errorf("currency code '%s' has non printable characters", code)
		}
	}
	padded := make([]byte, currencyBytes)
	copy(padded, code)
	return strings.ToUpper(hex.EncodeToString(padded)), nil
}

// DecodeCurrency converts a ledger currency code to its display form.
// A 40 hex digit code holding printable text longer than three characters followed by
// zero padding is returned as that text, provided EncodeCurrency maps the text back to
// the same code. Other hex codes are returned in upper case, the canonical form
// EncodeCurrency produces. Non-hex input is returned unchanged.
func DecodeCurrency(code string) string {
	if !IsHexCurrency(code) {
		return code
	}
	canonical := strings.ToUpper(code)
	raw, err := hex.DecodeString(code)
	if err != nil || raw[0] == 0 {
		return canonical
	}

	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}
	text := raw[:end]
	if len(text) <= 3 {
		return canonical
	}
	for _, b := range text {
		if !printable(b) {
			return canonical
		}
	}
	// surrounding spaces are trimmed on encode
	if enc, err := EncodeCurrency(string(text)); err != nil || enc != canonical {
		return canonical
	}
	return string(text)
}

// IsHexCurrency reports whether code is a 40 hex digit currency code
func IsHexCurrency(code string) bool {
	if len(code) != currencyHexLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

// SameCurrency compares two currency codes regardless of their encoding
func SameCurrency(a, b string) bool {
	ea, errA := EncodeCurrency(a)
	eb, errB := EncodeCurrency(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return ea == eb
}

func printable(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}
