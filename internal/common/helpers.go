package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	XRPDecimals = 6 // 1 XRP = 1,000,000 drops

	// MaxDrops is the total XRP supply in drops
	MaxDrops uint64 = 100_000_000_000 * 1_000_000
)

// DropsToXRP converts drops to an XRP decimal string without float precision loss.
// Trailing zeros of the fraction are dropped: 1500000 -> "1.5", 0 -> "0".
func DropsToXRP(drops uint64) string {
	return trimFraction(formatWithDecimals(drops, XRPDecimals))
}

// DropsStringToXRP converts a ledger drops string ("1500000") to XRP
func DropsStringToXRP(drops string) (string, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(drops), 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid drops value '%s': %w", drops, err)
	}
	return DropsToXRP(n), nil
}

// XRPToDrops converts an XRP decimal string to drops without float precision loss.
// More than 6 fraction digits cannot be represented and is an error.
func XRPToDrops(xrp string) (uint64, error) {
	n, err := parseWithDecimals(xrp, XRPDecimals)
	if err != nil {
		return 0, fmt.Errorf("invalid XRP amount '%s': %w", xrp, err)
	}
	if n > MaxDrops {
		return 0, fmt.Errorf("invalid XRP amount '%s': exceeds total supply", xrp)
	}
	return n, nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 6) = "24.981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

func trimFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("0.024981", 6) = 24981
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return 0, fmt.Errorf("signed amounts are not allowed")
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	if whole == "" {
		whole = "0"
	}
	frac := ""
	if len(parts) == 2 {
		frac = parts[1]
	}

	if len(frac) > decimals {
		if strings.Trim(frac[decimals:], "0") != "" {
			return 0, fmt.Errorf("more than %d decimal places", decimals)
		}
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	for _, r := range whole + frac {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid digit %q", r)
		}
	}

	return strconv.ParseUint(whole+frac, 10, 64)
}
