package common

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DustDecimals is the number of decimals of DUST (1 DUST = 10^15 specks)
const DustDecimals = 15

// SpecksToDust converts specks to a DUST string without float precision loss
func SpecksToDust(specks uint64) string {
	return formatWithDecimals(specks, DustDecimals)
}

// GroupThousands renders n with comma separators, e.g. 1234567 -> "1,234,567"
func GroupThousands(n uint64) string {
	s := strconv.FormatUint(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ParseAmount parses a positive integer amount as typed by a user.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("amount must be an unsigned integer: %w", err)
	}
	return n, nil
}

// NormalizeHexSeed strips an optional 0x prefix and checks the seed is valid hex
func NormalizeHexSeed(seed string) (string, error) {
	seed = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(seed), "0x"))
	if seed == "" {
		return "", fmt.Errorf("seed cannot be empty")
	}
	raw, err := hex.DecodeString(seed)
	if err != nil {
		return "", fmt.Errorf("seed must be hex: %w", err)
	}
	if len(raw) < 16 || len(raw) > 64 {
		return "", fmt.Errorf("seed must be between 16 and 64 bytes, got %d", len(raw))
	}
	return seed, nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := fmt.Sprintf("%d", value)

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
