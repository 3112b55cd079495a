package money

import (
	"fmt"
	"math/big"
	"strings"
)

// AdaDecimals is the number of decimal places in one ADA (1 ADA = 1e6 lovelace).
const AdaDecimals = 6

// LovelacePerAda is the fixed lovelace-to-ADA divisor.
var LovelacePerAda = big.NewInt(1_000_000)

// ToAda converts a lovelace amount to ADA as a float64.
// A nil amount converts to 0. The result is for display and heuristic
// band matching only; ledger math stays in lovelace.
func ToAda(lovelace *big.Int) float64 {
	if lovelace == nil {
		return 0
	}
	f := new(big.Float).SetInt(lovelace)
	f.Quo(f, new(big.Float).SetInt(LovelacePerAda))
	result, _ := f.Float64()
	return result
}

// AdaToLovelace converts a human-readable ADA amount string to lovelace.
// Handles decimal inputs like "0.176985" → 176985. Fractions beyond six
// decimal places are truncated.
func AdaToLovelace(amountStr string) (*big.Int, error) {
	if amountStr == "" {
		return nil, fmt.Errorf("amount is required")
	}

	// Use string manipulation to avoid floating point precision issues
	parts := strings.Split(amountStr, ".")

	intPart := parts[0]
	if intPart == "" {
		intPart = "0"
	}

	decPart := ""
	if len(parts) > 1 {
		decPart = parts[1]
	}

	// Pad or truncate decimal part to lovelace precision
	if len(decPart) < AdaDecimals {
		decPart = decPart + strings.Repeat("0", AdaDecimals-len(decPart))
	} else if len(decPart) > AdaDecimals {
		decPart = decPart[:AdaDecimals]
	}

	combined := intPart + decPart

	combined = strings.TrimLeft(combined, "0")
	if combined == "" {
		combined = "0"
	}

	result := new(big.Int)
	if _, ok := result.SetString(combined, 10); !ok {
		return nil, fmt.Errorf("invalid amount format")
	}

	return result, nil
}

// FormatAda converts a lovelace amount to a human-readable ADA string.
// E.g., 1500000 → "1.5".
func FormatAda(lovelace *big.Int) string {
	if lovelace == nil {
		return "0"
	}

	negative := lovelace.Sign() < 0
	str := new(big.Int).Abs(lovelace).String()

	// Pad with leading zeros so there is always an integer digit
	for len(str) <= AdaDecimals {
		str = "0" + str
	}

	pos := len(str) - AdaDecimals
	result := str[:pos] + "." + str[pos:]

	result = strings.TrimRight(result, "0")
	result = strings.TrimRight(result, ".")

	if result == "" {
		result = "0"
	}
	if negative && result != "0" {
		result = "-" + result
	}

	return result
}

// ParseLovelace parses an integer lovelace quantity from its decimal string
// form, as returned by Koios and CIP-30 wallets. Empty strings parse to zero.
func ParseLovelace(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	result := new(big.Int)
	if _, ok := result.SetString(s, 10); !ok {
		return nil, fmt.Errorf("invalid lovelace quantity %q", s)
	}
	return result, nil
}
