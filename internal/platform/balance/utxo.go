package balance

import (
	"encoding/json"
	"math/big"

	"github.com/masikip/notewallet/internal/platform/wallet"
)

// shapeMatcher tries to extract the lovelace quantity from one decoded UTXO
// payload. Matchers are tried in order; the first match wins and anything no
// matcher recognizes contributes zero.
type shapeMatcher struct {
	name  string
	match func(utxo map[string]any) (*big.Int, bool)
}

// utxoShapes covers the payload layouts observed across wallet providers.
var utxoShapes = []shapeMatcher{
	{"output.amount unit/quantity array", func(u map[string]any) (*big.Int, bool) {
		return amountFromArray(dig(u, "output", "amount"))
	}},
	{"output.amount quantity object", func(u map[string]any) (*big.Int, bool) {
		return quantityOf(dig(u, "output", "amount", "quantity"))
	}},
	{"top-level amount array", func(u map[string]any) (*big.Int, bool) {
		return amountFromArray(u["amount"])
	}},
	{"top-level bare amount", func(u map[string]any) (*big.Int, bool) {
		return quantityOf(u["amount"])
	}},
	{"top-level bare value", func(u map[string]any) (*big.Int, bool) {
		return quantityOf(u["value"])
	}},
	{"output.value", func(u map[string]any) (*big.Int, bool) {
		return quantityOf(dig(u, "output", "value"))
	}},
}

// SumUtxos totals the lovelace across the wallet's reported outputs. A nil
// result means the wallet reported no outputs at all; malformed entries are
// counted as zero, never as an error.
func SumUtxos(utxos []wallet.Utxo) *big.Int {
	if len(utxos) == 0 {
		return nil
	}

	total := new(big.Int)
	for _, raw := range utxos {
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			continue
		}
		for _, shape := range utxoShapes {
			if quantity, ok := shape.match(decoded); ok {
				total.Add(total, quantity)
				break
			}
		}
	}
	return total
}

// amountFromArray handles the array-of-assets layout: an entry keyed by
// unit "lovelace" (or no unit at all), falling back to a bare scalar in
// first position.
func amountFromArray(v any) (*big.Int, bool) {
	entries, ok := v.([]any)
	if !ok || len(entries) == 0 {
		return nil, false
	}

	for _, entry := range entries {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		unit, hasUnit := m["unit"]
		if !hasUnit || unit == "lovelace" {
			if q, ok := quantityOf(m["quantity"]); ok {
				return q, true
			}
		}
	}

	// Some providers put the lovelace quantity bare in first position
	return quantityOf(entries[0])
}

// quantityOf parses a scalar quantity from the numeric and string forms
// wallets use.
func quantityOf(v any) (*big.Int, bool) {
	switch q := v.(type) {
	case string:
		if q == "" {
			return nil, false
		}
		result, ok := new(big.Int).SetString(q, 10)
		if !ok {
			return nil, false
		}
		return result, true
	case float64:
		result, _ := new(big.Float).SetFloat64(q).Int(nil)
		return result, true
	case json.Number:
		result, ok := new(big.Int).SetString(q.String(), 10)
		if !ok {
			return nil, false
		}
		return result, true
	default:
		return nil, false
	}
}

// dig walks nested maps by key, returning nil when any hop is missing
func dig(m map[string]any, keys ...string) any {
	var current any = m
	for _, key := range keys {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = asMap[key]
	}
	return current
}
