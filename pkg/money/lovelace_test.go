package money_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/pkg/money"
)

func TestAdaToLovelace(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"whole ada", "2", "2000000"},
		{"fractional", "1.5", "1500000"},
		{"note operation fee", "0.176985", "176985"},
		{"sub-lovelace truncated", "0.0000001", "0"},
		{"leading dot", ".5", "500000"},
		{"zero", "0", "0"},
		{"excess precision truncated", "1.1234567", "1123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := money.AdaToLovelace(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.String())
		})
	}
}

func TestAdaToLovelace_Invalid(t *testing.T) {
	_, err := money.AdaToLovelace("")
	assert.Error(t, err)

	_, err = money.AdaToLovelace("abc")
	assert.Error(t, err)
}

func TestFormatAda(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected string
	}{
		{"whole ada", 2000000, "2"},
		{"fractional", 1500000, "1.5"},
		{"below one ada", 176985, "0.176985"},
		{"one lovelace", 1, "0.000001"},
		{"zero", 0, "0"},
		{"negative", -500000, "-0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, money.FormatAda(big.NewInt(tt.input)))
		})
	}
}

func TestFormatAda_Nil(t *testing.T) {
	assert.Equal(t, "0", money.FormatAda(nil))
}

func TestToAda(t *testing.T) {
	assert.InDelta(t, 1.5, money.ToAda(big.NewInt(1500000)), 1e-9)
	assert.InDelta(t, 0.176985, money.ToAda(big.NewInt(176985)), 1e-9)
	assert.Zero(t, money.ToAda(nil))
}

func TestParseLovelace(t *testing.T) {
	v, err := money.ParseLovelace("2000000")
	require.NoError(t, err)
	assert.Equal(t, int64(2000000), v.Int64())

	v, err = money.ParseLovelace("")
	require.NoError(t, err)
	assert.Zero(t, v.Int64())

	_, err = money.ParseLovelace("0x10")
	assert.Error(t, err)
}
