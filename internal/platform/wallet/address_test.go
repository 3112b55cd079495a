package wallet_test

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masikip/notewallet/internal/platform/wallet"
)

// encodeRef bech32-encodes raw address bytes the same way a wallet would,
// used to build expected values without hardcoding long fixtures.
func encodeRef(t *testing.T, hrp string, data []byte) string {
	t.Helper()
	converted, err := bech32.ConvertBits(data, 8, 5, true)
	require.NoError(t, err)
	encoded, err := bech32.Encode(hrp, converted)
	require.NoError(t, err)
	return encoded
}

func TestNormalizeAddress_PassThrough(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"mainnet payment", "addr1qxy0someaddress"},
		{"testnet payment", "addr_test1qzsomeaddress"},
		{"mainnet stake", "stake1uysomeaddress"},
		{"testnet stake", "stake_test1upsomeaddress"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wallet.NormalizeAddress(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, got)
		})
	}
}

func TestNormalizeAddress_HexConversion(t *testing.T) {
	tests := []struct {
		name   string
		header byte
		hrp    string
	}{
		{"mainnet payment key/key", 0x01, "addr"},
		{"testnet payment key/key", 0x00, "addr_test"},
		{"mainnet reward", 0xe1, "stake"},
		{"testnet reward", 0xe0, "stake_test"},
		{"mainnet reward script", 0xf1, "stake"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := append([]byte{tt.header}, make([]byte, 28)...)
			got, err := wallet.NormalizeAddress(hex.EncodeToString(raw))
			require.NoError(t, err)
			assert.Equal(t, encodeRef(t, tt.hrp, raw), got)
		})
	}
}

func TestNormalizeAddress_UnconvertibleReturnsInput(t *testing.T) {
	got, err := wallet.NormalizeAddress("not-hex-not-bech32")
	assert.Error(t, err)
	assert.Equal(t, "not-hex-not-bech32", got)
}

func TestNormalizeAddress_Empty(t *testing.T) {
	got, err := wallet.NormalizeAddress("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsMainnetAddress(t *testing.T) {
	assert.True(t, wallet.IsMainnetAddress("addr1qxyabc"))
	assert.True(t, wallet.IsMainnetAddress("stake1uyabc"))
	assert.False(t, wallet.IsMainnetAddress("addr_test1qzabc"))
	assert.False(t, wallet.IsMainnetAddress("stake_test1upabc"))
	assert.False(t, wallet.IsMainnetAddress(""))
}

func TestPickProvider(t *testing.T) {
	t.Run("preference order wins", func(t *testing.T) {
		available := []wallet.ProviderInfo{
			{Name: "typhoncip30"},
			{Name: "nami"},
			{Name: "eternl"},
		}
		picked, ok := wallet.PickProvider(available)
		require.True(t, ok)
		assert.Equal(t, "eternl", picked.Name)
	})

	t.Run("unknown providers fall back to first reported", func(t *testing.T) {
		available := []wallet.ProviderInfo{{Name: "yoroi"}, {Name: "vespr"}}
		picked, ok := wallet.PickProvider(available)
		require.True(t, ok)
		assert.Equal(t, "yoroi", picked.Name)
	})

	t.Run("empty set", func(t *testing.T) {
		_, ok := wallet.PickProvider(nil)
		assert.False(t, ok)
	})
}
