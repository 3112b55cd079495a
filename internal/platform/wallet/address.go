package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Shelley address header nibbles (CIP-19). The low nibble of the first byte
// is the network tag, the high nibble the address type.
const (
	networkMainnet = 0x1

	addrTypeReward         = 0xe
	addrTypeRewardScript   = 0xf
	hrpPayment             = "addr"
	hrpPaymentTest         = "addr_test"
	hrpStake               = "stake"
	hrpStakeTest           = "stake_test"
)

// NormalizeAddress converts a raw wallet address into its canonical bech32
// form. Inputs that already carry a known prefix pass through unchanged.
// Hex-encoded address bytes are re-encoded; anything unconvertible is
// returned as-is together with the conversion error so the caller can log
// a warning. The returned string is always usable as a lookup key.
func NormalizeAddress(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if strings.HasPrefix(raw, hrpPayment) || strings.HasPrefix(raw, hrpStake) {
		return raw, nil
	}

	data, err := hex.DecodeString(raw)
	if err != nil {
		return raw, fmt.Errorf("address is neither bech32 nor hex: %w", err)
	}
	if len(data) == 0 {
		return raw, fmt.Errorf("empty address bytes")
	}

	converted, err := bech32.ConvertBits(data, 8, 5, true)
	if err != nil {
		return raw, fmt.Errorf("failed to regroup address bits: %w", err)
	}

	encoded, err := bech32.Encode(hrpForHeader(data[0]), converted)
	if err != nil {
		return raw, fmt.Errorf("failed to encode bech32 address: %w", err)
	}

	return encoded, nil
}

// hrpForHeader derives the bech32 human-readable part from the address
// header byte: stake vs payment type, mainnet vs testnet tag.
func hrpForHeader(header byte) string {
	addrType := header >> 4
	mainnet := header&0x0f == networkMainnet

	if addrType == addrTypeReward || addrType == addrTypeRewardScript {
		if mainnet {
			return hrpStake
		}
		return hrpStakeTest
	}
	if mainnet {
		return hrpPayment
	}
	return hrpPaymentTest
}

// IsMainnetAddress reports whether a canonical address belongs to mainnet.
// Testnet addresses carry the _test suffix in their prefix.
func IsMainnetAddress(address string) bool {
	return strings.HasPrefix(address, "addr1") || strings.HasPrefix(address, "stake1")
}
