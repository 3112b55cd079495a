package wallet

import "errors"

var (
	// ErrNoProvider is returned when no wallet provider is injected into the
	// browser environment. Its text is shown to the user verbatim.
	ErrNoProvider = errors.New("no Cardano wallet detected, please install a wallet extension")

	// ErrNoAddress is returned when an enabled wallet reports no usable address
	ErrNoAddress = errors.New("wallet reported no usable address")

	// ErrNotConnected is returned by session operations that need an active account
	ErrNotConnected = errors.New("wallet is not connected")
)

// IsDeclined reports whether err carries the user's refusal from the wallet
// UI, as opposed to a transport or wallet-internal failure.
func IsDeclined(err error) bool {
	var d interface{ Declined() bool }
	return errors.As(err, &d) && d.Declined()
}
