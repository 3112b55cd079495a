package cip30

import "fmt"

// providerPayload mirrors one entry of the bridge's provider listing
type providerPayload struct {
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Version string `json:"version,omitempty"`
}

// changeAddressResponse is the payload of the change-address endpoint
type changeAddressResponse struct {
	Address string `json:"address"`
}

// signRequest asks the bridge to have the wallet witness a transaction
type signRequest struct {
	Tx          string `json:"tx"`
	PartialSign bool   `json:"partial_sign"`
}

// signResponse carries the fully witnessed transaction CBOR
type signResponse struct {
	SignedTx string `json:"signed_tx"`
}

// submitRequest asks the bridge to submit a signed transaction
type submitRequest struct {
	SignedTx string `json:"signed_tx"`
}

// submitResponse carries the hash of the submitted transaction
type submitResponse struct {
	TxHash string `json:"tx_hash"`
}

// CIP-30 APIError codes relayed by the bridge
const (
	CodeInvalidRequest = -1
	CodeInternalError  = -2
	CodeRefused        = -3
	CodeAccountChange  = -4
	CodeUserDeclined   = 2
)

// BridgeError is a wallet-side failure relayed verbatim by the bridge,
// carrying the CIP-30 error code when the wallet reported one.
type BridgeError struct {
	Code int    `json:"code"`
	Info string `json:"info"`
}

func (e *BridgeError) Error() string {
	if e.Info != "" {
		return fmt.Sprintf("wallet error %d: %s", e.Code, e.Info)
	}
	return fmt.Sprintf("wallet error %d", e.Code)
}

// Declined reports whether the user turned down the request in the wallet UI
func (e *BridgeError) Declined() bool {
	return e.Code == CodeUserDeclined || e.Code == CodeRefused
}
