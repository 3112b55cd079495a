package koios

// addressesPayload is the request body for address-scoped queries
type addressesPayload struct {
	Addresses []string `json:"_addresses"`
}

// hashesPayload is the request body for hash-scoped queries
type hashesPayload struct {
	TxHashes []string `json:"_tx_hashes"`
}

// TxSummary is one entry of an address transaction list. The hash field
// name drifted across Koios API revisions, so all known spellings are
// accepted.
type TxSummary struct {
	TxHash    string `json:"tx_hash"`
	Hash      string `json:"hash"`
	TxHashAlt string `json:"txHash"`
	ID        string `json:"id"`
	BlockTime int64  `json:"block_time"`
}

// ResolvedHash returns the transaction hash under whichever field the
// endpoint used, or empty when none is present.
func (s TxSummary) ResolvedHash() string {
	switch {
	case s.TxHash != "":
		return s.TxHash
	case s.Hash != "":
		return s.Hash
	case s.TxHashAlt != "":
		return s.TxHashAlt
	default:
		return s.ID
	}
}

// PaymentAddr is the resolved address of a transaction leg
type PaymentAddr struct {
	Bech32 string `json:"bech32"`
}

// TxIO is one input or output of a transaction body
type TxIO struct {
	PaymentAddr PaymentAddr `json:"payment_addr"`
	Value       string      `json:"value"` // lovelace, decimal string
}

// TxInfo is a full transaction body from /tx_info
type TxInfo struct {
	TxHash    string `json:"tx_hash"`
	BlockTime int64  `json:"block_time"` // unix seconds, 0 when not in a block
	Fee       string `json:"fee"`        // lovelace, decimal string
	Inputs    []TxIO `json:"inputs"`
	Outputs   []TxIO `json:"outputs"`
}

// TxStatus is a confirmation report from /tx_status
type TxStatus struct {
	TxHash           string `json:"tx_hash"`
	Status           string `json:"status"`
	NumConfirmations int64  `json:"num_confirmations"`
}
