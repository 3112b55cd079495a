package history

import (
	"math/big"
	"time"
)

// Direction indicates whether a transaction moved funds into or out of the account
type Direction string

const (
	DirectionCredit Direction = "credit" // funds received
	DirectionDebit  Direction = "debit"  // funds sent
)

// Status represents the confirmation state of a transaction
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusUnknown   Status = "unknown"
)

// Origin records which view a transaction came from. It only drives merge
// precedence and is never shown to the user.
type Origin string

const (
	OriginRemote Origin = "remote"
	OriginLocal  Origin = "local"
)

// ActionKind is the best-effort note-operation label inferred from the
// payment amount. It is display-only and never authoritative.
type ActionKind string

const (
	ActionCreate ActionKind = "CREATE"
	ActionUpdate ActionKind = "UPDATE"
	ActionDelete ActionKind = "DELETE"
	ActionNone   ActionKind = ""
)

// Transaction is one reconciled, user-facing payment observation
type Transaction struct {
	ID          string     `json:"id"`
	Direction   Direction  `json:"type"`
	Action      ActionKind `json:"action,omitempty"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`   // ADA, always non-negative
	FeeAda      float64    `json:"fee_ada,omitempty"` // known for local-origin entries only
	Currency    string     `json:"currency"`
	Timestamp   time.Time  `json:"timestamp"`
	Status      Status     `json:"status"`
	Origin      Origin     `json:"origin,omitempty"`
}

// AddressValue is one input or output leg of a remote transaction,
// already resolved to a bech32 payment address.
type AddressValue struct {
	Address string
	Value   *big.Int // lovelace
}

// RemoteTx is a transaction body fetched from the indexer, reduced to the
// fields reconciliation needs. BlockTime is zero when the transaction has
// not been included in a block yet.
type RemoteTx struct {
	Hash      string
	BlockTime time.Time
	Fee       *big.Int // lovelace, nil when unreported
	Inputs    []AddressValue
	Outputs   []AddressValue
}

// Confirmed reports whether a remote transaction counts as confirmed:
// either the indexer said so, or it carries a block-inclusion timestamp.
func (tx RemoteTx) Confirmed(indexerStatus string) bool {
	return indexerStatus == "confirmed" || !tx.BlockTime.IsZero()
}
