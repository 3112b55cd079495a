package wallet

import (
	"context"
	"encoding/json"
	"time"

	"github.com/masikip/notewallet/pkg/logger"
)

// State represents the lifecycle state of the wallet session
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// IsValid checks if the state is valid
func (s State) IsValid() bool {
	switch s {
	case StateDisconnected, StateConnecting, StateConnected:
		return true
	}
	return false
}

// Account identifies one connected wallet session
type Account struct {
	Address     string    `json:"address"`     // canonical bech32 address, identity key for storage
	WalletName  string    `json:"wallet_name"` // display label of the active provider
	ConnectedAt time.Time `json:"connected_at"`
}

// ProviderInfo describes one wallet provider discovered in the browser environment
type ProviderInfo struct {
	Name    string `json:"name"`
	Icon    string `json:"icon,omitempty"`
	Version string `json:"version,omitempty"`
}

// preferredProviders is the enumeration order tried before falling back to
// whatever else the bridge reports.
var preferredProviders = []string{"eternl", "nami", "flint", "lace", "gerowallet", "typhoncip30"}

// PickProvider selects the provider to enable from the discovered set:
// first match in preference order, otherwise the first one reported.
func PickProvider(available []ProviderInfo) (ProviderInfo, bool) {
	if len(available) == 0 {
		return ProviderInfo{}, false
	}
	byName := make(map[string]ProviderInfo, len(available))
	for _, p := range available {
		byName[p.Name] = p
	}
	for _, name := range preferredProviders {
		if p, ok := byName[name]; ok {
			return p, true
		}
	}
	return available[0], true
}

// Utxo is an unspent output as reported by the wallet provider. Providers
// disagree on the payload layout, so it stays opaque until the balance
// aggregator sniffs it.
type Utxo json.RawMessage

// Registry enumerates and enables wallet providers.
type Registry interface {
	// ListAvailable returns the providers injected into the browser environment.
	ListAvailable(ctx context.Context) ([]ProviderInfo, error)

	// Enable activates the named provider and returns a handle to it.
	Enable(ctx context.Context, name string) (Handle, error)
}

// Handle is the capability set of an enabled wallet provider (CIP-30 surface).
type Handle interface {
	// GetRewardAddresses returns the account's reward (stake) addresses.
	GetRewardAddresses(ctx context.Context) ([]string, error)

	// GetUsedAddresses returns addresses the wallet has used on-chain.
	GetUsedAddresses(ctx context.Context) ([]string, error)

	// GetChangeAddress returns the wallet's change address.
	GetChangeAddress(ctx context.Context) (string, error)

	// GetUtxos returns the wallet's spendable outputs.
	GetUtxos(ctx context.Context) ([]Utxo, error)

	// SignTx signs an unsigned transaction CBOR and returns the witnessed form.
	SignTx(ctx context.Context, unsignedTx string, partial bool) (string, error)

	// SubmitTx submits a signed transaction and returns its hash.
	SubmitTx(ctx context.Context, signedTx string) (string, error)
}

// PaymentRequest describes one payment for the transaction builder. Metadata
// is attached under its map keys as top-level metadatum labels.
type PaymentRequest struct {
	Recipient      string         `json:"recipient"`
	AmountLovelace string         `json:"amount_lovelace"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// BuiltTx is an assembled but unsigned transaction
type BuiltTx struct {
	UnsignedTx  string `json:"unsigned_tx"`
	FeeLovelace string `json:"fee_lovelace,omitempty"`
}

// Builder constructs unsigned transaction CBOR. The wallet bridge implements
// it next to the CIP-30 surface since the builder needs the wallet's UTXO set.
type Builder interface {
	BuildTx(ctx context.Context, req PaymentRequest) (BuiltTx, error)
}

// ResolveAccountAddress picks the canonical account address from the handle:
// reward address first, then first used address, then change address. The
// result is normalized to bech32; a normalization failure is recoverable
// (the raw value still works as a key) and only logged.
func ResolveAccountAddress(ctx context.Context, h Handle, log *logger.Logger) (string, error) {
	rewards, err := h.GetRewardAddresses(ctx)
	if err == nil && len(rewards) > 0 && rewards[0] != "" {
		return normalizeLogged(rewards[0], log), nil
	}

	used, err := h.GetUsedAddresses(ctx)
	if err == nil && len(used) > 0 && used[0] != "" {
		return normalizeLogged(used[0], log), nil
	}

	change, err := h.GetChangeAddress(ctx)
	if err != nil {
		return "", err
	}
	if change == "" {
		return "", ErrNoAddress
	}
	return normalizeLogged(change, log), nil
}

func normalizeLogged(raw string, log *logger.Logger) string {
	addr, err := NormalizeAddress(raw)
	if err != nil {
		log.WithError(err).Warn("wallet address could not be normalized, using raw value")
	}
	return addr
}
