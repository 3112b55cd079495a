// Package cip30 talks to the wallet bridge, a small companion process running
// next to the user's browser that exposes the CIP-30 wallet API over HTTP.
package cip30

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/masikip/notewallet/internal/platform/wallet"
	"github.com/masikip/notewallet/pkg/logger"
)

const requestTimeout = 60 * time.Second // signing waits on a human

// Bridge is an HTTP client for the wallet bridge. It implements
// wallet.Registry; Enable returns a wallet.Handle bound to one provider.
type Bridge struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewBridge creates a new wallet bridge client
func NewBridge(baseURL string, log *logger.Logger) *Bridge {
	return &Bridge{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: log.WithField("component", "wallet_bridge"),
	}
}

// ListAvailable returns the wallet providers the bridge found injected into
// the browser environment.
func (b *Bridge) ListAvailable(ctx context.Context) ([]wallet.ProviderInfo, error) {
	var payload []providerPayload
	if err := b.do(ctx, http.MethodGet, "/providers", nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to list wallet providers: %w", err)
	}

	providers := make([]wallet.ProviderInfo, 0, len(payload))
	for _, p := range payload {
		providers = append(providers, wallet.ProviderInfo{
			Name:    p.Name,
			Icon:    p.Icon,
			Version: p.Version,
		})
	}
	return providers, nil
}

// Enable activates the named provider. The user may be prompted by the wallet
// extension, so this can block until they respond.
func (b *Bridge) Enable(ctx context.Context, name string) (wallet.Handle, error) {
	path := "/providers/" + url.PathEscape(name) + "/enable"
	if err := b.do(ctx, http.MethodPost, path, struct{}{}, nil); err != nil {
		return nil, fmt.Errorf("failed to enable wallet %q: %w", name, err)
	}
	return &handle{bridge: b, provider: name}, nil
}

// do performs one bridge request. Non-2xx responses carrying a CIP-30 error
// payload surface as *BridgeError so callers can tell a user decline from a
// transport failure.
func (b *Bridge) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("wallet bridge unreachable: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	b.logger.Debug("bridge request", "method", method, "path", path,
		"status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var bridgeErr BridgeError
		if json.Unmarshal(respBody, &bridgeErr) == nil && (bridgeErr.Code != 0 || bridgeErr.Info != "") {
			return &bridgeErr
		}
		return fmt.Errorf("wallet bridge error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode bridge response: %w", err)
	}
	return nil
}

// handle routes the CIP-30 capability calls for one enabled provider
type handle struct {
	bridge   *Bridge
	provider string
}

func (h *handle) path(suffix string) string {
	return "/providers/" + url.PathEscape(h.provider) + suffix
}

func (h *handle) GetRewardAddresses(ctx context.Context) ([]string, error) {
	var addrs []string
	if err := h.bridge.do(ctx, http.MethodGet, h.path("/reward-addresses"), nil, &addrs); err != nil {
		return nil, fmt.Errorf("failed to get reward addresses: %w", err)
	}
	return addrs, nil
}

func (h *handle) GetUsedAddresses(ctx context.Context) ([]string, error) {
	var addrs []string
	if err := h.bridge.do(ctx, http.MethodGet, h.path("/used-addresses"), nil, &addrs); err != nil {
		return nil, fmt.Errorf("failed to get used addresses: %w", err)
	}
	return addrs, nil
}

func (h *handle) GetChangeAddress(ctx context.Context) (string, error) {
	var resp changeAddressResponse
	if err := h.bridge.do(ctx, http.MethodGet, h.path("/change-address"), nil, &resp); err != nil {
		return "", fmt.Errorf("failed to get change address: %w", err)
	}
	return resp.Address, nil
}

func (h *handle) GetUtxos(ctx context.Context) ([]wallet.Utxo, error) {
	var raw []json.RawMessage
	if err := h.bridge.do(ctx, http.MethodGet, h.path("/utxos"), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get utxos: %w", err)
	}

	utxos := make([]wallet.Utxo, len(raw))
	for i, r := range raw {
		utxos[i] = wallet.Utxo(r)
	}
	return utxos, nil
}

// BuildTx asks the bridge to assemble an unsigned transaction from the
// wallet's UTXO set. The bridge owns coin selection and fee calculation.
func (h *handle) BuildTx(ctx context.Context, req wallet.PaymentRequest) (wallet.BuiltTx, error) {
	var resp wallet.BuiltTx
	if err := h.bridge.do(ctx, http.MethodPost, h.path("/build-tx"), req, &resp); err != nil {
		return wallet.BuiltTx{}, fmt.Errorf("failed to build transaction: %w", err)
	}
	return resp, nil
}

func (h *handle) SignTx(ctx context.Context, unsignedTx string, partial bool) (string, error) {
	var resp signResponse
	req := signRequest{Tx: unsignedTx, PartialSign: partial}
	if err := h.bridge.do(ctx, http.MethodPost, h.path("/sign-tx"), req, &resp); err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}
	return resp.SignedTx, nil
}

func (h *handle) SubmitTx(ctx context.Context, signedTx string) (string, error) {
	var resp submitResponse
	if err := h.bridge.do(ctx, http.MethodPost, h.path("/submit-tx"), submitRequest{SignedTx: signedTx}, &resp); err != nil {
		return "", fmt.Errorf("failed to submit transaction: %w", err)
	}
	return resp.TxHash, nil
}
