package koios

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/masikip/notewallet/internal/platform/wallet"
	"github.com/masikip/notewallet/pkg/logger"
)

const requestTimeout = 30 * time.Second

const (
	pathTxHistory = "/address_tx_history" // newer query shape
	pathTxs       = "/address_txs"        // older fallback shape
	pathTxInfo    = "/tx_info"
	pathTxStatus  = "/tx_status"
)

// Client is an HTTP client for the Koios REST API. It tolerates several
// candidate base URLs per network and routes requests through an optional
// CORS relay before falling back to a direct request.
type Client struct {
	httpClient  *http.Client
	mainnetURLs []string
	testnetURLs []string
	relayURL    string
	logger      *logger.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewClient creates a new Koios API client
func NewClient(mainnetURLs, testnetURLs []string, relayURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		mainnetURLs: mainnetURLs,
		testnetURLs: testnetURLs,
		relayURL:    relayURL,
		logger:      log.WithField("component", "koios"),
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}
}

// SetBaseURLs overrides the candidate base URLs (useful for testing)
func (c *Client) SetBaseURLs(mainnet, testnet []string) {
	c.mainnetURLs = mainnet
	c.testnetURLs = testnet
}

// candidateBases picks the endpoint list for the address's network
func (c *Client) candidateBases(address string) []string {
	if wallet.IsMainnetAddress(address) {
		return c.mainnetURLs
	}
	return c.testnetURLs
}

// breakerFor returns the circuit breaker guarding one base URL
func (c *Client) breakerFor(base string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cb, ok := c.breakers[base]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        base,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
	c.breakers[base] = cb
	return cb
}

// httpError marks a non-2xx response. It must not trigger the direct-request
// fallback, which exists for relay connectivity failures only.
type httpError struct {
	status int
	path   string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("Koios request failed for %s (%d)", e.path, e.status)
}

// postJSON issues one POST to base+path, relay first when configured, then
// once directly if the relay leg failed at the transport level. The decoded
// response body lands in out.
func (c *Client) postJSON(ctx context.Context, base, path string, payload, out any) error {
	result, err := c.breakerFor(base).Execute(func() (any, error) {
		body, err := c.post(ctx, base, path, payload)
		return body, err
	})
	if err != nil {
		return err
	}
	return json.Unmarshal(result.([]byte), out)
}

func (c *Client) post(ctx context.Context, base, path string, payload any) ([]byte, error) {
	target := base + path

	if c.relayURL == "" {
		return c.doPost(ctx, target, path, payload)
	}

	relayed := c.relayURL + url.QueryEscape(target)
	body, err := c.doPost(ctx, relayed, path, payload)
	if err == nil {
		return body, nil
	}
	if _, isHTTP := err.(*httpError); isHTTP {
		// The relay reached the origin; retrying directly will not help
		return nil, err
	}

	c.logger.Warn("CORS relay failed, trying direct request", "path", path, "error", err)
	directBody, directErr := c.doPost(ctx, target, path, payload)
	if directErr != nil {
		return nil, err
	}
	return directBody, nil
}

func (c *Client) doPost(ctx context.Context, reqURL, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return nil, fmt.Errorf("failed to read response body: %w", readErr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpError{status: resp.StatusCode, path: path}
	}

	c.logger.Debug("API response", "path", path, "status_code", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	return body, nil
}

// ListTransactions fetches the transaction list for an address, trying each
// candidate base URL in order and, within each, the newer query shape before
// the older one. It returns the base URL that answered so detail queries can
// stick to it. Total failure degrades to an empty list, never an error; the
// caller always has the local log as fallback.
func (c *Client) ListTransactions(ctx context.Context, address string) (string, []TxSummary) {
	if address == "" {
		return "", nil
	}

	for _, base := range c.candidateBases(address) {
		var summaries []TxSummary

		err := c.postJSON(ctx, base, pathTxHistory, addressesPayload{Addresses: []string{address}}, &summaries)
		if err == nil && len(summaries) > 0 {
			return base, summaries
		}

		summaries = nil
		err = c.postJSON(ctx, base, pathTxs, addressesPayload{Addresses: []string{address}}, &summaries)
		if err == nil && len(summaries) > 0 {
			return base, summaries
		}
		if err != nil {
			c.logger.Warn("Koios endpoints failed", "base", base, "error", err)
		}
	}

	c.logger.Warn("no Koios endpoint returned transactions", "address", address)
	return "", nil
}

// FetchDetails fetches full transaction bodies and confirmation statuses for
// the given hashes from an already-resolved base URL. The two requests are
// issued concurrently and jointly awaited.
func (c *Client) FetchDetails(ctx context.Context, base string, hashes []string) ([]TxInfo, []TxStatus, error) {
	if len(hashes) == 0 {
		return nil, nil, nil
	}

	var (
		infos    []TxInfo
		statuses []TxStatus
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.postJSON(gCtx, base, pathTxInfo, hashesPayload{TxHashes: hashes}, &infos)
	})
	g.Go(func() error {
		return c.postJSON(gCtx, base, pathTxStatus, hashesPayload{TxHashes: hashes}, &statuses)
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch transaction details: %w", err)
	}
	return infos, statuses, nil
}
