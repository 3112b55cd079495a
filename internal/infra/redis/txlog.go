package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/pkg/logger"
)

const (
	// TxLogKey is the single document holding every address's local log.
	TxLogKey = "notewallet:txlog"

	// MaxEntriesPerAddress caps each per-address log. Appends beyond the cap
	// evict the oldest entries.
	MaxEntriesPerAddress = 100
)

// TxLog is the Redis-backed local transaction log. The whole log lives in one
// JSON document keyed by account address, read and rewritten under a mutex so
// concurrent appends never clobber each other.
type TxLog struct {
	client *redis.Client
	mu     sync.Mutex
	logger *logger.Logger
}

// NewTxLog creates a new local transaction log
func NewTxLog(client *redis.Client, log *logger.Logger) *TxLog {
	return &TxLog{
		client: client,
		logger: log.WithField("component", "txlog"),
	}
}

// Load returns the recorded transactions for an address, newest first.
// A missing or unreadable document yields an empty log, never an error:
// local history is an enrichment and must not block the chain view.
func (s *TxLog) Load(ctx context.Context, address string) ([]history.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	return doc[address], nil
}

// Append records a transaction at the head of the address's log, evicting the
// oldest entries beyond the cap.
func (s *TxLog) Append(ctx context.Context, address string, tx history.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}

	entries := append([]history.Transaction{tx}, doc[address]...)
	if len(entries) > MaxEntriesPerAddress {
		entries = entries[:MaxEntriesPerAddress]
	}
	doc[address] = entries

	return s.write(ctx, doc)
}

// UpdateStatus sets the status of the given transaction IDs for an address.
// IDs not present in the log are ignored.
func (s *TxLog) UpdateStatus(ctx context.Context, address string, ids []string, status history.Status) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read(ctx)
	if err != nil {
		return err
	}

	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	changed := false
	entries := doc[address]
	for i := range entries {
		if _, ok := wanted[entries[i].ID]; ok && entries[i].Status != status {
			entries[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil
	}

	doc[address] = entries
	return s.write(ctx, doc)
}

// read loads the full log document. Corrupt JSON is treated as an empty log
// so one bad write cannot poison the store forever.
func (s *TxLog) read(ctx context.Context) (map[string][]history.Transaction, error) {
	val, err := s.client.Get(ctx, TxLogKey).Result()
	if err == redis.Nil {
		return make(map[string][]history.Transaction), nil
	}
	if err != nil {
		s.logger.Error("txlog error", "operation", "get", "error", err)
		return nil, fmt.Errorf("failed to load transaction log: %w", err)
	}

	doc := make(map[string][]history.Transaction)
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		s.logger.Warn("transaction log corrupt, starting fresh", "error", err)
		return make(map[string][]history.Transaction), nil
	}
	return doc, nil
}

func (s *TxLog) write(ctx context.Context, doc map[string][]history.Transaction) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction log: %w", err)
	}

	if err := s.client.Set(ctx, TxLogKey, data, 0).Err(); err != nil {
		s.logger.Error("txlog error", "operation", "set", "error", err)
		return fmt.Errorf("failed to save transaction log: %w", err)
	}
	return nil
}
