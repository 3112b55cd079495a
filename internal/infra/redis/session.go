package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/masikip/notewallet/pkg/logger"
)

// SessionKey holds the last connected wallet so the session can be restored
// after a restart without user interaction.
const SessionKey = "notewallet:session"

// savedSession is the persisted connection snapshot
type savedSession struct {
	WalletName string `json:"wallet_name"`
	Address    string `json:"address"`
}

// SessionStore persists the restore snapshot of the current wallet session
type SessionStore struct {
	client *redis.Client
	logger *logger.Logger
}

// NewSessionStore creates a new session store
func NewSessionStore(client *redis.Client, log *logger.Logger) *SessionStore {
	return &SessionStore{
		client: client,
		logger: log.WithField("component", "session_store"),
	}
}

// Save records the connected wallet and its account address
func (s *SessionStore) Save(ctx context.Context, walletName, address string) error {
	data, err := json.Marshal(savedSession{WalletName: walletName, Address: address})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, SessionKey, data, 0).Err(); err != nil {
		s.logger.Error("session store error", "operation", "set", "error", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the saved wallet name and address, reporting found=false when
// no session exists or the stored value is unreadable.
func (s *SessionStore) Load(ctx context.Context) (walletName, address string, found bool, err error) {
	val, err := s.client.Get(ctx, SessionKey).Result()
	if err == redis.Nil {
		return "", "", false, nil
	}
	if err != nil {
		s.logger.Error("session store error", "operation", "get", "error", err)
		return "", "", false, fmt.Errorf("failed to load session: %w", err)
	}

	var saved savedSession
	if err := json.Unmarshal([]byte(val), &saved); err != nil {
		s.logger.Warn("saved session corrupt, discarding", "error", err)
		return "", "", false, nil
	}
	if saved.WalletName == "" || saved.Address == "" {
		return "", "", false, nil
	}
	return saved.WalletName, saved.Address, true, nil
}

// Clear removes the saved session
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, SessionKey).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
