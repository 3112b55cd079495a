// Package auth implements the single-operator login: one bcrypt-hashed
// access passphrase exchanged for an API token. There are no user accounts;
// the service guards one person's wallet.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/masikip/notewallet/pkg/logger"
)

// Service verifies the operator's access passphrase
type Service struct {
	passphraseHash []byte
	logger         *logger.Logger
}

// NewService creates a new auth service. The hash is produced once with
// `htpasswd -B` or an equivalent bcrypt tool and supplied via configuration.
func NewService(passphraseHash string, log *logger.Logger) *Service {
	return &Service{
		passphraseHash: []byte(passphraseHash),
		logger:         log.WithField("component", "auth"),
	}
}

// Login checks the passphrase against the configured hash
func (s *Service) Login(passphrase string) error {
	if len(s.passphraseHash) == 0 || passphrase == "" {
		return ErrInvalidPassphrase
	}
	if err := bcrypt.CompareHashAndPassword(s.passphraseHash, []byte(passphrase)); err != nil {
		s.logger.Warn("login attempt with wrong passphrase")
		return ErrInvalidPassphrase
	}
	return nil
}

// HashPassphrase produces a bcrypt hash suitable for configuration
func HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
