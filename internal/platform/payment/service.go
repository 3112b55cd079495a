// Package payment turns note operations into on-chain ADA payments. Each
// operation has a fixed price; the resulting transaction carries a CIP-20
// message so the operation survives in chain metadata.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/masikip/notewallet/internal/platform/history"
	"github.com/masikip/notewallet/internal/platform/wallet"
	apperrors "github.com/masikip/notewallet/internal/shared/errors"
	"github.com/masikip/notewallet/pkg/logger"
	"github.com/masikip/notewallet/pkg/money"
)

// metadataLabel is the CIP-20 transaction message metadatum label
const metadataLabel = "674"

// maxMsgLineLen is the CIP-20 per-line string limit
const maxMsgLineLen = 64

// Store is the slice of the local transaction log the payment flow needs
type Store interface {
	Append(ctx context.Context, address string, tx history.Transaction) error
}

// Wallet is the capability set one payment needs from the connected wallet
type Wallet interface {
	wallet.Builder
	SignTx(ctx context.Context, unsignedTx string, partial bool) (string, error)
	SubmitTx(ctx context.Context, signedTx string) (string, error)
}

// Request describes one note-operation payment
type Request struct {
	Operation history.ActionKind
	Recipient string   // empty means self-payment to the account address
	Memo      []string // extra CIP-20 message lines, e.g. a note title
}

// Service prices, builds, signs and records note-operation payments
type Service struct {
	cfg        *Config
	historyCfg *history.Config
	store      Store
	logger     *logger.Logger
}

// NewService creates a new payment service
func NewService(cfg *Config, historyCfg *history.Config, store Store, log *logger.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Validate()
	if historyCfg == nil {
		historyCfg = history.DefaultConfig()
	}
	return &Service{
		cfg:        cfg,
		historyCfg: historyCfg,
		store:      store,
		logger:     log.WithField("component", "payment_service"),
	}
}

// RequiredAmount returns the ADA price of a note operation
func (s *Service) RequiredAmount(op history.ActionKind) (float64, error) {
	switch op {
	case history.ActionCreate:
		return s.cfg.CreateAda, nil
	case history.ActionUpdate:
		return s.cfg.UpdateAda, nil
	case history.ActionDelete:
		return s.cfg.DeleteAda, nil
	}
	return 0, apperrors.BadRequest(fmt.Sprintf("unknown note operation %q", op))
}

// HasSufficientBalance reports whether the wallet balance covers an operation.
// An unknown balance counts as insufficient; the caller should refresh first.
func (s *Service) HasSufficientBalance(balanceAda *float64, op history.ActionKind) bool {
	amount, err := s.RequiredAmount(op)
	if err != nil {
		return false
	}
	return balanceAda != nil && *balanceAda >= amount
}

// Send executes one note-operation payment through the connected wallet and
// records it in the local log as pending. The returned transaction is the
// recorded entry, its ID the on-chain hash.
func (s *Service) Send(ctx context.Context, w Wallet, account wallet.Account, req Request) (history.Transaction, error) {
	amount, err := s.RequiredAmount(req.Operation)
	if err != nil {
		return history.Transaction{}, err
	}

	recipient := req.Recipient
	if recipient == "" {
		recipient = s.cfg.DefaultRecipient
	}
	if recipient == "" {
		recipient = account.Address
	}
	if recipient == account.Address && amount < s.cfg.MinSelfPaymentAda {
		s.logger.Debug("raising self-payment to minimum-utxo floor",
			"amount_ada", amount, "floor_ada", s.cfg.MinSelfPaymentAda)
		amount = s.cfg.MinSelfPaymentAda
	}

	lovelace, err := money.AdaToLovelace(strconv.FormatFloat(amount, 'f', -1, 64))
	if err != nil {
		return history.Transaction{}, apperrors.Internal("failed to convert payment amount", err)
	}

	built, err := w.BuildTx(ctx, wallet.PaymentRequest{
		Recipient:      recipient,
		AmountLovelace: lovelace.String(),
		Metadata:       s.metadata(req),
	})
	if err != nil {
		return history.Transaction{}, s.mapWalletError(err, "build")
	}

	signed, err := w.SignTx(ctx, built.UnsignedTx, false)
	if err != nil {
		return history.Transaction{}, s.mapWalletError(err, "sign")
	}

	hash, err := w.SubmitTx(ctx, signed)
	if err != nil {
		return history.Transaction{}, s.mapWalletError(err, "submit")
	}

	tx := s.recordEntry(req.Operation, hash, amount, built.FeeLovelace)
	if err := s.store.Append(ctx, account.Address, tx); err != nil {
		// The payment is already on-chain; a log miss only costs local history
		s.logger.WithError(err).Warn("payment submitted but not recorded locally", "tx_hash", hash)
	}

	s.logger.Info("payment submitted", "operation", req.Operation, "amount_ada", amount, "tx_hash", hash)
	return tx, nil
}

// metadata builds the CIP-20 transaction message payload
func (s *Service) metadata(req Request) map[string]any {
	lines := []string{s.cfg.AppTag, string(req.Operation), time.Now().UTC().Format(time.RFC3339)}
	lines = append(lines, req.Memo...)

	msg := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if len(line) > maxMsgLineLen {
			line = line[:maxMsgLineLen]
		}
		msg = append(msg, line)
	}

	return map[string]any{
		metadataLabel: map[string]any{"msg": msg},
	}
}

// recordEntry builds the local pending log entry for a submitted payment
func (s *Service) recordEntry(op history.ActionKind, hash string, amountAda float64, feeLovelace string) history.Transaction {
	tx := history.Transaction{
		ID:        hash,
		Direction: history.DirectionDebit,
		Action:    op,
		Label:     "Payment Sent",
		Amount:    amountAda,
		Currency:  "ADA",
		Timestamp: time.Now().UTC(),
		Status:    history.StatusPending,
		Origin:    history.OriginLocal,
	}

	if band, ok := s.historyCfg.BandFor(op); ok {
		tx.Label = band.Label
		tx.Description = band.Description
	}

	if feeLovelace != "" {
		if fee, err := money.ParseLovelace(feeLovelace); err == nil {
			tx.FeeAda = money.ToAda(fee)
		}
	}
	return tx
}

// mapWalletError turns low-level wallet failures into messages fit for the UI
func (s *Service) mapWalletError(err error, stage string) error {
	s.logger.WithError(err).Warn("payment failed", "stage", stage)

	if wallet.IsDeclined(err) {
		return apperrors.Wrap(err, apperrors.ErrCodeWalletRejected, "Payment was cancelled in the wallet")
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "insufficient") || strings.Contains(msg, "not enough"):
		return apperrors.Wrap(err, apperrors.ErrCodeInsufficientBalance, "Insufficient balance to complete this payment")
	case strings.Contains(msg, "utxo") && (strings.Contains(msg, "small") || strings.Contains(msg, "minimum")):
		return apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Payment amount is below the minimum the network accepts")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "Payment failed, please try again")
}
