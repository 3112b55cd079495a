package history

import "fmt"

// Classifier assigns display labels to transactions based on the payment
// amount. Once a payment is on-chain the original operation metadata is
// gone, so this is a heuristic over amount alone; mislabeling across
// adjacent bands is expected and acceptable.
type Classifier struct {
	cfg *Config
}

// NewClassifier creates a new Classifier
func NewClassifier(cfg *Config) *Classifier {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Classifier{cfg: cfg}
}

// Classify fills in Action, Label and Description for a transaction from
// its amount and direction. Amounts outside the label window or between
// bands keep the generic send/receive label.
func (c *Classifier) Classify(tx *Transaction) {
	if tx.Direction == DirectionDebit {
		tx.Label = "Payment Sent"
	} else {
		tx.Label = "Payment Received"
	}
	tx.Description = fmt.Sprintf("Transaction %s...", shortHash(tx.ID))
	tx.Action = ActionNone

	if tx.Amount < c.cfg.LabelWindowMin || tx.Amount > c.cfg.LabelWindowMax {
		return
	}

	for _, band := range c.cfg.Bands {
		if tx.Amount >= band.MinAda && tx.Amount <= band.MaxAda {
			tx.Action = band.Action
			tx.Label = band.Label
			tx.Description = band.Description
			return
		}
	}
}

func shortHash(hash string) string {
	if len(hash) <= 8 {
		return hash
	}
	return hash[:8]
}
