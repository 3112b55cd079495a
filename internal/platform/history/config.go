package history

import "time"

// Band maps an ADA amount range to a note-operation label
type Band struct {
	MinAda      float64
	MaxAda      float64
	Action      ActionKind
	Label       string
	Description string
}

// Config holds configuration for transaction reconciliation
type Config struct {
	// PendingGrace is how long a local pending entry may stay pending before
	// it is optimistically promoted to confirmed
	PendingGrace time.Duration

	// HistoryLimit caps how many remote transactions feed the history view
	HistoryLimit int

	// MetricsLimit caps how many remote transactions feed the metrics query
	MetricsLimit int

	// LabelWindowMin/Max bound the amount range inside which action labels
	// are attempted at all
	LabelWindowMin float64
	LabelWindowMax float64

	// Bands is the ordered action-label table, first match wins
	Bands []Band
}

// DefaultConfig returns the default reconciliation configuration. The band
// values track the configured note operation fees; the source revisions
// disagreed on some of them, so everything here is overridable.
func DefaultConfig() *Config {
	return &Config{
		PendingGrace:   2 * time.Minute,
		HistoryLimit:   50,
		MetricsLimit:   40,
		LabelWindowMin: 0.5,
		LabelWindowMax: 2.5,
		Bands: []Band{
			{MinAda: 1.9, MaxAda: 2.1, Action: ActionCreate, Label: "Note Creation Payment", Description: "Payment for creating a new note"},
			{MinAda: 0.9, MaxAda: 1.1, Action: ActionUpdate, Label: "Note Update Payment", Description: "Payment for updating a note"},
			{MinAda: 0.4, MaxAda: 0.6, Action: ActionDelete, Label: "Note Deletion Payment", Description: "Payment for deleting a note"},
		},
	}
}

// BandFor returns the label band configured for an action
func (c *Config) BandFor(action ActionKind) (Band, bool) {
	for _, band := range c.Bands {
		if band.Action == action {
			return band, true
		}
	}
	return Band{}, false
}

// Validate validates the configuration, falling back to defaults for
// unusable values
func (c *Config) Validate() error {
	if c.PendingGrace <= 0 {
		c.PendingGrace = 2 * time.Minute
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = 50
	}
	if c.MetricsLimit <= 0 {
		c.MetricsLimit = 40
	}
	if c.LabelWindowMax <= c.LabelWindowMin {
		c.LabelWindowMin = 0.5
		c.LabelWindowMax = 2.5
	}
	return nil
}
