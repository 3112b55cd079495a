package payment

// Config holds the note-operation payment amounts in ADA
type Config struct {
	CreateAda float64
	UpdateAda float64
	DeleteAda float64

	// MinSelfPaymentAda is the floor applied when the payment goes back to the
	// sender's own address. Outputs below roughly 1 ADA violate the network's
	// minimum-UTXO rule, so undersized self-payments are raised to it.
	MinSelfPaymentAda float64

	// AppTag is the first CIP-20 message line identifying the application
	AppTag string

	// DefaultRecipient receives payments when the request names no recipient.
	// Empty means the payment goes back to the sender's own address.
	DefaultRecipient string
}

// DefaultConfig returns the default payment configuration
func DefaultConfig() *Config {
	return &Config{
		CreateAda:         2.0,
		UpdateAda:         1.0,
		DeleteAda:         0.5,
		MinSelfPaymentAda: 1.0,
		AppTag:            "Masikip Note",
	}
}

// Validate validates the configuration, falling back to defaults for
// unusable values
func (c *Config) Validate() error {
	if c.CreateAda <= 0 {
		c.CreateAda = 2.0
	}
	if c.UpdateAda <= 0 {
		c.UpdateAda = 1.0
	}
	if c.DeleteAda <= 0 {
		c.DeleteAda = 0.5
	}
	if c.MinSelfPaymentAda <= 0 {
		c.MinSelfPaymentAda = 1.0
	}
	if c.AppTag == "" {
		c.AppTag = "Masikip Note"
	}
	return nil
}
