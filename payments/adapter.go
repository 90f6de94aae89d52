package payments

// VerificationResult is the normalized shape every gateway's "verify
// transaction" call is reduced to. Amount is always in major units;
// each adapter does its own minor-unit conversion.
type VerificationResult struct {
	Success       bool
	Amount        float64
	TransactionID string

	// Raw is the verbatim response body, persisted for audit.
	Raw string

	// Metadata carries whatever the gateway echoed back. Only the
	// session-based card gateway embeds the booking intent here; the
	// regional processors leave it empty and the intent travels in the
	// request body instead.
	Metadata map[string]string
}

// Verifier resolves an external payment reference against one gateway.
// Adapters are pure translation layers: no persistence, no retries.
type Verifier interface {
	Channel() string
	Verify(reference string) (*VerificationResult, error)
}
