package models

// CatalogItem is what Catalog Lookup resolves a slug to.
type CatalogItem struct {
	ItemRef   `yaml:",inline"`
	UnitPrice int64  `json:"unit_price" yaml:"unit_price"`
	Currency  string `json:"currency" yaml:"currency"`
}

// CheckoutSession is the provider-hosted payment flow handle.
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	RedirectURL string `json:"redirect_url"`
}

// SessionRequest is the outbound provider call for session creation.
type SessionRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	IdempotencyKey string            `json:"-"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeExpired   Outcome = "expired"
	OutcomeCancelled Outcome = "cancelled"
)

// TargetStatus maps a provider outcome to the booking status it drives.
func (o Outcome) TargetStatus() (Status, bool) {
	switch o {
	case OutcomeSucceeded:
		return StatusPaid, true
	case OutcomeFailed, OutcomeExpired:
		return StatusFailed, true
	case OutcomeCancelled:
		return StatusCancelled, true
	default:
		return "", false
	}
}

// ProviderEvent is the parsed body of a signed webhook delivery.
type ProviderEvent struct {
	EventID   string  `json:"event_id"`
	SessionID string  `json:"session_id"`
	Outcome   Outcome `json:"outcome"`
}
