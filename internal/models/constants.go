package models

const (
	// DefaultMinLeadDays minimum days between booking creation and travel date
	DefaultMinLeadDays = 2

	// DefaultMaxAdvanceDays how far into the future a travel date may be
	DefaultMaxAdvanceDays = 365

	// DefaultMaxGuests maximum guests on a single booking
	DefaultMaxGuests = 20

	// DefaultDedupTTL lifetime of a webhook dedup key in seconds
	DefaultDedupTTL = 72 * 60 * 60

	// DefaultProviderTimeout payment provider call timeout in seconds
	DefaultProviderTimeout = 10

	// RateLimitRequests requests allowed per window
	RateLimitRequests = 30

	// RateLimitWindow request rate limit window in seconds
	RateLimitWindow = 60
)
