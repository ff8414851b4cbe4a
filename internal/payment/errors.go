package payment

import "errors"

var (
	// ErrGateway the provider call failed; booking state is unchanged and
	// the client may retry.
	ErrGateway = errors.New("payment provider call failed")

	// ErrInvalidState the booking is not eligible for checkout.
	ErrInvalidState = errors.New("booking is not in a checkout-eligible state")

	// ErrSignature webhook payload failed authenticity verification.
	ErrSignature = errors.New("webhook signature verification failed")

	// ErrInvalidPayload webhook body could not be parsed.
	ErrInvalidPayload = errors.New("webhook payload is not parseable")
)
