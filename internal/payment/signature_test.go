package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	payload := []byte(`{"event_id":"evt-1","session_id":"sess-1","outcome":"succeeded"}`)
	sig := Sign("topsecret", payload)

	assert.True(t, VerifySignature("topsecret", payload, sig))
}

func TestVerifySignatureTampered(t *testing.T) {
	payload := []byte(`{"event_id":"evt-1","outcome":"succeeded"}`)
	sig := Sign("topsecret", payload)

	tampered := []byte(`{"event_id":"evt-1","outcome":"failed"}`)
	assert.False(t, VerifySignature("topsecret", tampered, sig))
	assert.False(t, VerifySignature("wrongsecret", payload, sig))
}

func TestVerifySignatureFailsClosed(t *testing.T) {
	payload := []byte(`{}`)

	assert.False(t, VerifySignature("topsecret", payload, ""))
	assert.False(t, VerifySignature("", payload, Sign("", payload)))
	assert.False(t, VerifySignature("topsecret", payload, "not-hex!"))
}
