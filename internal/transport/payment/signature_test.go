package payment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1","type":"charge.refunded"}`)
	now := time.Now()

	header := SignPayload(payload, secret, now)

	require.NoError(t, VerifySignature(payload, header, secret, DefaultSignatureTolerance, now))
}

func TestVerifySignatureTamperedPayload(t *testing.T) {
	secret := []byte("whsec_test")
	now := time.Now()

	header := SignPayload([]byte(`{"id":"evt_1"}`), secret, now)

	err := VerifySignature([]byte(`{"id":"evt_2"}`), header, secret, DefaultSignatureTolerance, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	header := SignPayload(payload, []byte("whsec_a"), now)

	err := VerifySignature(payload, header, []byte("whsec_b"), DefaultSignatureTolerance, now)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifySignatureStaleTimestamp(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	// подпись валидна, но старше допустимого окна
	header := SignPayload(payload, secret, now.Add(-10*time.Minute))

	err := VerifySignature(payload, header, secret, DefaultSignatureTolerance, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureFutureTimestamp(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	header := SignPayload(payload, secret, now.Add(10*time.Minute))

	err := VerifySignature(payload, header, secret, DefaultSignatureTolerance, now)
	assert.ErrorIs(t, err, ErrStaleTimestamp)
}

func TestVerifySignatureMalformedHeader(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	cases := []struct {
		name   string
		header string
	}{
		{"empty", ""},
		{"no signature", "t=1700000000"},
		{"no timestamp", "v1=deadbeef"},
		{"garbage timestamp", "t=abc,v1=deadbeef"},
		{"bare value", "deadbeef"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := VerifySignature(payload, tc.header, secret, DefaultSignatureTolerance, now)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestVerifySignatureSecondSchemeAccepted(t *testing.T) {
	secret := []byte("whsec_test")
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	// провайдер может прислать несколько подписей: достаточно одной валидной
	valid := SignPayload(payload, secret, now)
	header := strings.Replace(valid, "v1=", "v1=deadbeef,v1=", 1)

	require.NoError(t, VerifySignature(payload, header, secret, DefaultSignatureTolerance, now))
}
