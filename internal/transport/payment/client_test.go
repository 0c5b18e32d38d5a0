package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreateRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/refunds", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		assert.Equal(t, "refund-order-42", r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "pi_1", r.PostForm.Get("payment_intent"))
		assert.Equal(t, "500", r.PostForm.Get("amount"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "re_1", "status": "pending"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")

	refundID, err := client.CreateRefund(context.Background(), "pi_1", 500, "refund-order-42")
	require.NoError(t, err)
	assert.Equal(t, "re_1", refundID)
}

func TestClientCreateRefundProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error": {"code": "charge_already_refunded"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")

	_, err := client.CreateRefund(context.Background(), "pi_1", 500, "refund-order-42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
}

func TestClientCollectListingFee(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/account_charges", r.URL.Path)
		assert.Equal(t, "listing-fee-1-2026-08", r.Header.Get("Idempotency-Key"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "acct_1", r.PostForm.Get("account"))
		assert.Equal(t, "240", r.PostForm.Get("amount"))
		assert.Equal(t, "Monthly listing fee for 2026-08 (12 active listings)", r.PostForm.Get("description"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "ch_1", "status": "succeeded"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")

	chargeID, err := client.CollectListingFee(
		context.Background(), "acct_1", 240,
		"Monthly listing fee for 2026-08 (12 active listings)", "listing-fee-1-2026-08",
	)
	require.NoError(t, err)
	assert.Equal(t, "ch_1", chargeID)
}

func TestClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test")

	_, err := client.CreateRefund(context.Background(), "pi_1", 500, "refund-order-42")
	require.Error(t, err)
}
