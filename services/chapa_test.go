package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestGenerateTransactionRef(t *testing.T) {
	client := NewChapaClient("sk", "whsec", "", zap.NewNop())

	ref := client.GenerateTransactionRef()

	assert.True(t, strings.HasPrefix(ref, "TX-"))
	assert.Len(t, ref, 23)
	assert.Equal(t, strings.ToUpper(ref), ref)
	assert.NotEqual(t, ref, client.GenerateTransactionRef())
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "whsec-test"
	client := NewChapaClient("sk", secret, "", zap.NewNop())
	body := []byte(`{"tx_ref":"TX-ABC123","status":"success"}`)

	t.Run("Valid signature in primary header", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, signBody(secret, body))

		assert.NoError(t, client.VerifyWebhookSignature(body, header))
	})

	t.Run("Valid signature in legacy header", func(t *testing.T) {
		header := http.Header{}
		header.Set(LegacySignatureHeader, signBody(secret, body))

		assert.NoError(t, client.VerifyWebhookSignature(body, header))
	})

	t.Run("Wrong secret rejected", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, signBody("other-secret", body))

		assert.ErrorIs(t, client.VerifyWebhookSignature(body, header), ErrUnauthorizedWebhook)
	})

	t.Run("Tampered body rejected", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, signBody(secret, body))

		tampered := []byte(`{"tx_ref":"TX-OTHER","status":"success"}`)
		assert.ErrorIs(t, client.VerifyWebhookSignature(tampered, header), ErrUnauthorizedWebhook)
	})

	t.Run("Missing headers rejected", func(t *testing.T) {
		assert.ErrorIs(t, client.VerifyWebhookSignature(body, http.Header{}), ErrUnauthorizedWebhook)
	})

	t.Run("Bad legacy does not mask good primary", func(t *testing.T) {
		header := http.Header{}
		header.Set(SignatureHeader, signBody(secret, body))
		header.Set(LegacySignatureHeader, "garbage")

		assert.NoError(t, client.VerifyWebhookSignature(body, header))
	})
}

func TestInitializeTransaction(t *testing.T) {
	t.Run("Success - bearer auth and checkout URL", func(t *testing.T) {
		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/transaction/initialize", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"message":"Hosted Link","status":"success","data":{"checkout_url":"https://checkout.chapa.co/pay/x"}}`))
		}))
		defer server.Close()

		client := NewChapaClient("sk-test", "whsec", server.URL, zap.NewNop())

		resp, err := client.InitializeTransaction(context.Background(), &InitializeRequest{
			Amount:   250,
			Currency: "ETB",
			Email:    "buyer@example.com",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Bearer sk-test", gotAuth)
		assert.Equal(t, "https://checkout.chapa.co/pay/x", resp.Data.CheckoutURL)
		assert.True(t, strings.HasPrefix(resp.TxRef, "TX-"))
	})

	t.Run("Caller-supplied tx_ref preserved", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"success","data":{"checkout_url":"u"}}`))
		}))
		defer server.Close()

		client := NewChapaClient("sk", "whsec", server.URL, zap.NewNop())

		resp, err := client.InitializeTransaction(context.Background(), &InitializeRequest{
			Amount: 10, Currency: "ETB", Email: "a@b.c", TxRef: "TX-CALLERSUPPLIED001",
		})

		assert.NoError(t, err)
		assert.Equal(t, "TX-CALLERSUPPLIED001", resp.TxRef)
	})

	t.Run("Gateway error surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewChapaClient("bad-key", "whsec", server.URL, zap.NewNop())

		_, err := client.InitializeTransaction(context.Background(), &InitializeRequest{Amount: 1, Currency: "ETB", Email: "a@b.c"})

		assert.ErrorContains(t, err, "status 401")
	})
}

func TestVerifyTransaction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/transaction/verify/TX-VERIFYME000000001", r.URL.Path)
		w.Write([]byte(`{"message":"ok","status":"success","data":{"amount":250,"currency":"ETB","tx_ref":"TX-VERIFYME000000001","status":"success"}}`))
	}))
	defer server.Close()

	client := NewChapaClient("sk", "whsec", server.URL, zap.NewNop())

	resp, err := client.VerifyTransaction(context.Background(), "TX-VERIFYME000000001")

	assert.NoError(t, err)
	assert.Equal(t, 250.0, resp.Data.Amount)
	assert.Equal(t, "success", resp.Data.Status)
}
