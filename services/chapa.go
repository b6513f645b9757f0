package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Signature header names the gateway has used across versions. Webhook
// verification accepts either.
const (
	SignatureHeader       = "Chapa-Signature"
	LegacySignatureHeader = "X-Chapa-Signature"
)

const defaultChapaBaseURL = "https://api.chapa.co"

// ChapaClient talks to the Chapa payment gateway: it issues transaction
// references at checkout time, initializes and verifies transactions, and
// authenticates inbound webhook deliveries.
type ChapaClient struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewChapaClient creates a gateway client. baseURL is overridable for tests;
// empty means the production endpoint.
func NewChapaClient(secretKey, webhookSecret, baseURL string, logger *zap.Logger) *ChapaClient {
	if baseURL == "" {
		baseURL = defaultChapaBaseURL
	}
	return &ChapaClient{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       strings.TrimRight(baseURL, "/"),
		httpClient:    &http.Client{Timeout: 15 * time.Second},
		logger:        logger,
	}
}

// GenerateTransactionRef returns a fresh TX-prefixed opaque reference used to
// correlate an order with its gateway transaction.
func (c *ChapaClient) GenerateTransactionRef() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "TX-" + raw[:20]
}

// InitializeRequest is the payload for hosted-checkout initialization.
type InitializeRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name,omitempty"`
	LastName    string  `json:"last_name,omitempty"`
	TxRef       string  `json:"tx_ref"`
	CallbackURL string  `json:"callback_url,omitempty"`
	ReturnURL   string  `json:"return_url,omitempty"`
}

// InitializeResponse carries the hosted checkout URL plus the transaction
// reference the caller must attach to the order.
type InitializeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
	TxRef string `json:"tx_ref"`
}

// InitializeTransaction starts a hosted-checkout transaction. A transaction
// reference is generated when the request does not carry one.
func (c *ChapaClient) InitializeTransaction(ctx context.Context, req *InitializeRequest) (*InitializeResponse, error) {
	if req.TxRef == "" {
		req.TxRef = c.GenerateTransactionRef()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initialize request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	var out InitializeResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	out.TxRef = req.TxRef
	return &out, nil
}

// VerifyResponse is the gateway's view of a transaction.
type VerifyResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"`
	} `json:"data"`
}

// VerifyTransaction asks the gateway for the status of a transaction.
func (c *ChapaClient) VerifyTransaction(ctx context.Context, txRef string) (*VerifyResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/transaction/verify/"+txRef, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	var out VerifyResponse
	if err := c.do(httpReq, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyWebhookSignature checks that the raw webhook body was signed with the
// shared webhook secret. The comparison is constant-time, and both historical
// header names are accepted. This must run before any database access.
func (c *ChapaClient) VerifyWebhookSignature(body []byte, header http.Header) error {
	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, name := range []string{SignatureHeader, LegacySignatureHeader} {
		sig := header.Get(name)
		if sig != "" && hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrUnauthorizedWebhook
}

func (c *ChapaClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chapa request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read chapa response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Chapa API returned non-success status",
			zap.Int("status", resp.StatusCode),
			zap.String("path", req.URL.Path),
		)
		return fmt.Errorf("chapa API error: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode chapa response: %w", err)
	}
	return nil
}
