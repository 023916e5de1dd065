// Package payment integrates with the Razorpay orders API and verifies the
// signatures Razorpay attaches to checkout callbacks.
package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// Gateway creates payment orders with an external gateway
type Gateway interface {
	CreateOrder(amount int64, currency, receipt string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// Config holds Razorpay credentials
type Config struct {
	KeyID          string
	KeySecret      string
	BaseURL        string // override for tests
	RequestTimeout time.Duration
}

// RazorpayGateway implements Gateway against the Razorpay REST API
type RazorpayGateway struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
	logger    *logrus.Logger
}

// NewRazorpayGateway creates a new Razorpay gateway client
func NewRazorpayGateway(config Config, logger *logrus.Logger) *RazorpayGateway {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := config.RequestTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &RazorpayGateway{
		keyID:     config.KeyID,
		keySecret: config.KeySecret,
		baseURL:   baseURL,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"` // minor units (paise)
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates a payment order and returns the gateway order id.
// Amount is in minor units (paise for INR).
func (g *RazorpayGateway) CreateOrder(amount int64, currency, receipt string) (string, error) {
	payload, err := json.Marshal(orderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL+"/orders", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.keySecret)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send order request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp errorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error.Description != "" {
			return "", fmt.Errorf("gateway rejected order (%d): %s", resp.StatusCode, errResp.Error.Description)
		}
		return "", fmt.Errorf("gateway rejected order: status %d", resp.StatusCode)
	}

	var order orderResponse
	if err := json.Unmarshal(body, &order); err != nil {
		return "", fmt.Errorf("failed to decode order response: %w", err)
	}
	if order.ID == "" {
		return "", fmt.Errorf("gateway returned empty order id")
	}

	g.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	}).Info("Gateway order created")

	return order.ID, nil
}

// VerifySignature checks a checkout callback signature. Razorpay signs
// "orderID|paymentID" with HMAC-SHA256 under the key secret. The comparison
// is constant-time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.keySecret, orderID, paymentID, signature)
}

// VerifySignature recomputes the expected callback signature and compares it
// in constant time. Any malformed input fails verification.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
