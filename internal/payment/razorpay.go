// Package payment talks to the Razorpay orders API.
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
)

// ErrCredentialsMissing is returned by every call when the key id or secret is unset.
var ErrCredentialsMissing = errors.New("razorpay credentials missing")

// GatewayError is a non-2xx answer from the gateway.
type GatewayError struct {
	Status      int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("razorpay: status=%d code=%s: %s", e.Status, e.Code, e.Description)
}

func (e *GatewayError) Unwrap() error { return domain.ErrUpstream }

// Order is a gateway order handle. Amount is in paise.
type Order struct {
	ID       string `json:"id"`
	Currency string `json:"currency"`
	Amount   int64  `json:"amount"`
	Receipt  string `json:"receipt,omitempty"`
	Status   string `json:"status,omitempty"`
}

type Config struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Currency  string
	Timeout   time.Duration
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.razorpay.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger.Named("razorpay"),
	}
}

// KeyID is the public key the browser widget is opened with.
func (c *Client) KeyID() string { return c.cfg.KeyID }

func (c *Client) configured() bool {
	return c.cfg.KeyID != "" && c.cfg.KeySecret != ""
}

// CreateOrder requests a gateway order for amount rupees.
func (c *Client) CreateOrder(ctx context.Context, amount int64) (*Order, error) {
	if !c.configured() {
		return nil, ErrCredentialsMissing
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(map[string]any{
		"amount":   amount * 100,
		"currency": c.cfg.Currency,
		"receipt":  "rcpt_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20],
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.cfg.KeyID, c.cfg.KeySecret)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("create order request failed", zap.Error(err))
		return nil, fmt.Errorf("razorpay create order: %w: %w", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read razorpay response: %w: %w", domain.ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gerr := decodeGatewayError(resp.StatusCode, raw)
		c.logger.Warn("create order rejected", zap.Int("status", resp.StatusCode), zap.String("code", gerr.Code))
		return nil, gerr
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("decode razorpay order: %w: %w", domain.ErrUpstream, err)
	}
	if order.ID == "" {
		return nil, &GatewayError{Status: resp.StatusCode, Code: "MISSING_ID", Description: "order id missing in response"}
	}
	c.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.Duration("took", time.Since(start)),
	)
	return &order, nil
}

// VerifySignature checks the checkout callback signature, an HMAC-SHA256 of
// "orderID|paymentID" keyed with the secret.
func (c *Client) VerifySignature(orderID, paymentID, signature string) error {
	if !c.configured() {
		return ErrCredentialsMissing
	}
	got, err := hex.DecodeString(signature)
	if err != nil || !hmac.Equal(mac(c.cfg.KeySecret, orderID, paymentID), got) {
		return fmt.Errorf("%w: payment signature mismatch", domain.ErrInvalidInput)
	}
	return nil
}

// Sign produces the signature VerifySignature accepts. Used by tests and
// local gateway stubs.
func Sign(secret, orderID, paymentID string) string {
	return hex.EncodeToString(mac(secret, orderID, paymentID))
}

func mac(secret, orderID, paymentID string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return h.Sum(nil)
}

func decodeGatewayError(status int, raw []byte) *GatewayError {
	var body struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	}
	gerr := &GatewayError{Status: status}
	if err := json.Unmarshal(raw, &body); err == nil {
		gerr.Code = body.Error.Code
		gerr.Description = body.Error.Description
	}
	if gerr.Description == "" {
		gerr.Description = http.StatusText(status)
	}
	return gerr
}
