// Package payment holds the provider-facing client used during
// checkout. The provider hosts the card form; our side only creates
// the order and later receives a callback.
package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	circuit "github.com/rubyist/circuitbreaker"
	"go.uber.org/zap"

	"github.com/mtourkz/booking-api/internal/booking"
)

// Config carries the provider credentials and the URLs echoed back to
// the customer after payment.
type Config struct {
	BaseURL     string // provider create-payment endpoint
	Login       string // merchant id, doubles as the Basic auth user
	Password    string
	CallbackURL string // where the provider posts settlement results
	SuccessURL  string
	FailURL     string
	Timeout     time.Duration // per-call ceiling; zero means 10s
}

// Client implements booking.Gateway against an HTTP payment provider.
// Calls run through a circuit breaker so a dead provider fails fast
// instead of holding every checkout transaction open for the full
// timeout.
type Client struct {
	cfg  Config
	http *circuit.HTTPClient
	auth string
	log  *zap.Logger
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	creds := base64.StdEncoding.EncodeToString([]byte(cfg.Login + ":" + cfg.Password))
	return &Client{
		cfg:  cfg,
		http: circuit.NewHTTPClient(cfg.Timeout, 10, nil),
		auth: "Basic " + creds,
		log:  log,
	}
}

type customerData struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createRequest struct {
	Amount      int64        `json:"amount"`
	MerchantID  string       `json:"merchantId"`
	OrderID     string       `json:"orderId"`
	CallbackURL string       `json:"callbackUrl"`
	SuccessURL  string       `json:"successUrl"`
	FailURL     string       `json:"failUrl"`
	Customer    customerData `json:"customerData"`
}

type createResponse struct {
	URL string `json:"url"`
}

// CreatePayment registers the order with the provider and returns the
// hosted payment page URL. The order id is the cart's public id; the
// provider echoes it back in the settlement callback.
func (c *Client) CreatePayment(ctx context.Context, amountMinor int64, orderID string, contact booking.Contact) (string, error) {
	body, err := json.Marshal(createRequest{
		Amount:      amountMinor,
		MerchantID:  c.cfg.Login,
		OrderID:     orderID,
		CallbackURL: c.cfg.CallbackURL,
		SuccessURL:  fmt.Sprintf("%s?status=success&cartId=%s", c.cfg.SuccessURL, orderID),
		FailURL:     c.cfg.FailURL + "?status=fail",
		Customer:    customerData{Email: contact.Email, Phone: contact.Phone},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("payment create failed", zap.String("order_id", orderID), zap.Error(err))
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Warn("payment create rejected",
			zap.String("order_id", orderID),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", snippet))
		return "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("provider response missing redirect url")
	}
	return out.URL, nil
}
