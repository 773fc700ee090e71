package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtourkz/booking-api/internal/booking"
)

func newTestClient(baseURL string) *Client {
	return NewClient(Config{
		BaseURL:     baseURL,
		Login:       "merchant-1",
		Password:    "secret",
		CallbackURL: "https://api.example.kz/v1/payments/callback",
		SuccessURL:  "https://example.kz/payment",
		FailURL:     "https://example.kz/payment",
		Timeout:     2 * time.Second,
	}, nil)
}

func TestCreatePayment(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		// merchant-1:secret
		assert.Equal(t, "Basic bWVyY2hhbnQtMTpzZWNyZXQ=", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"url": "https://pay.example.kz/p/abc"})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	url, err := c.CreatePayment(context.Background(), 1250000, "cart-uuid-1",
		booking.Contact{Email: "guest@example.kz", Phone: "+77010000000"})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.kz/p/abc", url)

	assert.Equal(t, int64(1250000), got.Amount)
	assert.Equal(t, "merchant-1", got.MerchantID)
	assert.Equal(t, "cart-uuid-1", got.OrderID)
	assert.Contains(t, got.SuccessURL, "cartId=cart-uuid-1")
	assert.Equal(t, "guest@example.kz", got.Customer.Email)
}

func TestCreatePaymentRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad merchant", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreatePayment(context.Background(), 1000, "cart-uuid-2", booking.Contact{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCreatePaymentMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.CreatePayment(context.Background(), 1000, "cart-uuid-3", booking.Contact{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirect url")
}
