package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestGateway(fn roundTripFunc) *SSLCommerz {
	g := NewSSLCommerz("https://sandbox.example.com/", "store", "secret")
	g.httpClient = &http.Client{Transport: fn}
	return g
}

func TestSSLCommerzInitSession(t *testing.T) {
	var got url.Values
	g := newTestGateway(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "https://sandbox.example.com/gwprocess/v4/api.php", req.URL.String())
		assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
		body, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		got, err = url.ParseQuery(string(body))
		require.NoError(t, err)
		return jsonResponse(`{"status":"SUCCESS","GatewayPageURL":"https://sandbox.example.com/pay/abc"}`), nil
	})

	page, err := g.InitSession(context.Background(), Session{
		TransactionID: "tx-1",
		Amount:        550,
		Currency:      "bdt",
		SuccessURL:    "https://api.example.com/payments/success-payment",
		CustomerName:  "Rahim",
		CustomerEmail: "rahim@example.com",
		District:      "Dhaka",
		Thana:         "Gulshan",
		Region:        "Dhaka",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com/pay/abc", page)

	assert.Equal(t, "store", got.Get("store_id"))
	assert.Equal(t, "secret", got.Get("store_passwd"))
	assert.Equal(t, "550.00", got.Get("total_amount"))
	assert.Equal(t, "BDT", got.Get("currency"))
	assert.Equal(t, "tx-1", got.Get("tran_id"))
	assert.Equal(t, "Gulshan", got.Get("cus_city"))
	assert.Equal(t, "Gulshan", got.Get("ship_city"))
	assert.Equal(t, "https://api.example.com/payments/success-payment", got.Get("success_url"))
}

func TestSSLCommerzInitSessionFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "failed reason", body: `{"status":"FAILED","failedreason":"Store Credential Error"}`, want: "Store Credential Error"},
		{name: "no page and no reason", body: `{"status":"FAILED"}`, want: "no gateway page returned"},
		{name: "malformed body", body: `<html>`, want: "decode session response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tt.body), nil
			})
			_, err := g.InitSession(context.Background(), Session{TransactionID: "tx-1", Amount: 10})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSSLCommerzValidate(t *testing.T) {
	g := newTestGateway(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/validator/api/validationserverAPI.php", req.URL.Path)
		q := req.URL.Query()
		assert.Equal(t, "val-9", q.Get("val_id"))
		assert.Equal(t, "store", q.Get("store_id"))
		assert.Equal(t, "secret", q.Get("store_passwd"))
		assert.Equal(t, "json", q.Get("format"))
		return jsonResponse(`{"status":"VALID","tran_id":"tx-1","amount":"550.00","currency":"BDT"}`), nil
	})

	v, err := g.Validate(context.Background(), "val-9")
	require.NoError(t, err)
	assert.Equal(t, &Validation{Status: ValidStatus, TransactionID: "tx-1", Amount: 550, Currency: "BDT"}, v)
	assert.True(t, v.Settles("tx-1", 550, "bdt"))
}

func TestSSLCommerzValidatePrefersSessionCurrency(t *testing.T) {
	g := newTestGateway(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"status":"VALID","tran_id":"tx-1","amount":"6160.00","currency":"BDT","currency_type":"USD","currency_amount":"50.00"}`), nil
	})

	v, err := g.Validate(context.Background(), "val-9")
	require.NoError(t, err)
	assert.Equal(t, "USD", v.Currency)
	assert.Equal(t, 50.0, v.Amount)
}

func TestSSLCommerzValidateBadAmount(t *testing.T) {
	g := newTestGateway(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(`{"status":"VALID","tran_id":"tx-1","amount":"lots"}`), nil
	})

	_, err := g.Validate(context.Background(), "val-9")
	require.Error(t, err)
}

func TestValidationSettles(t *testing.T) {
	valid := Validation{Status: ValidStatus, TransactionID: "expensive-tx", Amount: 550, Currency: "BDT"}
	tests := []struct {
		name string
		v    Validation
		want bool
	}{
		{name: "exact match", v: valid, want: true},
		{name: "other transaction", v: Validation{Status: ValidStatus, TransactionID: "cheap-tx", Amount: 1, Currency: "BDT"}, want: false},
		{name: "amount differs", v: Validation{Status: ValidStatus, TransactionID: "expensive-tx", Amount: 1, Currency: "BDT"}, want: false},
		{name: "currency differs", v: Validation{Status: ValidStatus, TransactionID: "expensive-tx", Amount: 550, Currency: "USD"}, want: false},
		{name: "not valid", v: Validation{Status: "FAILED", TransactionID: "expensive-tx", Amount: 550, Currency: "BDT"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Settles("expensive-tx", 550, "bdt"))
		})
	}
}

func newTestStripe(t *testing.T, handler http.HandlerFunc) *StripeService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeService("sk_test_123", "BDT", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestStripeCreatePaymentIntent(t *testing.T) {
	svc := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "55000", r.PostForm.Get("amount"))
		assert.Equal(t, "bdt", r.PostForm.Get("currency"))
		assert.Equal(t, "card", r.PostForm.Get("payment_method_types[0]"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_1","object":"payment_intent","client_secret":"pi_1_secret_abc"}`)
	})

	secret, err := svc.CreatePaymentIntent(context.Background(), 55000)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_abc", secret)
}

func TestStripeCreatePaymentIntentErrors(t *testing.T) {
	svc := newTestStripe(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Amount must be at least 50 cents"}}`)
	})

	_, err := svc.CreatePaymentIntent(context.Background(), 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Amount must be at least 50 cents")

	_, err = svc.CreatePaymentIntent(context.Background(), 0)
	require.Error(t, err)
}
