package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
)

func newTestClient(baseURL string) Client {
	return NewClient(&cfgpkg.Config{
		Paystack: cfgpkg.PaystackConfig{
			BaseURL:     baseURL,
			SecretKey:   "sk_test_secret",
			CallbackURL: "https://shop.example/callback",
		},
	})
}

func TestInitialize_SendsMinorUnits(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         "REF-0011223344",
			},
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Initialize(context.Background(), "ama@example.com", 10.00, "REF-0011223344", "https://shop.example/callback")
	require.NoError(t, err)
	require.Equal(t, "/transaction/initialize", gotPath)
	require.Equal(t, "Bearer sk_test_secret", gotAuth)
	// 10.00 cedis becomes 1000 pesewas on the wire.
	require.Equal(t, float64(1000), gotBody["amount"])
	require.Equal(t, "ama@example.com", gotBody["email"])
	require.Equal(t, "REF-0011223344", gotBody["reference"])
	require.Equal(t, "https://checkout.paystack.com/abc123", res.AuthorizationURL)
	require.Equal(t, "REF-0011223344", res.Reference)
}

func TestInitialize_RoundsFractionalMinorUnits(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"authorization_url": "https://checkout.paystack.com/x"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Initialize(context.Background(), "a@b.c", 4.99, "REF-1", "")
	require.NoError(t, err)
	require.Equal(t, float64(499), gotBody["amount"])
}

func TestInitialize_GatewayErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Initialize(context.Background(), "a@b.c", 10, "REF-1", "")
	require.Error(t, err)
	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	require.Equal(t, "initialize", gwErr.Op)
	require.Equal(t, http.StatusUnauthorized, gwErr.StatusCode)
	require.Contains(t, gwErr.Body, "Invalid key")
}

func TestInitialize_MissingAuthorizationURLIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"data":{}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Initialize(context.Background(), "a@b.c", 10, "REF-1", "")
	require.Error(t, err)
}

func TestVerify_Success(t *testing.T) {
	var gotPath string
	paidAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "success", "paid_at": paidAt},
		})
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Verify(context.Background(), "REF-0011223344")
	require.NoError(t, err)
	require.Equal(t, "/transaction/verify/REF-0011223344", gotPath)
	require.True(t, res.Successful())
	require.NotNil(t, res.PaidAt)
	require.True(t, paidAt.Equal(*res.PaidAt))
}

func TestVerify_AmbiguousStatusIsNotSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"data":{}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Verify(context.Background(), "REF-1")
	require.NoError(t, err)
	require.False(t, res.Successful())
}

func TestVerifyResult_NilSafety(t *testing.T) {
	var res *VerifyResult
	require.False(t, res.Successful())
}
