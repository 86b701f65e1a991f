package datamart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
)

func newTestClient(baseURL string) Client {
	return NewClient(&cfgpkg.Config{
		DataMart: cfgpkg.DataMartConfig{BaseURL: baseURL, APIKey: "dm_test_key"},
	})
}

func TestPurchase_SendsWalletPayload(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":{"apiResponse":{"data":{"ref":"DM-778899","status":"processing"}}}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Purchase(context.Background(), "+233241234567", "MTN", "1.5")
	require.NoError(t, err)
	require.Equal(t, "/purchase", gotPath)
	require.Equal(t, "dm_test_key", gotKey)
	require.Equal(t, "+233241234567", gotBody["phoneNumber"])
	require.Equal(t, "MTN", gotBody["network"])
	require.Equal(t, "1.5", gotBody["capacity"])
	require.Equal(t, "wallet", gotBody["gateway"])
	require.Equal(t, "DM-778899", res.ProviderOrderID)
	require.Equal(t, "processing", res.Status)
}

func TestPurchase_ErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"message":"insufficient wallet balance"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Purchase(context.Background(), "+233241234567", "MTN", "1")
	require.Error(t, err)
	var fErr *FulfillmentError
	require.ErrorAs(t, err, &fErr)
	require.Equal(t, "purchase", fErr.Op)
	require.Equal(t, http.StatusPaymentRequired, fErr.StatusCode)
	require.Contains(t, fErr.Body, "insufficient wallet balance")
}

func TestPurchase_PartialEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).Purchase(context.Background(), "+233241234567", "MTN", "1")
	require.NoError(t, err)
	require.Empty(t, res.ProviderOrderID)
	require.Empty(t, res.Status)
}

func TestOrderStatus_ParsesNestedShape(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":{"apiResponse":{"data":{"ref":"DM-778899","status":"completed"}}}}`))
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).OrderStatus(context.Background(), "DM-778899")
	require.NoError(t, err)
	require.Equal(t, "/order/DM-778899", gotPath)
	require.Equal(t, "completed", status)
}

func TestOrderStatus_UndecodableBodyMeansNoStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway timeout</html>`))
	}))
	defer srv.Close()

	status, err := newTestClient(srv.URL).OrderStatus(context.Background(), "DM-1")
	require.NoError(t, err)
	require.Empty(t, status)
}

func TestOrderStatus_ErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).OrderStatus(context.Background(), "DM-1")
	require.Error(t, err)
	var fErr *FulfillmentError
	require.ErrorAs(t, err, &fErr)
	require.Equal(t, "order_status", fErr.Op)
}
