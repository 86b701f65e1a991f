package datamart

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/fx"

	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
)

// FulfillmentError reports a failed call to the data-bundle provisioning API.
// The reconciliation worker treats these as transient retry signals.
type FulfillmentError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *FulfillmentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("datamart %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("datamart %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *FulfillmentError) Unwrap() error { return e.Err }

// Client talks to the DataMart developer API. Purchase is one-shot with no
// internal retry; retry policy lives in the reconciliation worker.
type Client interface {
	Purchase(ctx context.Context, phoneNumber, networkCode, capacityGB string) (*PurchaseResult, error)
	// OrderStatus returns the provider-reported status, or "" when the
	// nested response shape does not carry one.
	OrderStatus(ctx context.Context, providerOrderID string) (string, error)
}

type PurchaseResult struct {
	ProviderOrderID string
	Status          string
}

type clientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(cfg *cfgpkg.Config) Client {
	return &clientImpl{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.DataMart.BaseURL,
		apiKey:     cfg.DataMart.APIKey,
	}
}

type purchasePayload struct {
	PhoneNumber string `json:"phoneNumber"`
	Network     string `json:"network"`
	Capacity    string `json:"capacity"`
	Gateway     string `json:"gateway"`
}

// orderEnvelope mirrors the provider's nested response shape. The provider
// is not strongly typed, so every level is optional and absent fields must
// not crash the caller.
type orderEnvelope struct {
	Data *struct {
		APIResponse *struct {
			Data *struct {
				Ref    string `json:"ref"`
				Status string `json:"status"`
			} `json:"data"`
		} `json:"apiResponse"`
	} `json:"data"`
}

func (e *orderEnvelope) ref() string {
	if e.Data == nil || e.Data.APIResponse == nil || e.Data.APIResponse.Data == nil {
		return ""
	}
	return e.Data.APIResponse.Data.Ref
}

func (e *orderEnvelope) status() string {
	if e.Data == nil || e.Data.APIResponse == nil || e.Data.APIResponse.Data == nil {
		return ""
	}
	return e.Data.APIResponse.Data.Status
}

func (c *clientImpl) Purchase(ctx context.Context, phoneNumber, networkCode, capacityGB string) (*PurchaseResult, error) {
	payload := purchasePayload{
		PhoneNumber: phoneNumber,
		Network:     networkCode,
		Capacity:    capacityGB,
		Gateway:     "wallet",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &FulfillmentError{Op: "purchase", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/purchase", bytes.NewReader(body))
	if err != nil {
		return nil, &FulfillmentError{Op: "purchase", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FulfillmentError{Op: "purchase", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FulfillmentError{Op: "purchase", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out orderEnvelope
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &FulfillmentError{Op: "purchase", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &PurchaseResult{ProviderOrderID: out.ref(), Status: out.status()}, nil
}

func (c *clientImpl) OrderStatus(ctx context.Context, providerOrderID string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/order/"+providerOrderID, nil)
	if err != nil {
		return "", &FulfillmentError{Op: "order_status", Err: err}
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &FulfillmentError{Op: "order_status", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FulfillmentError{Op: "order_status", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out orderEnvelope
	if err := json.Unmarshal(raw, &out); err != nil {
		// Defensive: an unexpected shape is "no status yet", not a crash.
		return "", nil
	}
	return out.status(), nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
