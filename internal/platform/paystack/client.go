package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/fx"

	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
)

// GatewayError reports a failed call to the payment gateway, surfacing the
// gateway's own error body when one was returned.
type GatewayError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("paystack %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("paystack %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client talks to a Paystack-compatible transaction API.
type Client interface {
	// Initialize creates a transaction and returns the hosted payment page
	// URL. Amount is in cedis; the gateway receives minor units (x100).
	Initialize(ctx context.Context, email string, amount float64, reference, callbackURL string) (*InitializeResult, error)
	// Verify fetches the transaction state for a reference. An absent or
	// ambiguous status is reported as-is, never mapped to success.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)
}

type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

type VerifyResult struct {
	Status string
	PaidAt *time.Time
}

// StatusSuccess is the gateway's terminal success value for a transaction.
const StatusSuccess = "success"

func (r *VerifyResult) Successful() bool {
	return r != nil && r.Status == StatusSuccess
}

type clientImpl struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(cfg *cfgpkg.Config) Client {
	return &clientImpl{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.Paystack.BaseURL,
		secretKey:  cfg.Paystack.SecretKey,
	}
}

type initializePayload struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Reference   string `json:"reference"`
	CallbackURL string `json:"callback_url"`
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

func (c *clientImpl) Initialize(ctx context.Context, email string, amount float64, reference, callbackURL string) (*InitializeResult, error) {
	payload := initializePayload{
		Email: email,
		// Paystack amounts are in the minor currency unit (pesewas).
		Amount:      int64(math.Round(amount * 100)),
		Reference:   reference,
		CallbackURL: callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: "initialize", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Op: "initialize", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out initializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &GatewayError{Op: "initialize", Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.Data.AuthorizationURL == "" {
		return nil, &GatewayError{Op: "initialize", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return &InitializeResult{
		AuthorizationURL: out.Data.AuthorizationURL,
		AccessCode:       out.Data.AccessCode,
		Reference:        out.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status string     `json:"status"`
		PaidAt *time.Time `json:"paid_at"`
	} `json:"data"`
}

func (c *clientImpl) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Op: "verify", Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &GatewayError{Op: "verify", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &GatewayError{Op: "verify", Err: fmt.Errorf("decode response: %w", err)}
	}
	return &VerifyResult{Status: out.Data.Status, PaidAt: out.Data.PaidAt}, nil
}

var Module = fx.Options(
	fx.Provide(NewClient),
)
