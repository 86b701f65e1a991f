package order

import (
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/types"
)

// Rescheduler enqueues an order for asynchronous reconciliation against the
// fulfillment provider. Implemented by the reconcile worker.
type Rescheduler interface {
	Enqueue(orderID string)
}

type CheckoutRequest struct {
	BundleID    string `json:"bundle_id" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type CheckoutResult struct {
	Order            *models.Order   `json:"order"`
	Payment          *models.Payment `json:"payment"`
	AuthorizationURL string          `json:"authorization_url"`
}

type CallbackResult struct {
	// Outcome is the flag the callback redirect carries: success, failed,
	// or error.
	Outcome string
	Order   *models.Order
}

type ScanOrdersRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanOrdersResponse struct {
	Items []*models.Order `json:"items"`
	Total int64           `json:"total"`
}
