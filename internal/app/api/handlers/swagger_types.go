package handlers

import (
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	"github.com/Caddilac1/DataHub/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespCheckout wraps the checkout response in the standard envelope.
type RespCheckout struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    checkoutResp             `json:"data"`
}

// RespListBundles wraps the bundle listing in the standard envelope.
type RespListBundles struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListBundlesResponse      `json:"data"`
}

// RespScanOrders wraps the admin order listing in the standard envelope.
type RespScanOrders struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    order.ScanOrdersResponse `json:"data"`
}
