package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	mw "github.com/Caddilac1/DataHub/internal/app/api/middleware"
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	cfgpkg "github.com/Caddilac1/DataHub/pkg/config"
	"github.com/Caddilac1/DataHub/pkg/response"
)

type checkoutResp struct {
	Status           string `json:"status"`
	OrderID          string `json:"order_id"`
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
}

// @Summary      Checkout
// @Description  Creates an order/payment pair and returns the gateway's hosted payment page URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body order.CheckoutRequest true "Checkout request"
// @Success      200  {object}  handlers.RespCheckout
// @Router       /api/v1/checkout [post]
func ApiCheckout(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		user := mw.CurrentUser(c)
		res, err := svc.Checkout(c.Request.Context(), user, &req, mw.RequestMeta(c))
		if err != nil {
			if errors.Is(err, order.ErrValidation) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			// Gateway and unexpected failures surface as a generic error.
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		c.JSON(http.StatusOK, response.OKT(checkoutResp{
			Status:           string(res.Order.Status),
			OrderID:          res.Order.ID,
			Reference:        res.Payment.Reference,
			AuthorizationURL: res.AuthorizationURL,
		}))
	}
}

// @Summary      Payment callback
// @Description  Gateway redirect target. Verifies the transaction and redirects to the status page with a payment_status flag.
// @Tags         Payment
// @Param        reference  query  string  true  "Payment reference"
// @Success      302
// @Router       /api/v1/payment/callback [get]
func ApiPaymentCallback(svc *order.Service, cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		redirect := func(flag string) {
			target := cfg.StatusRedirectURL
			if u, err := url.Parse(target); err == nil {
				q := u.Query()
				q.Set("payment_status", flag)
				u.RawQuery = q.Encode()
				target = u.String()
			}
			c.Redirect(http.StatusFound, target)
		}

		reference := c.Query("reference")
		if reference == "" {
			redirect("error")
			return
		}

		res := svc.HandleCallback(c.Request.Context(), reference, mw.RequestMeta(c))
		redirect(res.Outcome)
	}
}

func RegisterPaymentRoutes(public gin.IRouter, authed gin.IRouter, svc *order.Service, cfg *cfgpkg.Config) {
	authed.POST("/checkout", ApiCheckout(svc))
	// The gateway redirects the browser here; no auth context is present.
	public.GET("/payment/callback", ApiPaymentCallback(svc, cfg))
}
