package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/Caddilac1/DataHub/internal/app/api/middleware"
	"github.com/Caddilac1/DataHub/internal/app/service/audit"
	"github.com/Caddilac1/DataHub/internal/app/service/catalog"
	"github.com/Caddilac1/DataHub/internal/app/service/order"
	"github.com/Caddilac1/DataHub/internal/app/service/statistics"
	"github.com/Caddilac1/DataHub/pkg/response"
)

// @Summary      Scan orders
// @Description  Paginated admin order listing with filters.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body order.ScanOrdersRequest true "Scan request"
// @Success      200  {object}  handlers.RespScanOrders
// @Router       /api/v1/admin/orders/scan [post]
func ApiScanOrders(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.ScanOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanOrders(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Get order
// @Tags         Admin
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/orders/{id} [get]
func ApiGetOrder(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, order.ErrNotFound) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, nil))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(ord))
	}
}

// @Summary      Create telco
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateTelcoRequest true "Telco"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/telcos [post]
func ApiCreateTelco(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateTelcoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		telco, err := svc.CreateTelco(c.Request.Context(), &req, mw.RequestMeta(c))
		if err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(telco))
	}
}

// @Summary      Create bundle
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body catalog.CreateBundleRequest true "Bundle"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/bundles [post]
func ApiCreateBundle(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateBundleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		bundle, err := svc.CreateBundle(c.Request.Context(), &req, mw.RequestMeta(c))
		if err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(bundle))
	}
}

// @Summary      Update bundle
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id  path  string  true  "Bundle ID"
// @Param        request body catalog.UpdateBundleRequest true "Changes"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/bundles/{id} [put]
func ApiUpdateBundle(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateBundleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		bundle, err := svc.UpdateBundle(c.Request.Context(), c.Param("id"), &req, mw.RequestMeta(c))
		if err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(bundle))
	}
}

// @Summary      Deactivate bundle
// @Description  Soft delete; historical orders keep their bundle reference.
// @Tags         Admin
// @Produce      json
// @Param        id  path  string  true  "Bundle ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/bundles/{id} [delete]
func ApiDeactivateBundle(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeactivateBundle(c.Request.Context(), c.Param("id"), mw.RequestMeta(c)); err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Deactivate telco
// @Description  Soft delete; the telco's bundles disappear from listings.
// @Tags         Admin
// @Produce      json
// @Param        id  path  string  true  "Telco ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/telcos/{id} [delete]
func ApiDeactivateTelco(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.DeactivateTelco(c.Request.Context(), c.Param("id"), mw.RequestMeta(c)); err != nil {
			writeCatalogError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Scan audit logs
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body audit.ScanLogsRequest true "Scan request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/audit_logs/scan [post]
func ApiScanAuditLogs(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req audit.ScanLogsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := svc.ScanLogs(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type sweepResp struct {
	Deleted int64 `json:"deleted"`
}

// @Summary      Audit retention sweep
// @Description  Deletes audit entries older than the retention window.
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/audit_logs/sweep [post]
func ApiSweepAuditLogs(svc *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := svc.Sweep(c.Request.Context(), mw.RequestMeta(c))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(sweepResp{Deleted: deleted}))
	}
}

// @Summary      Dashboard statistics
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/admin/statistics [get]
func ApiStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Dashboard(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrDuplicate):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeConflict, err.Error()))
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, catalog.ErrProtected):
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeConflict, err.Error()))
	default:
		c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
	}
}

func RegisterAdminRoutes(r gin.IRouter, orderSvc *order.Service, catalogSvc *catalog.Service, auditSvc *audit.Service, statsSvc *statistics.Service) {
	r.POST("/orders/scan", ApiScanOrders(orderSvc))
	r.GET("/orders/:id", ApiGetOrder(orderSvc))
	r.POST("/telcos", ApiCreateTelco(catalogSvc))
	r.DELETE("/telcos/:id", ApiDeactivateTelco(catalogSvc))
	r.POST("/bundles", ApiCreateBundle(catalogSvc))
	r.PUT("/bundles/:id", ApiUpdateBundle(catalogSvc))
	r.DELETE("/bundles/:id", ApiDeactivateBundle(catalogSvc))
	r.POST("/audit_logs/scan", ApiScanAuditLogs(auditSvc))
	r.POST("/audit_logs/sweep", ApiSweepAuditLogs(auditSvc))
	r.GET("/statistics", ApiStatistics(statsSvc))
}
