package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/Caddilac1/DataHub/internal/app/service/catalog"
	"github.com/Caddilac1/DataHub/internal/models"
	"github.com/Caddilac1/DataHub/pkg/response"
)

type BundleItem struct {
	ID     string  `json:"id"`
	Size   string  `json:"size"`
	SizeMB int     `json:"size_mb"`
	Price  float64 `json:"price"`
	// PriceDisplay is the formatted shop price, e.g. "GH₵ 10.00".
	PriceDisplay string `json:"price_display"`
	Validity     string `json:"validity"`
	TelcoCode    string `json:"telco_code"`
}

type ListBundlesResponse struct {
	// Plans groups purchasable bundles per telco name.
	Plans map[string][]*BundleItem `json:"plans"`
}

func toBundleItem(b *models.Bundle) *BundleItem {
	size := fmt.Sprintf("%dMB", b.SizeMB)
	if b.SizeMB >= 1000 {
		size = fmt.Sprintf("%dGB", b.SizeMB/1000)
	}
	validity := "30 days"
	switch b.Telco.Code {
	case "mtnup2u", "telecel":
		validity = "Non-Expiry"
	}
	return &BundleItem{
		ID:           b.ID,
		Size:         size,
		SizeMB:       b.SizeMB,
		Price:        b.Price,
		PriceDisplay: fmt.Sprintf("GH₵ %.2f", b.Price),
		Validity:     validity,
		TelcoCode:    b.Telco.Code,
	}
}

// @Summary      List data bundles
// @Description  Lists purchasable bundles of active telcos, grouped per telco.
// @Tags         Catalog
// @Produce      json
// @Param        telco  query  string  false  "Restrict to one telco code"
// @Success      200  {object}  handlers.RespListBundles
// @Router       /api/v1/bundles [get]
func ApiListBundles(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		bundles, err := svc.ListBundles(c.Request.Context(), c.Query("telco"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, nil))
			return
		}

		bundles = lo.Filter(bundles, func(b *models.Bundle, _ int) bool { return b.Telco != nil })
		grouped := lo.GroupBy(bundles, func(b *models.Bundle) string { return b.Telco.Name })
		out := ListBundlesResponse{Plans: lo.MapValues(grouped, func(group []*models.Bundle, _ string) []*BundleItem {
			return lo.Map(group, func(b *models.Bundle, _ int) *BundleItem { return toBundleItem(b) })
		})}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func RegisterCatalogRoutes(r gin.IRouter, svc *catalog.Service) {
	r.GET("/bundles", ApiListBundles(svc))
}
