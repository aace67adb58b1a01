package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"stockroom/internal/apperror"
	"stockroom/internal/dto"
	"stockroom/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const lookupCacheTTL = 5 * time.Minute

// LookupHandler resolves scanned QR payloads to the entity they label.
// Product lookups are cached briefly in Redis — shelf scans cluster in
// bursts and rarely follow a stock change within the TTL.
type LookupHandler struct {
	products service.ProductService
	orders   service.OrderService
	rdb      *redis.Client
}

func NewLookupHandler(products service.ProductService, orders service.OrderService, rdb *redis.Client) *LookupHandler {
	return &LookupHandler{products: products, orders: orders, rdb: rdb}
}

// Resolve handles GET /lookup/:payload where payload is "product:<sku>"
// or "order:<order_number>".
func (h *LookupHandler) Resolve(c *gin.Context) {
	payload := c.Param("payload")
	ctx := c.Request.Context()

	kind, key, ok := strings.Cut(payload, ":")
	if !ok || key == "" {
		c.JSON(http.StatusBadRequest, apperror.New("payload must be product:<sku> or order:<order_number>"))
		return
	}

	switch kind {
	case "product":
		cacheKey := "lookup:product:" + key
		if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var resp dto.LookupResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}

		product, err := h.products.GetBySKU(ctx, key)
		if err != nil {
			respondError(c, err)
			return
		}
		resp := dto.LookupResponse{Kind: "product", Product: product}

		// Populate cache — best effort, ignore errors
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = h.rdb.Set(context.Background(), cacheKey, b, lookupCacheTTL).Err()
		}
		c.JSON(http.StatusOK, resp)

	case "order":
		// Orders are never cached: received quantities must read fresh.
		order, err := h.orders.GetByNumber(ctx, key)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.LookupResponse{Kind: "order", Order: order})

	default:
		c.JSON(http.StatusBadRequest, apperror.New("unknown payload kind: "+kind))
	}
}
