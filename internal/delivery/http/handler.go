package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tendermatch/backend/config"
	"github.com/tendermatch/backend/internal/domain"
)

const serviceVersion = "1.0.0"

// TenderService is the matching pipeline as seen by the HTTP layer.
type TenderService interface {
	MatchTender(ctx context.Context, req *domain.TenderRequest) (*domain.TenderMatchResponse, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	tenders TenderService
	catalog domain.StatisticsProvider
	cfg     *config.Config
	log     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(tenders TenderService, catalog domain.StatisticsProvider, cfg *config.Config, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		tenders: tenders,
		catalog: catalog,
		cfg:     cfg,
		log:     log,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tender-matching-service",
		"version": serviceVersion,
	})
}

// MatchTender handles a full tender matching request. Structural validation
// happens here; per-item matching faults are contained in the response body.
func (h *Handler) MatchTender(c *gin.Context) {
	var req domain.TenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tender payload: " + err.Error()})
		return
	}

	if len(req.Items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tender must contain at least one item"})
		return
	}

	// Items with zero quantity carry no demand and are dropped before matching.
	validItems := make([]domain.TenderItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity > 0 {
			validItems = append(validItems, item)
		}
	}
	if len(validItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tender must contain at least one item with quantity > 0"})
		return
	}
	req.Items = validItems

	timeout := h.cfg.Matching.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	result, err := h.tenders.MatchTender(ctx, &req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTender) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("tender matching failed",
			zap.String("tender_number", req.TenderInfo.TenderNumber),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ServiceStatus reports catalog statistics and the effective matching
// configuration. A catalog failure degrades the status instead of erroring.
func (h *Handler) ServiceStatus(c *gin.Context) {
	configuration := gin.H{
		"min_match_score":               h.cfg.Matching.MinMatchScore,
		"max_matched_products_per_item": h.cfg.Matching.MaxMatchedProductsPerItem,
		"price_tolerance_percent":       h.cfg.Matching.PriceTolerancePercent,
	}

	stats, err := h.catalog.Statistics(c.Request.Context())
	if err != nil {
		h.log.Warn("catalog statistics unavailable", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"service":       "Tender Matching Service",
			"status":        "degraded",
			"error":         err.Error(),
			"configuration": configuration,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"service":       "Tender Matching Service",
		"status":        "operational",
		"database":      stats,
		"configuration": configuration,
	})
}
