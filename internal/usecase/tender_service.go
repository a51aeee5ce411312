package usecase

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tendermatch/backend/internal/domain"
)

// MatchingConfig holds the thresholds and caps for one matching call. The
// pipeline copies it at construction, so scoring behavior is reproducible
// and never read from ambient process state.
type MatchingConfig struct {
	MinMatchScore             float64
	MaxMatchedProductsPerItem int
	PriceTolerancePercent     float64
	RequiredWeight            float64
	OptionalWeight            float64
	MaxConcurrentItems        int
}

// TenderMatchingService matches tender items against the product catalog:
// candidate retrieval by OKPD2 code, characteristic scoring, supplier
// evaluation, ranking and aggregation. Stateless per call.
type TenderMatchingService struct {
	repo      domain.CatalogRepository
	scorer    *ItemScorer
	evaluator *SupplierEvaluator
	cfg       MatchingConfig
	log       *zap.Logger
}

// NewTenderMatchingService creates the matching pipeline with its
// dependencies and configuration.
func NewTenderMatchingService(repo domain.CatalogRepository, cfg MatchingConfig, log *zap.Logger) *TenderMatchingService {
	if cfg.MinMatchScore <= 0 {
		cfg.MinMatchScore = 0.5
	}
	if cfg.MaxMatchedProductsPerItem <= 0 {
		cfg.MaxMatchedProductsPerItem = 10
	}
	if cfg.PriceTolerancePercent <= 0 {
		cfg.PriceTolerancePercent = 20.0
	}
	if cfg.MaxConcurrentItems <= 0 {
		cfg.MaxConcurrentItems = 2 * runtime.NumCPU()
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &TenderMatchingService{
		repo:      repo,
		scorer:    NewItemScorer(ScorerConfig{RequiredWeight: cfg.RequiredWeight, OptionalWeight: cfg.OptionalWeight}, log),
		evaluator: NewSupplierEvaluator(),
		cfg:       cfg,
		log:       log,
	}
}

// MatchTender processes every tender item concurrently and assembles the
// ordered, aggregated response. Item results keep the request order no
// matter when each lookup completes. A single item's repository failure is
// contained in that item's result; the call itself still succeeds.
func (s *TenderMatchingService) MatchTender(ctx context.Context, req *domain.TenderRequest) (*domain.TenderMatchResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to match", domain.ErrInvalidTender)
	}

	start := time.Now()
	s.log.Info("processing tender",
		zap.String("tender_number", req.TenderInfo.TenderNumber),
		zap.Int("items", len(req.Items)))

	results := make([]domain.ItemMatchResult, len(req.Items))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxConcurrentItems)
	for i := range req.Items {
		g.Go(func() error {
			results[i] = s.matchItem(ctx, &req.Items[i])
			return nil
		})
	}
	// Item faults are reported inside each result, never as a group error.
	_ = g.Wait()

	resp := s.assemble(req, results, start)
	s.log.Info("tender processed",
		zap.String("tender_number", req.TenderInfo.TenderNumber),
		zap.Int("matched_items", resp.MatchedItems),
		zap.Int("total_items", resp.TotalItems),
		zap.Float64("duration_seconds", resp.Summary.ProcessingDurationSeconds))
	return resp, nil
}

// matchItem runs the full per-item flow: retrieve candidates, score and
// filter them, evaluate suppliers, rank and cap.
func (s *TenderMatchingService) matchItem(ctx context.Context, item *domain.TenderItem) domain.ItemMatchResult {
	result := domain.ItemMatchResult{
		TenderItemID:     item.ID,
		TenderItemName:   item.Name,
		OKPD2Code:        item.OKPD2Code,
		MatchedProducts:  []domain.MatchedProduct{},
		ProcessingStatus: domain.ItemStatusNoMatches,
	}

	if err := ctx.Err(); err != nil {
		result.ProcessingStatus = domain.ItemStatusError
		result.ErrorMessage = err.Error()
		return result
	}

	candidates, err := s.repo.FindCandidates(ctx, item.OKPD2Code)
	if err != nil {
		s.log.Warn("candidate lookup failed",
			zap.Int("item_id", item.ID),
			zap.String("okpd2_code", item.OKPD2Code),
			zap.Error(err))
		result.ProcessingStatus = domain.ItemStatusError
		result.ErrorMessage = err.Error()
		return result
	}
	if len(candidates) == 0 {
		s.log.Debug("no candidates for code", zap.String("okpd2_code", item.OKPD2Code))
		return result
	}

	plan := s.scorer.Plan(item)

	type scoredCandidate struct {
		product *domain.CatalogProduct
		score   float64
	}
	var qualified []scoredCandidate
	for i := range candidates {
		score, eligible := plan.Score(&candidates[i])
		if !eligible || score < s.cfg.MinMatchScore {
			continue
		}
		qualified = append(qualified, scoredCandidate{product: &candidates[i], score: score})
	}
	if len(qualified) == 0 {
		return result
	}

	// Rank after all scoring completes: score descending, product hash
	// ascending for determinism.
	sort.Slice(qualified, func(a, b int) bool {
		if qualified[a].score != qualified[b].score {
			return qualified[a].score > qualified[b].score
		}
		return qualified[a].product.ProductHash < qualified[b].product.ProductHash
	})

	result.TotalMatches = len(qualified)
	if len(qualified) > s.cfg.MaxMatchedProductsPerItem {
		qualified = qualified[:s.cfg.MaxMatchedProductsPerItem]
	}

	for _, sc := range qualified {
		result.MatchedProducts = append(result.MatchedProducts, domain.MatchedProduct{
			ProductHash: sc.product.ProductHash,
			OKPD2Code:   sc.product.OKPD2Code,
			Title:       sc.product.Title,
			Brand:       sc.product.Brand,
			MatchScore:  sc.score,
			Suppliers:   s.rankSuppliers(item, sc.product),
		})
	}

	result.BestMatchScore = result.MatchedProducts[0].MatchScore
	result.ProcessingStatus = domain.ItemStatusSuccess
	return result
}

// rankSuppliers scores every supplier offer of a retained product against
// the item's unit price and sorts them: score descending, supplier name
// ascending.
func (s *TenderMatchingService) rankSuppliers(item *domain.TenderItem, product *domain.CatalogProduct) []domain.MatchedSupplier {
	suppliers := make([]domain.MatchedSupplier, 0, len(product.Suppliers))
	for _, offer := range product.Suppliers {
		score := s.evaluator.Score(item.UnitPrice.Amount, offer.Price, s.cfg.PriceTolerancePercent)
		if offer.Price <= 0 {
			s.log.Warn("supplier offer has no usable price",
				zap.String("supplier", offer.SupplierName),
				zap.String("product_hash", product.ProductHash))
		}
		suppliers = append(suppliers, domain.MatchedSupplier{
			SupplierName: offer.SupplierName,
			SupplierTel:  offer.SupplierTel,
			PurchaseURL:  offer.PurchaseURL,
			Price:        offer.Price,
			Score:        score,
		})
	}

	sort.Slice(suppliers, func(a, b int) bool {
		if suppliers[a].Score != suppliers[b].Score {
			return suppliers[a].Score > suppliers[b].Score
		}
		return suppliers[a].SupplierName < suppliers[b].SupplierName
	})
	return suppliers
}

// assemble merges per-item results into the tender-level response.
func (s *TenderMatchingService) assemble(req *domain.TenderRequest, results []domain.ItemMatchResult, start time.Time) *domain.TenderMatchResponse {
	summary := domain.MatchSummary{}
	distinctSuppliers := make(map[string]struct{})

	matchedItems := 0
	var bestScoreSum float64
	for _, res := range results {
		if len(res.MatchedProducts) > 0 {
			matchedItems++
			bestScoreSum += res.BestMatchScore
		}
		if res.ProcessingStatus == domain.ItemStatusError {
			summary.FailedItems++
		}
		for _, product := range res.MatchedProducts {
			for _, supplier := range product.Suppliers {
				distinctSuppliers[supplier.SupplierName] = struct{}{}
			}
		}

		switch best := res.BestMatchScore; {
		case best >= 0.9:
			summary.ItemsWithPerfectMatch++
		case best >= 0.7:
			summary.ItemsWithGoodMatch++
		case best >= 0.5:
			summary.ItemsWithPartialMatch++
		case best == 0:
			summary.ItemsWithoutMatch++
		}
	}

	summary.TotalSuppliers = len(distinctSuppliers)
	if matchedItems > 0 {
		summary.AverageMatchScore = bestScoreSum / float64(matchedItems)
	}
	if summary.FailedItems > 0 {
		summary.Note = fmt.Sprintf("%d of %d items failed or were cancelled and are reported with zero matches", summary.FailedItems, len(results))
	}
	summary.ProcessingDurationSeconds = time.Since(start).Seconds()

	return &domain.TenderMatchResponse{
		TenderNumber:   req.TenderInfo.TenderNumber,
		TenderName:     req.TenderInfo.TenderName,
		ProcessingTime: time.Now().UTC(),
		TotalItems:     len(req.Items),
		MatchedItems:   matchedItems,
		ItemMatches:    results,
		Summary:        summary,
	}
}
