package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tendermatch/backend/internal/domain"
)

// fakeCatalog is an in-memory CatalogRepository with configurable latency
// and failures per classification code.
type fakeCatalog struct {
	products map[string][]domain.CatalogProduct
	delays   map[string]time.Duration
	failures map[string]error
}

func (f *fakeCatalog) FindCandidates(ctx context.Context, okpd2Code string) ([]domain.CatalogProduct, error) {
	if delay := f.delays[okpd2Code]; delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.failures[okpd2Code]; err != nil {
		return nil, err
	}
	return f.products[okpd2Code], nil
}

func newTestService(repo domain.CatalogRepository, cfg MatchingConfig) *TenderMatchingService {
	return NewTenderMatchingService(repo, cfg, nil)
}

func tapeProduct(hash string, width string, suppliers ...domain.SupplierOffer) domain.CatalogProduct {
	return domain.CatalogProduct{
		ProductHash: hash,
		OKPD2Code:   "22.29.21.000",
		Title:       "Клейкая лента " + hash,
		Attributes: []domain.ProductAttribute{
			{Name: "Ширина", Value: width, Unit: "мм"},
		},
		Suppliers: suppliers,
	}
}

func tapeItem(id int) domain.TenderItem {
	return domain.TenderItem{
		ID:        id,
		Name:      "Лента клейкая упаковочная",
		OKPD2Code: "22.29.21.000",
		Quantity:  100,
		UnitPrice: domain.Money{Amount: 100},
		Characteristics: []domain.Characteristic{
			{
				Name:     "Ширина клейкой ленты",
				Value:    "≥ 50",
				Unit:     "мм",
				Type:     domain.CharacteristicQuantitative,
				Required: true,
			},
		},
	}
}

func TestMatchTenderRejectsEmptyRequest(t *testing.T) {
	svc := newTestService(&fakeCatalog{}, MatchingConfig{})

	if _, err := svc.MatchTender(context.Background(), nil); !errors.Is(err, domain.ErrInvalidTender) {
		t.Errorf("error = %v, want ErrInvalidTender", err)
	}
	if _, err := svc.MatchTender(context.Background(), &domain.TenderRequest{}); !errors.Is(err, domain.ErrInvalidTender) {
		t.Errorf("error = %v, want ErrInvalidTender", err)
	}
}

func TestMatchTenderFiltersByRequiredCharacteristic(t *testing.T) {
	repo := &fakeCatalog{
		products: map[string][]domain.CatalogProduct{
			"22.29.21.000": {
				tapeProduct("aaa", "60", domain.SupplierOffer{SupplierName: "ООО Лента", Price: 90}),
				tapeProduct("bbb", "40", domain.SupplierOffer{SupplierName: "ООО Скотч", Price: 80}),
			},
		},
	}
	svc := newTestService(repo, MatchingConfig{})

	req := &domain.TenderRequest{Items: []domain.TenderItem{tapeItem(1)}}
	resp, err := svc.MatchTender(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.TotalItems != 1 || resp.MatchedItems != 1 {
		t.Errorf("items = %d/%d, want 1/1", resp.MatchedItems, resp.TotalItems)
	}

	result := resp.ItemMatches[0]
	if result.ProcessingStatus != domain.ItemStatusSuccess {
		t.Errorf("status = %q, want success", result.ProcessingStatus)
	}
	if len(result.MatchedProducts) != 1 {
		t.Fatalf("matched products = %d, want 1 (width 40 must be excluded)", len(result.MatchedProducts))
	}
	if result.MatchedProducts[0].ProductHash != "aaa" {
		t.Errorf("matched product = %q, want aaa", result.MatchedProducts[0].ProductHash)
	}
	if result.MatchedProducts[0].MatchScore != 1.0 {
		t.Errorf("match score = %v, want 1.0", result.MatchedProducts[0].MatchScore)
	}
	if result.BestMatchScore != 1.0 {
		t.Errorf("best score = %v, want 1.0", result.BestMatchScore)
	}
}

func TestMatchTenderPreservesItemOrder(t *testing.T) {
	// The slowest item comes first so completion order is the reverse of
	// input order.
	repo := &fakeCatalog{
		products: map[string][]domain.CatalogProduct{},
		delays: map[string]time.Duration{
			"01": 60 * time.Millisecond,
			"02": 30 * time.Millisecond,
			"03": 0,
		},
	}
	svc := newTestService(repo, MatchingConfig{MaxConcurrentItems: 3})

	req := &domain.TenderRequest{Items: []domain.TenderItem{
		{ID: 1, OKPD2Code: "01", Quantity: 1},
		{ID: 2, OKPD2Code: "02", Quantity: 1},
		{ID: 3, OKPD2Code: "03", Quantity: 1},
	}}
	resp, err := svc.MatchTender(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, want := range []int{1, 2, 3} {
		if resp.ItemMatches[i].TenderItemID != want {
			t.Errorf("ItemMatches[%d].TenderItemID = %d, want %d", i, resp.ItemMatches[i].TenderItemID, want)
		}
	}
}

func TestMatchTenderTruncationAndTieBreak(t *testing.T) {
	var products []domain.CatalogProduct
	for _, hash := range []string{"eee", "bbb", "ddd", "aaa", "ccc"} {
		products = append(products, tapeProduct(hash, "60"))
	}
	repo := &fakeCatalog{products: map[string][]domain.CatalogProduct{"22.29.21.000": products}}
	svc := newTestService(repo, MatchingConfig{MaxMatchedProductsPerItem: 2})

	req := &domain.TenderRequest{Items: []domain.TenderItem{tapeItem(1)}}
	resp, err := svc.MatchTender(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := resp.ItemMatches[0]
	if len(result.MatchedProducts) != 2 {
		t.Fatalf("matched products = %d, want cap of 2", len(result.MatchedProducts))
	}
	if result.TotalMatches != 5 {
		t.Errorf("total matches = %d, want 5 (count before capping)", result.TotalMatches)
	}
	// All scores tie at 1.0, so product hash ascending decides.
	if result.MatchedProducts[0].ProductHash != "aaa" || result.MatchedProducts[1].ProductHash != "bbb" {
		t.Errorf("tie-break order = %q, %q, want aaa, bbb",
			result.MatchedProducts[0].ProductHash, result.MatchedProducts[1].ProductHash)
	}
}

func TestMatchTenderScoreThresholdBoundary(t *testing.T) {
	// Two optional characteristics, one matched: score exactly 0.5.
	// Three optional characteristics, one matched: score 1/3, below 0.5.
	boundaryItem := domain.TenderItem{
		ID: 1, OKPD2Code: "x", Quantity: 1,
		Characteristics: []domain.Characteristic{
			{Name: "Цвет", Value: "белый", Type: domain.CharacteristicQualitative},
			{Name: "Материал", Value: "бумага", Type: domain.CharacteristicQualitative},
		},
	}
	belowItem := domain.TenderItem{
		ID: 2, OKPD2Code: "y", Quantity: 1,
		Characteristics: []domain.Characteristic{
			{Name: "Цвет", Value: "белый", Type: domain.CharacteristicQualitative},
			{Name: "Материал", Value: "бумага", Type: domain.CharacteristicQualitative},
			{Name: "Формат", Value: "А4", Type: domain.CharacteristicQualitative},
		},
	}
	product := domain.CatalogProduct{
		ProductHash: "p1",
		Attributes:  []domain.ProductAttribute{{Name: "Цвет", Value: "белый"}},
	}
	repo := &fakeCatalog{products: map[string][]domain.CatalogProduct{
		"x": {product},
		"y": {product},
	}}
	svc := newTestService(repo, MatchingConfig{MinMatchScore: 0.5})

	resp, err := svc.MatchTender(context.Background(), &domain.TenderRequest{
		Items: []domain.TenderItem{boundaryItem, belowItem},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(resp.ItemMatches[0].MatchedProducts) != 1 {
		t.Error("candidate scoring exactly the threshold must be retained")
	}
	if len(resp.ItemMatches[1].MatchedProducts) != 0 {
		t.Error("candidate scoring below the threshold must be excluded")
	}
}

func TestMatchTenderIsolatesItemFailures(t *testing.T) {
	repo := &fakeCatalog{
		products: map[string][]domain.CatalogProduct{
			"ok1": {tapeProductForCode("ok1", "h1")},
			"ok2": {tapeProductForCode("ok2", "h2")},
		},
		failures: map[string]error{
			"boom": domain.ErrRepositoryUnavailable,
		},
	}
	svc := newTestService(repo, MatchingConfig{})

	req := &domain.TenderRequest{Items: []domain.TenderItem{
		{ID: 1, OKPD2Code: "ok1", Quantity: 1},
		{ID: 2, OKPD2Code: "boom", Quantity: 1},
		{ID: 3, OKPD2Code: "ok2", Quantity: 1},
	}}
	resp, err := svc.MatchTender(context.Background(), req)
	if err != nil {
		t.Fatalf("call must succeed despite a single item failure, got: %v", err)
	}

	if len(resp.ItemMatches) != 3 {
		t.Fatalf("item matches = %d, want 3", len(resp.ItemMatches))
	}
	if resp.ItemMatches[0].ProcessingStatus != domain.ItemStatusSuccess {
		t.Errorf("item 1 status = %q, want success", resp.ItemMatches[0].ProcessingStatus)
	}
	failed := resp.ItemMatches[1]
	if failed.ProcessingStatus != domain.ItemStatusError {
		t.Errorf("item 2 status = %q, want error", failed.ProcessingStatus)
	}
	if len(failed.MatchedProducts) != 0 || failed.ErrorMessage == "" {
		t.Errorf("failed item must have zero matches and an error message, got %+v", failed)
	}
	if resp.ItemMatches[2].ProcessingStatus != domain.ItemStatusSuccess {
		t.Errorf("item 3 status = %q, want success", resp.ItemMatches[2].ProcessingStatus)
	}

	if resp.MatchedItems != 2 {
		t.Errorf("matched items = %d, want 2", resp.MatchedItems)
	}
	if resp.Summary.FailedItems != 1 {
		t.Errorf("failed items = %d, want 1", resp.Summary.FailedItems)
	}
	if resp.Summary.Note == "" {
		t.Error("summary note must mention the failed item")
	}
}

func TestMatchTenderDeadline(t *testing.T) {
	repo := &fakeCatalog{
		products: map[string][]domain.CatalogProduct{
			"fast": {tapeProductForCode("fast", "h1")},
		},
		delays: map[string]time.Duration{
			"slow": 500 * time.Millisecond,
		},
	}
	svc := newTestService(repo, MatchingConfig{MaxConcurrentItems: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := &domain.TenderRequest{Items: []domain.TenderItem{
		{ID: 1, OKPD2Code: "fast", Quantity: 1},
		{ID: 2, OKPD2Code: "slow", Quantity: 1},
	}}
	resp, err := svc.MatchTender(ctx, req)
	if err != nil {
		t.Fatalf("deadline must not fail the whole call, got: %v", err)
	}

	if resp.ItemMatches[0].ProcessingStatus != domain.ItemStatusSuccess {
		t.Errorf("fast item status = %q, want success", resp.ItemMatches[0].ProcessingStatus)
	}
	slow := resp.ItemMatches[1]
	if slow.ProcessingStatus != domain.ItemStatusError {
		t.Errorf("slow item status = %q, want error", slow.ProcessingStatus)
	}
	if len(slow.MatchedProducts) != 0 {
		t.Error("cancelled item must report zero matches, never a partial result")
	}
}

func TestMatchTenderSupplierRankingAndSummary(t *testing.T) {
	repo := &fakeCatalog{
		products: map[string][]domain.CatalogProduct{
			"22.29.21.000": {
				tapeProduct("aaa", "60",
					domain.SupplierOffer{SupplierName: "Гамма", Price: 110},
					domain.SupplierOffer{SupplierName: "Альфа", Price: 90},
					domain.SupplierOffer{SupplierName: "Бета", Price: 90},
				),
			},
		},
	}
	svc := newTestService(repo, MatchingConfig{PriceTolerancePercent: 20})

	resp, err := svc.MatchTender(context.Background(), &domain.TenderRequest{
		Items: []domain.TenderItem{tapeItem(1)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	suppliers := resp.ItemMatches[0].MatchedProducts[0].Suppliers
	if len(suppliers) != 3 {
		t.Fatalf("suppliers = %d, want 3", len(suppliers))
	}
	// Cheaper offers first; equal scores fall back to name ascending.
	if suppliers[0].SupplierName != "Альфа" || suppliers[1].SupplierName != "Бета" {
		t.Errorf("supplier order = %q, %q, want Альфа, Бета", suppliers[0].SupplierName, suppliers[1].SupplierName)
	}
	if suppliers[2].SupplierName != "Гамма" {
		t.Errorf("supplier order[2] = %q, want Гамма", suppliers[2].SupplierName)
	}
	if !(suppliers[0].Score > suppliers[2].Score) {
		t.Errorf("cheaper supplier score %v must beat %v", suppliers[0].Score, suppliers[2].Score)
	}

	if resp.Summary.TotalSuppliers != 3 {
		t.Errorf("distinct suppliers = %d, want 3", resp.Summary.TotalSuppliers)
	}
	if resp.Summary.AverageMatchScore != 1.0 {
		t.Errorf("average match score = %v, want 1.0", resp.Summary.AverageMatchScore)
	}
	if resp.Summary.ProcessingDurationSeconds < 0 {
		t.Errorf("duration = %v, want >= 0", resp.Summary.ProcessingDurationSeconds)
	}
}

// tapeProductForCode builds a minimal product for an arbitrary code, used
// by items without characteristic requirements.
func tapeProductForCode(code, hash string) domain.CatalogProduct {
	return domain.CatalogProduct{
		ProductHash: hash,
		OKPD2Code:   code,
		Suppliers:   []domain.SupplierOffer{{SupplierName: "Поставщик " + hash, Price: 100}},
	}
}
