package domain

import "time"

// Per-item processing outcomes.
const (
	ItemStatusSuccess   = "success"
	ItemStatusNoMatches = "no_matches"
	ItemStatusError     = "error"
)

// MatchedSupplier is a supplier offer scored against the tender item's
// target price.
type MatchedSupplier struct {
	SupplierName string  `json:"supplier_name"`
	SupplierTel  string  `json:"supplier_tel,omitempty"`
	PurchaseURL  string  `json:"purchase_url,omitempty"`
	Price        float64 `json:"price"`
	Score        float64 `json:"score"`
}

// MatchedProduct is a catalog product retained for a tender item, with its
// match score and ranked supplier offers. Never persisted.
type MatchedProduct struct {
	ProductHash string            `json:"product_hash"`
	OKPD2Code   string            `json:"okpd2_code"`
	Title       string            `json:"sample_title,omitempty"`
	Brand       string            `json:"sample_brand,omitempty"`
	MatchScore  float64           `json:"match_score"`
	Suppliers   []MatchedSupplier `json:"matched_suppliers"`
}

// ItemMatchResult is the matching outcome for one tender item.
// TotalMatches counts qualifying candidates before the per-item cap.
type ItemMatchResult struct {
	TenderItemID     int              `json:"tender_item_id"`
	TenderItemName   string           `json:"tender_item_name"`
	OKPD2Code        string           `json:"okpd2_code"`
	MatchedProducts  []MatchedProduct `json:"matched_products"`
	TotalMatches     int              `json:"total_matches"`
	BestMatchScore   float64          `json:"best_match_score"`
	ProcessingStatus string           `json:"processing_status"`
	ErrorMessage     string           `json:"error_message,omitempty"`
}

// MatchSummary aggregates tender-level statistics.
// TotalSuppliers counts distinct supplier names across all matched offers.
// AverageMatchScore is the mean of best scores over items with at least one
// match, 0 when nothing matched.
type MatchSummary struct {
	TotalSuppliers            int     `json:"total_suppliers"`
	AverageMatchScore         float64 `json:"average_match_score"`
	ItemsWithPerfectMatch     int     `json:"items_with_perfect_match"`
	ItemsWithGoodMatch        int     `json:"items_with_good_match"`
	ItemsWithPartialMatch     int     `json:"items_with_partial_match"`
	ItemsWithoutMatch         int     `json:"items_without_match"`
	FailedItems               int     `json:"failed_items"`
	Note                      string  `json:"note,omitempty"`
	ProcessingDurationSeconds float64 `json:"processing_duration_seconds"`
}

// TenderMatchResponse is the full matching result for a tender.
// ItemMatches preserves the order of the request items.
type TenderMatchResponse struct {
	TenderNumber   string            `json:"tender_number,omitempty"`
	TenderName     string            `json:"tender_name,omitempty"`
	ProcessingTime time.Time         `json:"processing_time"`
	TotalItems     int               `json:"total_items"`
	MatchedItems   int               `json:"matched_items"`
	ItemMatches    []ItemMatchResult `json:"item_matches"`
	Summary        MatchSummary      `json:"summary"`
}
