package domain

import "context"

// CatalogRepository is the read-only view of the deduplicated product catalog.
// FindCandidates returns every product whose classification code equals the
// given OKPD2 code; it may return an empty slice but must not truncate, the
// matching pipeline performs its own capping.
type CatalogRepository interface {
	FindCandidates(ctx context.Context, okpd2Code string) ([]CatalogProduct, error)
}

// CatalogStatistics describes the catalog for the status endpoint.
type CatalogStatistics struct {
	TotalProducts int64            `json:"total_unique_products"`
	ByOKPD2Class  map[string]int64 `json:"by_okpd_class"`
}

// StatisticsProvider exposes catalog-level statistics.
type StatisticsProvider interface {
	Statistics(ctx context.Context) (*CatalogStatistics, error)
}
