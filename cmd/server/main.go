package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/tendermatch/backend/config"
	httpDelivery "github.com/tendermatch/backend/internal/delivery/http"
	"github.com/tendermatch/backend/internal/domain"
	"github.com/tendermatch/backend/internal/infrastructure/cache"
	"github.com/tendermatch/backend/internal/infrastructure/mongocat"
	"github.com/tendermatch/backend/internal/logger"
	"github.com/tendermatch/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Server.LogJSON, cfg.Server.Environment == "development")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync()

	zl.Info("starting tender matching service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Float64("min_match_score", cfg.Matching.MinMatchScore),
		zap.Int("max_matched_products_per_item", cfg.Matching.MaxMatchedProductsPerItem),
		zap.Float64("price_tolerance_percent", cfg.Matching.PriceTolerancePercent))

	// Connect the catalog repository
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.Timeout)
	store, err := mongocat.New(ctx, cfg.Mongo, zl)
	cancel()
	if err != nil {
		zl.Fatal("failed to connect to catalog database", zap.Error(err))
	}
	defer store.Close(context.Background())

	var repo domain.CatalogRepository = store
	if cfg.Cache.Enabled {
		repo = cache.NewRepository(store, cfg.Cache.TTL)
		zl.Info("candidate cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
	}

	// Build the matching pipeline
	matcher := usecase.NewTenderMatchingService(repo, usecase.MatchingConfig{
		MinMatchScore:             cfg.Matching.MinMatchScore,
		MaxMatchedProductsPerItem: cfg.Matching.MaxMatchedProductsPerItem,
		PriceTolerancePercent:     cfg.Matching.PriceTolerancePercent,
		RequiredWeight:            cfg.Matching.RequiredWeight,
		OptionalWeight:            cfg.Matching.OptionalWeight,
		MaxConcurrentItems:        cfg.Matching.MaxConcurrentItems,
	}, zl)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(matcher, store, cfg, zl)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, zl)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
