// Package mongocat implements the read-only catalog repository on top of
// the unique-products MongoDB collection.
package mongocat

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/tendermatch/backend/config"
	"github.com/tendermatch/backend/internal/domain"
)

// Store is a CatalogRepository backed by MongoDB. All operations are reads;
// the connection pool is shared safely across concurrent item lookups.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    *zap.Logger
}

// New connects to the catalog database and verifies the connection with a
// ping. An unreachable catalog at startup is a hard error.
func New(ctx context.Context, cfg config.MongoConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout).
		SetConnectTimeout(cfg.Timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRepositoryUnavailable, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping failed: %v", domain.ErrRepositoryUnavailable, err)
	}

	log.Info("connected to catalog database",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection))

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
		log:    log,
	}, nil
}

// FindCandidates returns every product whose OKPD2 code equals the given
// code, most-supplied products first. The result is never truncated here;
// the matching pipeline applies its own cap.
func (s *Store) FindCandidates(ctx context.Context, okpd2Code string) ([]domain.CatalogProduct, error) {
	if okpd2Code == "" {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "unique_suppliers_count", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"okpd2_code": okpd2Code}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find failed for code %s: %v", domain.ErrRepositoryUnavailable, okpd2Code, err)
	}
	defer cursor.Close(ctx)

	var products []domain.CatalogProduct
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("%w: cursor read failed for code %s: %v", domain.ErrRepositoryUnavailable, okpd2Code, err)
	}

	s.log.Debug("candidates retrieved",
		zap.String("okpd2_code", okpd2Code),
		zap.Int("count", len(products)))
	return products, nil
}

// Statistics reports the catalog size and product counts grouped by the
// two-digit OKPD2 class, for the status endpoint.
func (s *Store) Statistics(ctx context.Context) (*domain.CatalogStatistics, error) {
	total, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: count failed: %v", domain.ErrRepositoryUnavailable, err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$substrBytes", Value: bson.A{"$okpd2_code", 0, 2}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregation failed: %v", domain.ErrRepositoryUnavailable, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Class string `bson:"_id"`
		Count int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: aggregation read failed: %v", domain.ErrRepositoryUnavailable, err)
	}

	byClass := make(map[string]int64, len(rows))
	for _, row := range rows {
		byClass[row.Class] = row.Count
	}

	return &domain.CatalogStatistics{
		TotalProducts: total,
		ByOKPD2Class:  byClass,
	}, nil
}

// Close disconnects from the catalog database.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
