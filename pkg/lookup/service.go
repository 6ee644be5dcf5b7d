package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/aster/pkg/metrics"
	"github.com/Ramsey-B/aster/pkg/models"
	"github.com/Ramsey-B/aster/pkg/redis"
	"github.com/Ramsey-B/aster/pkg/tracing"
)

const defaultReviewThreshold = 0.9

// RowStore loads the rows of a reference dataset. Returns nil rows without
// error when the dataset does not exist for the tenant.
type RowStore interface {
	GetRows(ctx context.Context, tenantID, datasetID string) ([]models.DatasetRow, error)
}

// ConfigStore loads saved lookup configs
type ConfigStore interface {
	Get(ctx context.Context, tenantID, id string) (*models.LookupConfig, error)
}

// BatchItem is one cell to resolve in a batch lookup
type BatchItem struct {
	RowID     string `json:"row_id" validate:"required"`
	FieldName string `json:"field_name" validate:"required"`
	Input     string `json:"input"`
}

// BatchOutcome pairs each batch item with its lookup result
type BatchOutcome struct {
	RowID     string              `json:"row_id"`
	FieldName string              `json:"field_name"`
	Result    models.LookupResult `json:"result"`
}

// BatchResult is the full outcome of a batch lookup. ReviewCandidates holds
// the fuzzy matches below the review threshold, ready to seed a review
// session.
type BatchResult struct {
	Outcomes         []BatchOutcome    `json:"outcomes"`
	ReviewCandidates []models.RawMatch `json:"review_candidates"`
}

// Service runs lookups against stored datasets, caching decoded rows in
// Redis between calls.
type Service struct {
	engine          *Engine
	rows            RowStore
	configs         ConfigStore
	cache           *redis.Client
	cacheTTL        time.Duration
	fuzzyThreshold  float64
	reviewThreshold float64
	logger          ectologger.Logger
}

// NewService creates a lookup service. cache may be nil to disable row
// caching. fuzzyThreshold applies to configs that leave the threshold unset.
func NewService(rows RowStore, configs ConfigStore, cache *redis.Client, cacheTTL time.Duration, fuzzyThreshold, reviewThreshold float64, logger ectologger.Logger) *Service {
	if fuzzyThreshold <= 0 || fuzzyThreshold > 1 {
		fuzzyThreshold = defaultFuzzyThreshold
	}
	if reviewThreshold <= 0 || reviewThreshold > 1 {
		reviewThreshold = defaultReviewThreshold
	}
	return &Service{
		engine:          NewEngine(),
		rows:            rows,
		configs:         configs,
		cache:           cache,
		cacheTTL:        cacheTTL,
		fuzzyThreshold:  fuzzyThreshold,
		reviewThreshold: reviewThreshold,
		logger:          logger,
	}
}

// withDefaults fills config fields the caller left unset
func (s *Service) withDefaults(cfg models.MatchConfig) models.MatchConfig {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = s.fuzzyThreshold
	}
	return cfg
}

// Lookup resolves one input against a dataset. A missing dataset yields an
// unmatched result rather than an error; callers that need existence checks
// go through the dataset repository.
func (s *Service) Lookup(ctx context.Context, tenantID, datasetID, input string, cfg models.MatchConfig) (models.LookupResult, error) {
	ctx, span := tracing.StartSpan(ctx, "lookup.Service.Lookup")
	defer span.End()

	start := time.Now()
	rows, err := s.referenceRows(ctx, tenantID, datasetID)
	if err != nil {
		return models.LookupResult{}, err
	}

	result := s.engine.Resolve(input, rows, s.withDefaults(cfg))

	metrics.LookupsTotal.WithLabelValues(tenantID, string(result.MatchType)).Inc()
	metrics.LookupDuration.WithLabelValues(tenantID).Observe(time.Since(start).Seconds())
	return result, nil
}

// LookupWithConfig resolves one input using a saved lookup config
func (s *Service) LookupWithConfig(ctx context.Context, tenantID, configID, input string) (models.LookupResult, error) {
	ctx, span := tracing.StartSpan(ctx, "lookup.Service.LookupWithConfig")
	defer span.End()

	config, err := s.configs.Get(ctx, tenantID, configID)
	if err != nil {
		return models.LookupResult{}, err
	}
	if config == nil {
		return models.LookupResult{}, fmt.Errorf("lookup config %s not found", configID)
	}

	return s.Lookup(ctx, tenantID, config.DatasetID, input, config.MatchConfig())
}

// LookupBatch resolves a batch of cells against one dataset, loading the
// rows once. Fuzzy matches below the review threshold are collected as
// review candidates in batch order.
func (s *Service) LookupBatch(ctx context.Context, tenantID, datasetID string, items []BatchItem, cfg models.MatchConfig) (*BatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "lookup.Service.LookupBatch")
	defer span.End()

	start := time.Now()
	rows, err := s.referenceRows(ctx, tenantID, datasetID)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{
		Outcomes:         make([]BatchOutcome, 0, len(items)),
		ReviewCandidates: make([]models.RawMatch, 0),
	}

	cfg = s.withDefaults(cfg)
	for _, item := range items {
		result := s.engine.Resolve(item.Input, rows, cfg)
		metrics.LookupsTotal.WithLabelValues(tenantID, string(result.MatchType)).Inc()

		batch.Outcomes = append(batch.Outcomes, BatchOutcome{
			RowID:     item.RowID,
			FieldName: item.FieldName,
			Result:    result,
		})

		if result.MatchType == models.MatchTypeFuzzy && result.Confidence < s.reviewThreshold {
			batch.ReviewCandidates = append(batch.ReviewCandidates, models.RawMatch{
				RowID:          item.RowID,
				FieldName:      item.FieldName,
				InputValue:     item.Input,
				SuggestedValue: result.MatchedValue.String(),
				Confidence:     result.Confidence,
			})
		}
	}

	metrics.LookupDuration.WithLabelValues(tenantID).Observe(time.Since(start).Seconds())
	return batch, nil
}

// InvalidateRows drops the cached rows for a dataset. Called after row
// replacement; a miss on the next lookup reloads from the store.
func (s *Service) InvalidateRows(ctx context.Context, tenantID, datasetID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, rowCacheKey(tenantID, datasetID)); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"dataset_id": datasetID,
		}).Warn("Failed to invalidate row cache")
	}
}

// referenceRows loads and decodes a dataset's rows, preferring the cache.
// Cache failures fall through to the store.
func (s *Service) referenceRows(ctx context.Context, tenantID, datasetID string) ([]models.ReferenceRow, error) {
	key := rowCacheKey(tenantID, datasetID)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var rows []models.ReferenceRow
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				metrics.RowCacheHits.WithLabelValues("hit").Inc()
				return rows, nil
			}
			s.logger.WithContext(ctx).WithError(err).Warn("Discarding corrupt row cache entry")
			_ = s.cache.Del(ctx, key)
		} else if !redis.IsMiss(err) {
			metrics.RowCacheHits.WithLabelValues("error").Inc()
			s.logger.WithContext(ctx).WithError(err).Warn("Row cache read failed")
		} else {
			metrics.RowCacheHits.WithLabelValues("miss").Inc()
		}
	}

	stored, err := s.rows.GetRows(ctx, tenantID, datasetID)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ReferenceRow, 0, len(stored))
	for _, row := range stored {
		rows = append(rows, row.Cells())
	}

	if s.cache != nil && len(rows) > 0 {
		if payload, err := json.Marshal(rows); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
				s.logger.WithContext(ctx).WithError(err).Warn("Row cache write failed")
			}
		}
	}

	return rows, nil
}

func rowCacheKey(tenantID, datasetID string) string {
	return fmt.Sprintf("aster:rows:%s:%s", tenantID, datasetID)
}
