package lookup

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/aster/pkg/logging"
	"github.com/Ramsey-B/aster/pkg/models"
)

type fakeRowStore struct {
	rows  map[string][]models.DatasetRow
	calls int
}

func (f *fakeRowStore) GetRows(_ context.Context, _, datasetID string) ([]models.DatasetRow, error) {
	f.calls++
	return f.rows[datasetID], nil
}

type fakeConfigStore struct {
	configs map[string]*models.LookupConfig
}

func (f *fakeConfigStore) Get(_ context.Context, _, id string) (*models.LookupConfig, error) {
	return f.configs[id], nil
}

func storedRow(t *testing.T, data map[string]any) models.DatasetRow {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return models.DatasetRow{Data: raw}
}

func newTestService(t *testing.T, rows *fakeRowStore, configs *fakeConfigStore) *Service {
	t.Helper()
	logger, _, err := logging.New(logging.Config{Level: "error"})
	require.NoError(t, err)
	return NewService(rows, configs, nil, 0, 0.6, 0.95, logger)
}

func TestServiceLookup(t *testing.T) {
	ctx := context.Background()

	rows := &fakeRowStore{rows: map[string][]models.DatasetRow{
		"ds-1": {
			storedRow(t, map[string]any{"name": "Engineering", "code": "ENG"}),
			storedRow(t, map[string]any{"name": "Marketing", "code": "MKT"}),
		},
	}}
	svc := newTestService(t, rows, &fakeConfigStore{})

	cfg := models.MatchConfig{SourceColumn: "name", TargetColumn: "code", FuzzyThreshold: 0.6}

	t.Run("should resolve against stored rows", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "tenant-1", "ds-1", "Engineering", cfg)

		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.Equal(t, "ENG", result.MatchedValue.String())
	})

	t.Run("should apply the service fuzzy threshold when the config leaves it unset", func(t *testing.T) {
		logger, _, err := logging.New(logging.Config{Level: "error"})
		require.NoError(t, err)
		strict := NewService(rows, &fakeConfigStore{}, nil, 0, 0.99, 0.95, logger)

		open := models.MatchConfig{SourceColumn: "name", TargetColumn: "code"}

		result, err := strict.Lookup(ctx, "tenant-1", "ds-1", "Marketting", open)
		require.NoError(t, err)
		assert.Equal(t, models.MatchTypeNone, result.MatchType)

		result, err = svc.Lookup(ctx, "tenant-1", "ds-1", "Marketting", open)
		require.NoError(t, err)
		assert.Equal(t, models.MatchTypeFuzzy, result.MatchType)
	})

	t.Run("should return unmatched for an unknown dataset", func(t *testing.T) {
		result, err := svc.Lookup(ctx, "tenant-1", "missing", "Engineering", cfg)

		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Equal(t, models.MatchTypeNone, result.MatchType)
	})

	t.Run("should resolve through a saved config", func(t *testing.T) {
		configs := &fakeConfigStore{configs: map[string]*models.LookupConfig{
			"cfg-1": {
				ID:             "cfg-1",
				DatasetID:      "ds-1",
				SourceColumn:   "name",
				TargetColumn:   "code",
				FuzzyThreshold: 0.6,
			},
		}}
		svc := newTestService(t, rows, configs)

		result, err := svc.LookupWithConfig(ctx, "tenant-1", "cfg-1", "Marketing")
		require.NoError(t, err)
		assert.Equal(t, "MKT", result.MatchedValue.String())
	})

	t.Run("should error for an unknown saved config", func(t *testing.T) {
		_, err := svc.LookupWithConfig(ctx, "tenant-1", "missing", "Marketing")
		assert.Error(t, err)
	})
}

func TestServiceLookupBatch(t *testing.T) {
	ctx := context.Background()

	rows := &fakeRowStore{rows: map[string][]models.DatasetRow{
		"ds-1": {
			storedRow(t, map[string]any{"name": "Engineering", "code": "ENG"}),
			storedRow(t, map[string]any{"name": "Marketing", "code": "MKT"}),
			storedRow(t, map[string]any{"name": "Operations", "code": "OPS"}),
		},
	}}
	cfg := models.MatchConfig{SourceColumn: "name", TargetColumn: "code", FuzzyThreshold: 0.6}

	t.Run("should resolve every item and load rows once", func(t *testing.T) {
		store := &fakeRowStore{rows: rows.rows}
		svc := newTestService(t, store, &fakeConfigStore{})

		batch, err := svc.LookupBatch(ctx, "tenant-1", "ds-1", []BatchItem{
			{RowID: "r1", FieldName: "department", Input: "Engineering"},
			{RowID: "r2", FieldName: "department", Input: "Marketting"},
			{RowID: "r3", FieldName: "department", Input: "Unknown Dept"},
		}, cfg)

		require.NoError(t, err)
		require.Len(t, batch.Outcomes, 3)
		assert.Equal(t, 1, store.calls)

		assert.Equal(t, models.MatchTypeExact, batch.Outcomes[0].Result.MatchType)
		assert.Equal(t, models.MatchTypeFuzzy, batch.Outcomes[1].Result.MatchType)
		assert.False(t, batch.Outcomes[2].Result.Matched)
	})

	t.Run("should collect fuzzy matches below the review threshold", func(t *testing.T) {
		svc := newTestService(t, rows, &fakeConfigStore{})

		batch, err := svc.LookupBatch(ctx, "tenant-1", "ds-1", []BatchItem{
			{RowID: "r1", FieldName: "department", Input: "Engineering"},
			{RowID: "r2", FieldName: "department", Input: "Marketting"},
		}, cfg)

		require.NoError(t, err)
		require.Len(t, batch.ReviewCandidates, 1)

		candidate := batch.ReviewCandidates[0]
		assert.Equal(t, "r2", candidate.RowID)
		assert.Equal(t, "department", candidate.FieldName)
		assert.Equal(t, "Marketting", candidate.InputValue)
		assert.Equal(t, "MKT", candidate.SuggestedValue)
		assert.Equal(t, batch.Outcomes[1].Result.Confidence, candidate.Confidence)
	})

	t.Run("should not flag exact or normalized matches for review", func(t *testing.T) {
		svc := newTestService(t, rows, &fakeConfigStore{})

		batch, err := svc.LookupBatch(ctx, "tenant-1", "ds-1", []BatchItem{
			{RowID: "r1", FieldName: "department", Input: "engineering"},
			{RowID: "r2", FieldName: "department", Input: "MARKETING"},
		}, cfg)

		require.NoError(t, err)
		assert.Empty(t, batch.ReviewCandidates)
	})
}
