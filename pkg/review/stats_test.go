package review

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/aster/pkg/models"
)

func TestSessionStats(t *testing.T) {
	ctx := context.Background()

	t.Run("should report zero progress for an untouched session", func(t *testing.T) {
		session := newTestSession(nil)

		stats := session.Stats()
		assert.Equal(t, 3, stats.TotalMatches)
		assert.Equal(t, 3, stats.Pending)
		assert.Equal(t, 0.0, stats.Progress)
	})

	t.Run("should track progress as matches are reviewed", func(t *testing.T) {
		session := newTestSession(nil)
		ids := session.Matches()

		session.Accept(ctx, ids[0].ID, nil)
		assert.InDelta(t, 33.33, session.Stats().Progress, 0.1)

		session.Reject(ctx, ids[1].ID)
		session.SetManualValue(ctx, ids[2].ID, "value")
		assert.Equal(t, 100.0, session.Stats().Progress)
	})

	t.Run("should always report the five fixed buckets", func(t *testing.T) {
		session := newTestSession(nil)

		buckets := session.Stats().ConfidenceDistribution
		require.Len(t, buckets, 5)
		assert.Equal(t, "0.9-1.0", buckets[0].Label)
		assert.Equal(t, "0.0-0.6", buckets[4].Label)
	})

	t.Run("should place boundary confidences in the higher bucket", func(t *testing.T) {
		session := NewSession("s", "t", []models.RawMatch{
			{RowID: "r1", FieldName: "f", Confidence: 0.9},
			{RowID: "r2", FieldName: "f", Confidence: 0.8},
			{RowID: "r3", FieldName: "f", Confidence: 0.79},
			{RowID: "r4", FieldName: "f", Confidence: 0.6},
			{RowID: "r5", FieldName: "f", Confidence: 0.3},
			{RowID: "r6", FieldName: "f", Confidence: 0.0},
		}, nil)

		buckets := session.Stats().ConfidenceDistribution
		assert.Equal(t, 1, buckets[0].Count) // 0.9
		assert.Equal(t, 1, buckets[1].Count) // 0.8
		assert.Equal(t, 1, buckets[2].Count) // 0.79
		assert.Equal(t, 1, buckets[3].Count) // 0.6
		assert.Equal(t, 2, buckets[4].Count) // 0.3 and 0.0
	})

	t.Run("should keep bucket counts stable across status changes", func(t *testing.T) {
		session := newTestSession(nil)
		before := session.Stats().ConfidenceDistribution

		session.Accept(ctx, session.Matches()[0].ID, nil)
		after := session.Stats().ConfidenceDistribution

		for i := range before {
			assert.Equal(t, before[i].Count, after[i].Count)
		}
	})

	t.Run("should handle an empty session", func(t *testing.T) {
		session := NewSession("s", "t", nil, nil)

		stats := session.Stats()
		assert.Equal(t, 0, stats.TotalMatches)
		assert.Equal(t, 0.0, stats.Progress)
		assert.True(t, session.IsComplete())
	})
}

func TestManager(t *testing.T) {
	t.Run("should scope sessions to their tenant", func(t *testing.T) {
		manager := NewManager(nil)
		session := manager.Create("tenant-1", rawMatches())

		assert.NotNil(t, manager.Get("tenant-1", session.ID))
		assert.Nil(t, manager.Get("tenant-2", session.ID))
		assert.Nil(t, manager.Get("tenant-1", "unknown"))
	})

	t.Run("should list only the tenant's sessions", func(t *testing.T) {
		manager := NewManager(nil)
		manager.Create("tenant-1", rawMatches())
		manager.Create("tenant-1", rawMatches())
		manager.Create("tenant-2", rawMatches())

		assert.Len(t, manager.List("tenant-1"), 2)
		assert.Len(t, manager.List("tenant-2"), 1)
	})

	t.Run("should delete only under the owning tenant", func(t *testing.T) {
		manager := NewManager(nil)
		session := manager.Create("tenant-1", rawMatches())

		manager.Delete("tenant-2", session.ID)
		assert.NotNil(t, manager.Get("tenant-1", session.ID))

		manager.Delete("tenant-1", session.ID)
		assert.Nil(t, manager.Get("tenant-1", session.ID))
	})
}
