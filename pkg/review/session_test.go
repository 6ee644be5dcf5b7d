package review

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
)

// recordingSink captures decisions for assertions
type recordingSink struct {
	decisions []events.Decision
}

func (r *recordingSink) Record(_ context.Context, decision events.Decision) {
	r.decisions = append(r.decisions, decision)
}

func rawMatches() []models.RawMatch {
	return []models.RawMatch{
		{RowID: "row-1", FieldName: "department", InputValue: "Enginering", SuggestedValue: "Engineering", Confidence: 0.9},
		{RowID: "row-2", FieldName: "department", InputValue: "Marketting", SuggestedValue: "Marketing", Confidence: 0.75},
		{RowID: "row-3", FieldName: "country", InputValue: "Grmany", SuggestedValue: "Germany", Confidence: 0.85},
	}
}

func newTestSession(sink events.Sink) *Session {
	return NewSession("session-1", "tenant-1", rawMatches(), sink)
}

func TestSessionCreation(t *testing.T) {
	t.Run("should load all matches as pending", func(t *testing.T) {
		session := newTestSession(nil)

		matches := session.Matches()
		require.Len(t, matches, 3)
		for _, match := range matches {
			assert.Equal(t, models.ReviewStatusPending, match.Status)
			assert.Nil(t, match.ManualValue)
			assert.False(t, match.Selected)
		}
	})

	t.Run("should assign deterministic ids", func(t *testing.T) {
		first := newTestSession(nil).Matches()
		second := newTestSession(nil).Matches()

		require.Len(t, first, len(second))
		for i := range first {
			assert.Equal(t, first[i].ID, second[i].ID)
		}
		assert.Equal(t, "row-1:department:0", first[0].ID)
	})
}

func TestSessionTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("should accept with the suggested value by default", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)
		id := session.Matches()[0].ID

		session.Accept(ctx, id, nil)

		match := session.Matches()[0]
		assert.Equal(t, models.ReviewStatusAccepted, match.Status)
		require.NotNil(t, match.ManualValue)
		assert.Equal(t, "Engineering", *match.ManualValue)

		require.Len(t, sink.decisions, 1)
		assert.Equal(t, events.KindAccept, sink.decisions[0].Kind)
		assert.Equal(t, []string{id}, sink.decisions[0].MatchIDs)
	})

	t.Run("should accept with an override value", func(t *testing.T) {
		session := newTestSession(nil)
		id := session.Matches()[0].ID
		override := "Platform Engineering"

		session.Accept(ctx, id, &override)

		match := session.Matches()[0]
		assert.Equal(t, models.ReviewStatusAccepted, match.Status)
		assert.Equal(t, "Platform Engineering", *match.ManualValue)
	})

	t.Run("should reject without touching the manual value", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)
		id := session.Matches()[1].ID

		session.Reject(ctx, id)

		match := session.Matches()[1]
		assert.Equal(t, models.ReviewStatusRejected, match.Status)
		assert.Nil(t, match.ManualValue)
		require.Len(t, sink.decisions, 1)
		assert.Equal(t, events.KindReject, sink.decisions[0].Kind)
	})

	t.Run("should set a manual value", func(t *testing.T) {
		session := newTestSession(nil)
		id := session.Matches()[2].ID

		session.SetManualValue(ctx, id, "Deutschland")

		match := session.Matches()[2]
		assert.Equal(t, models.ReviewStatusManual, match.Status)
		assert.Equal(t, "Deutschland", *match.ManualValue)
	})

	t.Run("should ignore unknown ids", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)

		session.Accept(ctx, "nope", nil)
		session.Reject(ctx, "nope")
		session.SetManualValue(ctx, "nope", "x")
		session.ToggleSelection("nope")

		assert.Empty(t, sink.decisions)
		for _, match := range session.Matches() {
			assert.Equal(t, models.ReviewStatusPending, match.Status)
		}
	})

	t.Run("should allow redeciding a terminal match", func(t *testing.T) {
		session := newTestSession(nil)
		id := session.Matches()[0].ID

		session.Accept(ctx, id, nil)
		session.Reject(ctx, id)

		assert.Equal(t, models.ReviewStatusRejected, session.Matches()[0].Status)
	})

	t.Run("should keep the status sum equal to the total", func(t *testing.T) {
		session := newTestSession(nil)
		ids := session.Matches()

		session.Accept(ctx, ids[0].ID, nil)
		session.Reject(ctx, ids[1].ID)

		stats := session.Stats()
		assert.Equal(t, stats.TotalMatches, stats.Accepted+stats.Rejected+stats.Manual+stats.Pending)
		assert.Equal(t, 1, stats.Accepted)
		assert.Equal(t, 1, stats.Rejected)
		assert.Equal(t, 1, stats.Pending)
	})

	t.Run("should handle concurrent decisions on the same match", func(t *testing.T) {
		session := newTestSession(nil)
		id := session.Matches()[0].ID

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				session.Accept(ctx, id, nil)
				session.SetManualValue(ctx, id, "override")
			}()
		}
		wg.Wait()

		match := session.Matches()[0]
		require.NotNil(t, match.ManualValue)
		assert.Contains(t, []models.ReviewStatus{models.ReviewStatusAccepted, models.ReviewStatusManual}, match.Status)

		stats := session.Stats()
		assert.Equal(t, stats.TotalMatches, stats.Accepted+stats.Rejected+stats.Manual+stats.Pending)
	})
}

func TestSessionSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("should toggle selection membership", func(t *testing.T) {
		session := newTestSession(nil)
		id := session.Matches()[0].ID

		session.ToggleSelection(id)
		assert.Equal(t, []string{id}, session.SelectedIDs())
		assert.True(t, session.CanBatchOperate())

		session.ToggleSelection(id)
		assert.Empty(t, session.SelectedIDs())
		assert.False(t, session.CanBatchOperate())
	})

	t.Run("should select all pending matches under criteria", func(t *testing.T) {
		session := newTestSession(nil)
		field := "department"

		session.SelectAll(&models.ReviewFilter{FieldName: &field})

		assert.Len(t, session.SelectedIDs(), 2)
	})

	t.Run("should never select non-pending matches", func(t *testing.T) {
		session := newTestSession(nil)
		session.Accept(ctx, session.Matches()[0].ID, nil)

		session.SelectAll(nil)

		assert.Len(t, session.SelectedIDs(), 2)
	})

	t.Run("should batch accept only the selected pending matches", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)
		ids := session.Matches()

		// One selected match is already rejected
		session.Reject(ctx, ids[1].ID)
		session.ToggleSelection(ids[0].ID)
		session.ToggleSelection(ids[1].ID)
		sink.decisions = nil

		session.AcceptSelected(ctx, nil)

		matches := session.Matches()
		assert.Equal(t, models.ReviewStatusAccepted, matches[0].Status)
		assert.Equal(t, models.ReviewStatusRejected, matches[1].Status)
		assert.Equal(t, models.ReviewStatusPending, matches[2].Status)
		assert.Empty(t, session.SelectedIDs())

		// One event for the whole batch, covering only the applied ids
		require.Len(t, sink.decisions, 1)
		assert.Equal(t, events.KindBatchAccept, sink.decisions[0].Kind)
		assert.Equal(t, []string{ids[0].ID}, sink.decisions[0].MatchIDs)
	})

	t.Run("should batch reject the selection", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)

		session.SelectAll(nil)
		sink.decisions = nil
		session.RejectSelected(ctx)

		for _, match := range session.Matches() {
			assert.Equal(t, models.ReviewStatusRejected, match.Status)
		}
		assert.Empty(t, session.SelectedIDs())
		require.Len(t, sink.decisions, 1)
		assert.Equal(t, events.KindBatchReject, sink.decisions[0].Kind)
	})

	t.Run("should emit nothing for an empty batch", func(t *testing.T) {
		sink := &recordingSink{}
		session := newTestSession(sink)

		session.AcceptSelected(ctx, nil)
		session.RejectSelected(ctx)

		assert.Empty(t, sink.decisions)
	})

	t.Run("should clear the selection on filter change", func(t *testing.T) {
		session := newTestSession(nil)
		session.SelectAll(nil)
		require.NotEmpty(t, session.SelectedIDs())

		field := "country"
		session.UpdateFilter(models.ReviewFilter{FieldName: &field})

		assert.Empty(t, session.SelectedIDs())
	})
}

func TestSessionFilter(t *testing.T) {
	t.Run("should filter by inclusive confidence range and sort descending", func(t *testing.T) {
		session := newTestSession(nil)
		session.UpdateFilter(models.ReviewFilter{ConfidenceRange: &[2]float64{0.8, 1.0}})

		matches := session.FilteredMatches()
		require.Len(t, matches, 2)
		assert.Equal(t, 0.9, matches[0].Confidence)
		assert.Equal(t, 0.85, matches[1].Confidence)
	})

	t.Run("should include matches on the range boundary", func(t *testing.T) {
		session := newTestSession(nil)
		session.UpdateFilter(models.ReviewFilter{ConfidenceRange: &[2]float64{0.75, 0.9}})

		assert.Len(t, session.FilteredMatches(), 3)
	})

	t.Run("should filter by field name", func(t *testing.T) {
		session := newTestSession(nil)
		field := "country"
		session.UpdateFilter(models.ReviewFilter{FieldName: &field})

		matches := session.FilteredMatches()
		require.Len(t, matches, 1)
		assert.Equal(t, "row-3", matches[0].RowID)
	})

	t.Run("should filter by status", func(t *testing.T) {
		session := newTestSession(nil)
		session.Accept(context.Background(), session.Matches()[0].ID, nil)
		session.UpdateFilter(models.ReviewFilter{Statuses: []models.ReviewStatus{models.ReviewStatusAccepted}})

		matches := session.FilteredMatches()
		require.Len(t, matches, 1)
		assert.Equal(t, models.ReviewStatusAccepted, matches[0].Status)
	})

	t.Run("should search input suggested and manual values case-insensitively", func(t *testing.T) {
		session := newTestSession(nil)
		term := "engineer"
		session.UpdateFilter(models.ReviewFilter{SearchTerm: &term})
		assert.Len(t, session.FilteredMatches(), 1)

		session.SetManualValue(context.Background(), session.Matches()[2].ID, "West Germany Engineering")
		assert.Len(t, session.FilteredMatches(), 2)
	})

	t.Run("should merge partial filter updates", func(t *testing.T) {
		session := newTestSession(nil)
		field := "department"
		session.UpdateFilter(models.ReviewFilter{FieldName: &field})
		session.UpdateFilter(models.ReviewFilter{ConfidenceRange: &[2]float64{0.8, 1.0}})

		filter := session.Filter()
		require.NotNil(t, filter.FieldName)
		assert.Equal(t, "department", *filter.FieldName)
		require.NotNil(t, filter.ConfidenceRange)

		matches := session.FilteredMatches()
		require.Len(t, matches, 1)
		assert.Equal(t, "row-1", matches[0].RowID)
	})

	t.Run("should break confidence ties by field name", func(t *testing.T) {
		session := NewSession("s", "t", []models.RawMatch{
			{RowID: "r1", FieldName: "zeta", SuggestedValue: "a", Confidence: 0.8},
			{RowID: "r2", FieldName: "alpha", SuggestedValue: "b", Confidence: 0.8},
		}, nil)

		matches := session.FilteredMatches()
		require.Len(t, matches, 2)
		assert.Equal(t, "alpha", matches[0].FieldName)
		assert.Equal(t, "zeta", matches[1].FieldName)
	})
}

func TestSessionReset(t *testing.T) {
	ctx := context.Background()

	t.Run("should return every match to pending and clear manual values", func(t *testing.T) {
		session := newTestSession(nil)
		ids := session.Matches()

		session.Accept(ctx, ids[0].ID, nil)
		session.SetManualValue(ctx, ids[1].ID, "custom")
		session.ToggleSelection(ids[2].ID)
		assert.True(t, session.HasChanges())

		session.ResetAll()

		for _, match := range session.Matches() {
			assert.Equal(t, models.ReviewStatusPending, match.Status)
			assert.Nil(t, match.ManualValue)
		}
		assert.Empty(t, session.SelectedIDs())
		assert.False(t, session.HasChanges())
	})

	t.Run("should keep the filter across a reset", func(t *testing.T) {
		session := newTestSession(nil)
		field := "department"
		session.UpdateFilter(models.ReviewFilter{FieldName: &field})

		session.ResetAll()

		require.NotNil(t, session.Filter().FieldName)
		assert.Equal(t, "department", *session.Filter().FieldName)
	})

	t.Run("should be idempotent", func(t *testing.T) {
		session := newTestSession(nil)
		session.ResetAll()
		session.ResetAll()

		stats := session.Stats()
		assert.Equal(t, 3, stats.Pending)
		assert.Equal(t, 3, stats.TotalMatches)
	})
}

func TestSessionCompletion(t *testing.T) {
	ctx := context.Background()

	t.Run("should report completion once nothing is pending", func(t *testing.T) {
		session := newTestSession(nil)
		assert.False(t, session.IsComplete())

		for _, match := range session.Matches() {
			session.Accept(ctx, match.ID, nil)
		}

		assert.True(t, session.IsComplete())
	})
}
