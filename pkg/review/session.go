// Package review implements the fuzzy match review workflow: a client-held
// state machine over a batch of low-confidence lookup results.
package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/aster/pkg/events"
	"github.com/Ramsey-B/aster/pkg/models"
)

// Session tracks the disposition of one batch of fuzzy matches. Matches are
// created once at load; status transitions are the only mutation until a
// ResetAll. Sessions are never persisted; discarding the session is the only
// cancellation primitive.
type Session struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`

	mu        sync.Mutex
	matches   []*models.FuzzyMatch
	index     map[string]*models.FuzzyMatch
	selection map[string]struct{}
	filter    models.ReviewFilter
	sink      events.Sink
}

// NewSession loads a batch of raw matches into a fresh review session.
// Match ids are assigned deterministically from (rowID, fieldName, ordinal)
// so reloading the same batch yields the same ids.
func NewSession(id, tenantID string, raw []models.RawMatch, sink events.Sink) *Session {
	if sink == nil {
		sink = events.NopSink{}
	}

	s := &Session{
		ID:        id,
		TenantID:  tenantID,
		CreatedAt: time.Now().UTC(),
		matches:   make([]*models.FuzzyMatch, 0, len(raw)),
		index:     make(map[string]*models.FuzzyMatch, len(raw)),
		selection: make(map[string]struct{}),
		sink:      sink,
	}

	for ordinal, rm := range raw {
		match := &models.FuzzyMatch{
			ID:             matchID(rm.RowID, rm.FieldName, ordinal),
			RowID:          rm.RowID,
			FieldName:      rm.FieldName,
			InputValue:     rm.InputValue,
			SuggestedValue: rm.SuggestedValue,
			Confidence:     rm.Confidence,
			Status:         models.ReviewStatusPending,
		}
		s.matches = append(s.matches, match)
		s.index[match.ID] = match
	}

	return s
}

func matchID(rowID, fieldName string, ordinal int) string {
	return fmt.Sprintf("%s:%s:%d", rowID, fieldName, ordinal)
}

// Accept marks a match accepted, keeping the suggested value unless an
// override is given. Unknown ids are no-ops.
func (s *Session) Accept(ctx context.Context, id string, value *string) {
	s.mu.Lock()
	match, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}

	match.Status = models.ReviewStatusAccepted
	if value != nil {
		match.ManualValue = value
	} else {
		v := match.SuggestedValue
		match.ManualValue = &v
	}
	accepted := match.ManualValue
	s.mu.Unlock()

	s.sink.Record(ctx, events.Decision{
		Kind:      events.KindAccept,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		MatchIDs:  []string{id},
		Value:     accepted,
	})
}

// Reject marks a match rejected. The manual value is left untouched.
// Unknown ids are no-ops.
func (s *Session) Reject(ctx context.Context, id string) {
	s.mu.Lock()
	match, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	match.Status = models.ReviewStatusRejected
	s.mu.Unlock()

	s.sink.Record(ctx, events.Decision{
		Kind:      events.KindReject,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		MatchIDs:  []string{id},
	})
}

// SetManualValue replaces the suggestion with an operator-provided value.
// Unknown ids are no-ops.
func (s *Session) SetManualValue(ctx context.Context, id string, value string) {
	s.mu.Lock()
	match, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	match.Status = models.ReviewStatusManual
	match.ManualValue = &value
	s.mu.Unlock()

	s.sink.Record(ctx, events.Decision{
		Kind:      events.KindManual,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		MatchIDs:  []string{id},
		Value:     &value,
	})
}

// ToggleSelection flips a match's membership in the selection set.
// Selection is independent of filter and status.
func (s *Session) ToggleSelection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.index[id]
	if !ok {
		return
	}

	if _, selected := s.selection[id]; selected {
		delete(s.selection, id)
		match.Selected = false
	} else {
		s.selection[id] = struct{}{}
		match.Selected = true
	}
}

// SelectAll replaces the selection with the pending matches satisfying
// criteria, or the current filter when criteria is nil. Non-pending matches
// are never selected.
func (s *Session) SelectAll(criteria *models.ReviewFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	filter := s.filter
	if criteria != nil {
		filter = *criteria
	}

	s.clearSelectionLocked()
	for _, match := range s.matches {
		if match.Status != models.ReviewStatusPending {
			continue
		}
		if !matchesFilter(match, filter) {
			continue
		}
		s.selection[match.ID] = struct{}{}
		match.Selected = true
	}
}

// ClearSelection empties the selection set
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelectionLocked()
}

func (s *Session) clearSelectionLocked() {
	for id := range s.selection {
		if match, ok := s.index[id]; ok {
			match.Selected = false
		}
		delete(s.selection, id)
	}
}

// AcceptSelected accepts every selected pending match in one transition,
// then clears the selection. One event, one stats recomputation.
func (s *Session) AcceptSelected(ctx context.Context, value *string) {
	s.mu.Lock()
	affected := make([]string, 0, len(s.selection))
	for _, match := range s.matches {
		if _, selected := s.selection[match.ID]; !selected {
			continue
		}
		if match.Status != models.ReviewStatusPending {
			continue
		}
		match.Status = models.ReviewStatusAccepted
		if value != nil {
			match.ManualValue = value
		} else {
			v := match.SuggestedValue
			match.ManualValue = &v
		}
		affected = append(affected, match.ID)
	}
	s.clearSelectionLocked()
	s.mu.Unlock()

	if len(affected) == 0 {
		return
	}

	s.sink.Record(ctx, events.Decision{
		Kind:      events.KindBatchAccept,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		MatchIDs:  affected,
		Value:     value,
	})
}

// RejectSelected rejects every selected pending match in one transition,
// then clears the selection.
func (s *Session) RejectSelected(ctx context.Context) {
	s.mu.Lock()
	affected := make([]string, 0, len(s.selection))
	for _, match := range s.matches {
		if _, selected := s.selection[match.ID]; !selected {
			continue
		}
		if match.Status != models.ReviewStatusPending {
			continue
		}
		match.Status = models.ReviewStatusRejected
		affected = append(affected, match.ID)
	}
	s.clearSelectionLocked()
	s.mu.Unlock()

	if len(affected) == 0 {
		return
	}

	s.sink.Record(ctx, events.Decision{
		Kind:      events.KindBatchReject,
		TenantID:  s.TenantID,
		SessionID: s.ID,
		MatchIDs:  affected,
	})
}

// UpdateFilter merges a partial filter into the current one. The selection
// is cleared; stale selections across a filter change are discarded rather
// than silently retained.
func (s *Session) UpdateFilter(patch models.ReviewFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.ConfidenceRange != nil {
		s.filter.ConfidenceRange = patch.ConfidenceRange
	}
	if patch.FieldName != nil {
		s.filter.FieldName = patch.FieldName
	}
	if patch.Statuses != nil {
		s.filter.Statuses = patch.Statuses
	}
	if patch.SearchTerm != nil {
		s.filter.SearchTerm = patch.SearchTerm
	}

	s.clearSelectionLocked()
}

// ResetAll returns every match to pending, clears manual values and the
// selection. The only way back from a terminal status.
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, match := range s.matches {
		match.Status = models.ReviewStatusPending
		match.ManualValue = nil
	}
	s.clearSelectionLocked()
}

// Filter returns the current filter state
func (s *Session) Filter() models.ReviewFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Matches returns a snapshot of all matches in creation order
func (s *Session) Matches() []models.FuzzyMatch {
	s.mu.Lock()
	defer s.mu.Unlock()

	return ectolinq.Map(s.matches, func(match *models.FuzzyMatch) models.FuzzyMatch {
		return *match
	})
}

// SelectedIDs returns the ids currently selected
func (s *Session) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.selection))
	for _, match := range s.matches {
		if _, ok := s.selection[match.ID]; ok {
			out = append(out, match.ID)
		}
	}
	return out
}

// HasChanges reports whether any match has left pending
func (s *Session) HasChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, match := range s.matches {
		if match.Status != models.ReviewStatusPending {
			return true
		}
	}
	return false
}

// IsComplete reports whether no match remains pending
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, match := range s.matches {
		if match.Status == models.ReviewStatusPending {
			return false
		}
	}
	return true
}

// CanBatchOperate reports whether the selection is non-empty
func (s *Session) CanBatchOperate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selection) > 0
}
