package review

import (
	"sort"
	"strings"

	"github.com/Gobusters/ectolinq"

	"github.com/Ramsey-B/aster/pkg/models"
)

// FilteredMatches returns the matches satisfying the session's current
// filter, sorted by confidence descending with field name as the tiebreak.
func (s *Session) FilteredMatches() []models.FuzzyMatch {
	s.mu.Lock()
	filter := s.filter
	snapshot := make([]models.FuzzyMatch, 0, len(s.matches))
	for _, match := range s.matches {
		if matchesFilter(match, filter) {
			snapshot = append(snapshot, *match)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		if snapshot[i].Confidence != snapshot[j].Confidence {
			return snapshot[i].Confidence > snapshot[j].Confidence
		}
		if snapshot[i].FieldName != snapshot[j].FieldName {
			return snapshot[i].FieldName < snapshot[j].FieldName
		}
		return snapshot[i].ID < snapshot[j].ID
	})

	return snapshot
}

// matchesFilter applies every set criterion conjunctively. An empty filter
// matches everything.
func matchesFilter(match *models.FuzzyMatch, filter models.ReviewFilter) bool {
	if filter.ConfidenceRange != nil {
		low, high := filter.ConfidenceRange[0], filter.ConfidenceRange[1]
		if match.Confidence < low || match.Confidence > high {
			return false
		}
	}

	if filter.FieldName != nil && match.FieldName != *filter.FieldName {
		return false
	}

	if len(filter.Statuses) > 0 && !ectolinq.Contains(filter.Statuses, match.Status) {
		return false
	}

	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		term := strings.ToLower(*filter.SearchTerm)
		if !strings.Contains(strings.ToLower(match.InputValue), term) &&
			!strings.Contains(strings.ToLower(match.SuggestedValue), term) &&
			!(match.ManualValue != nil && strings.Contains(strings.ToLower(*match.ManualValue), term)) {
			return false
		}
	}

	return true
}
