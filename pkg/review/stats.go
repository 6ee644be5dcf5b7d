package review

import (
	"github.com/Ramsey-B/aster/pkg/models"
)

// bucketBounds are the fixed confidence bands reported in session stats.
// All bands are inclusive of both ends; assignment walks top-down so a
// boundary value lands in the higher band.
var bucketBounds = [5]struct {
	label    string
	min, max float64
}{
	{"0.9-1.0", 0.9, 1.0},
	{"0.8-0.9", 0.8, 0.9},
	{"0.7-0.8", 0.7, 0.8},
	{"0.6-0.7", 0.6, 0.7},
	{"0.0-0.6", 0.0, 0.6},
}

// Stats recomputes aggregate counts from current state. The four status
// counts always sum to the total.
func (s *Session) Stats() models.ReviewStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.ReviewStats{
		TotalMatches:           len(s.matches),
		ConfidenceDistribution: make([]models.ConfidenceBucket, len(bucketBounds)),
	}
	for i, bound := range bucketBounds {
		stats.ConfidenceDistribution[i] = models.ConfidenceBucket{
			Label: bound.label,
			Min:   bound.min,
			Max:   bound.max,
		}
	}

	for _, match := range s.matches {
		switch match.Status {
		case models.ReviewStatusAccepted:
			stats.Accepted++
		case models.ReviewStatusRejected:
			stats.Rejected++
		case models.ReviewStatusManual:
			stats.Manual++
		default:
			stats.Pending++
		}

		stats.ConfidenceDistribution[bucketIndex(match.Confidence)].Count++
	}

	if stats.TotalMatches > 0 {
		reviewed := stats.TotalMatches - stats.Pending
		stats.Progress = float64(reviewed) / float64(stats.TotalMatches) * 100
	}

	return stats
}

func bucketIndex(confidence float64) int {
	for i, bound := range bucketBounds {
		if confidence >= bound.min {
			return i
		}
	}
	return len(bucketBounds) - 1
}
