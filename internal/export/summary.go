package export

import "leadgen-engine/internal/domain"

type Summary struct {
	Total          int     `json:"total"`
	Relevant       int     `json:"relevant"`
	MeanConfidence float64 `json:"mean_confidence"`
	WithEmail      int     `json:"with_email"`
	WithPhone      int     `json:"with_phone"`
}

func Summarize(set *domain.LeadSet) Summary {
	var s Summary
	var sum float64
	for _, r := range set.Records() {
		s.Total++
		if r.Relevance.IsRelevant {
			s.Relevant++
		}
		if r.Email != "" {
			s.WithEmail++
		}
		if r.Phone != "" {
			s.WithPhone++
		}
		sum += r.Relevance.Confidence
	}
	if s.Total > 0 {
		s.MeanConfidence = sum / float64(s.Total)
	}
	return s
}
