package domain

// RelevanceAssessment is the evaluator's verdict on one candidate.
// Confidence is always in [0,1].
type RelevanceAssessment struct {
	IsRelevant bool    `json:"is_relevant"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// FailClosed is the assessment used whenever the model's answer can't be
// trusted.
func FailClosed(reason string) RelevanceAssessment {
	if reason == "" {
		reason = "evaluation failed"
	}
	return RelevanceAssessment{IsRelevant: false, Confidence: 0, Reason: reason}
}

func (a RelevanceAssessment) Valid() bool {
	return a.Confidence >= 0 && a.Confidence <= 1
}
