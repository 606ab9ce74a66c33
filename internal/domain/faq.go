package domain

// SatisfactionTotals sums the feedback signals of FAQ questions.
type SatisfactionTotals struct {
	Satisfaction    int64
	Dissatisfaction int64
}
