package security

const (
	// LabelGood marks scores of 80 and above.
	LabelGood = "Good"
	// LabelReviewRecommended marks scores from 50 to 79.
	LabelReviewRecommended = "Review recommended"
	// LabelActionNeeded marks scores below 50.
	LabelActionNeeded = "Action needed"

	maximumScoreConstant    = 100
	minimumScoreConstant    = 1
	goodThresholdConstant   = 80
	reviewThresholdConstant = 50
	criticalWeightConstant  = 25
	warnWeightConstant      = 5
	infoWeightConstant      = 1
	saturatedCountConstant  = maximumScoreConstant
)

// ComputeScore maps finding counts onto the 1..100 range. Any count large enough to
// drive the score to the floor is saturated so the weighted sum cannot overflow.
func ComputeScore(summary AuditSummary) int {
	penalty := saturateCount(summary.Critical)*criticalWeightConstant +
		saturateCount(summary.Warn)*warnWeightConstant +
		saturateCount(summary.Info)*infoWeightConstant

	score := maximumScoreConstant - penalty
	if score < minimumScoreConstant {
		return minimumScoreConstant
	}
	if score > maximumScoreConstant {
		return maximumScoreConstant
	}
	return score
}

// ScoreLabel returns the human label for a score.
func ScoreLabel(score int) string {
	switch {
	case score >= goodThresholdConstant:
		return LabelGood
	case score >= reviewThresholdConstant:
		return LabelReviewRecommended
	default:
		return LabelActionNeeded
	}
}

func saturateCount(count int) int {
	if count < 0 {
		return 0
	}
	if count > saturatedCountConstant {
		return saturatedCountConstant
	}
	return count
}
