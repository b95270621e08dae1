package security_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/clawsetup/internal/security"
)

func TestComputeScoreAndLabel(testInstance *testing.T) {
	testCases := []struct {
		name          string
		summary       security.AuditSummary
		expectedScore int
		expectedLabel string
	}{
		{name: "clean", summary: security.AuditSummary{}, expectedScore: 100, expectedLabel: security.LabelGood},
		{name: "one_critical", summary: security.AuditSummary{Critical: 1}, expectedScore: 75, expectedLabel: security.LabelReviewRecommended},
		{name: "floor_saturation", summary: security.AuditSummary{Critical: 4}, expectedScore: 1, expectedLabel: security.LabelActionNeeded},
		{name: "review_boundary_inclusive", summary: security.AuditSummary{Warn: 10}, expectedScore: 50, expectedLabel: security.LabelReviewRecommended},
		{name: "below_review_boundary", summary: security.AuditSummary{Warn: 11}, expectedScore: 45, expectedLabel: security.LabelActionNeeded},
		{name: "good_boundary_inclusive", summary: security.AuditSummary{Warn: 4}, expectedScore: 80, expectedLabel: security.LabelGood},
		{name: "info_weight", summary: security.AuditSummary{Info: 21}, expectedScore: 79, expectedLabel: security.LabelReviewRecommended},
		{name: "mixed", summary: security.AuditSummary{Critical: 1, Warn: 2, Info: 3}, expectedScore: 62, expectedLabel: security.LabelReviewRecommended},
		{name: "huge_counts_do_not_overflow", summary: security.AuditSummary{Critical: math.MaxInt, Warn: math.MaxInt, Info: math.MaxInt}, expectedScore: 1, expectedLabel: security.LabelActionNeeded},
		{name: "negative_counts_ignored", summary: security.AuditSummary{Critical: -3, Warn: -1}, expectedScore: 100, expectedLabel: security.LabelGood},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			score := security.ComputeScore(testCase.summary)
			require.Equal(testInstance, testCase.expectedScore, score)
			require.Equal(testInstance, testCase.expectedLabel, security.ScoreLabel(score))
		})
	}
}

func TestComputeScoreStaysInRange(testInstance *testing.T) {
	for critical := 0; critical <= 6; critical++ {
		for warn := 0; warn <= 25; warn++ {
			for info := 0; info <= 120; info += 7 {
				score := security.ComputeScore(security.AuditSummary{Critical: critical, Warn: warn, Info: info})
				require.GreaterOrEqual(testInstance, score, 1)
				require.LessOrEqual(testInstance, score, 100)
			}
		}
	}
}
