package scoring

import "quiz-attempt-service/internal/domain"

// Statistics aggregates a result history for dashboard display.
type Statistics struct {
	TotalAttempts     int     `json:"totalAttempts"`
	AverageScore      float64 `json:"averageScore"`
	AveragePercentage float64 `json:"averagePercentage"`
	AverageTimeSpent  float64 `json:"averageTimeSpent"`
	PassRate          float64 `json:"passRate"`
}

// DefaultPassingScore applies when a quiz does not configure its own threshold.
const DefaultPassingScore = 70.0

// ComputeStatistics summarizes stored results against a passing threshold.
// A non-positive threshold falls back to DefaultPassingScore. Empty input
// yields the zero Statistics.
func ComputeStatistics(results []domain.QuizResult, passingScore float64) Statistics {
	if len(results) == 0 {
		return Statistics{}
	}
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	var scoreSum, timeSum int64
	var pctSum float64
	passed := 0
	for _, r := range results {
		scoreSum += int64(r.Score)
		pctSum += r.Percentage
		timeSum += r.TimeSpent
		if r.Percentage >= passingScore {
			passed++
		}
	}

	n := float64(len(results))
	return Statistics{
		TotalAttempts:     len(results),
		AverageScore:      float64(scoreSum) / n,
		AveragePercentage: pctSum / n,
		AverageTimeSpent:  float64(timeSum) / n,
		PassRate:          float64(passed) / n * 100,
	}
}
