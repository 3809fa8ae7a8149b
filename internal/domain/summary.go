package domain

import "time"

// Summary aggregates a result log for the post-session screen.
type Summary struct {
	StepsLogged       int
	TotalActiveSec    int
	TotalRestSec      int
	PlannedSec        int
	SkippedCount      int
	ExtendedCount     int
	TotalExtensionSec int
	AverageStepSec    float64
	CompletionRate    float64 // percent, 0 to 100
	TotalElapsed      time.Duration
}

// Summarize reads results without modifying them. An empty log has a 0%
// completion rate.
func Summarize(results []StepResult, totalElapsed time.Duration) Summary {
	sum := Summary{
		StepsLogged:  len(results),
		TotalElapsed: totalElapsed,
	}

	total := 0
	for _, r := range results {
		switch r.Type {
		case StepTypeExercise:
			sum.TotalActiveSec += r.ActualElapsedSec
		case StepTypeRest:
			sum.TotalRestSec += r.ActualElapsedSec
		}
		total += r.ActualElapsedSec
		sum.PlannedSec += r.PlannedDurationSec
		if r.WasSkipped {
			sum.SkippedCount++
		}
		if r.WasExtended {
			sum.ExtendedCount++
		}
		sum.TotalExtensionSec += r.ExtensionSec
	}

	if len(results) == 0 {
		return sum
	}
	sum.AverageStepSec = float64(total) / float64(len(results))
	sum.CompletionRate = float64(len(results)-sum.SkippedCount) / float64(len(results)) * 100
	return sum
}
