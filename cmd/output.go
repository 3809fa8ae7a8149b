package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xvierd/trainer-cli/internal/domain"
)

type programJSON struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Difficulty     int        `json:"difficulty"`
	Tags           []string   `json:"tags"`
	TotalActiveSec int        `json:"total_active_sec"`
	TotalRestSec   int        `json:"total_rest_sec"`
	StepsCount     int        `json:"steps_count"`
	Steps          []stepJSON `json:"steps,omitempty"`
}

type stepJSON struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	DurationSec int      `json:"duration_sec"`
	Description string   `json:"description,omitempty"`
	TargetReps  int      `json:"target_reps,omitempty"`
	Equipment   []string `json:"equipment,omitempty"`
	Tip         string   `json:"tip,omitempty"`
}

func toProgramJSON(p *domain.Program, withSteps bool) programJSON {
	out := programJSON{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Difficulty:     p.Difficulty,
		Tags:           p.Tags,
		TotalActiveSec: p.TotalActiveSec,
		TotalRestSec:   p.TotalRestSec,
		StepsCount:     p.StepsCount,
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if !withSteps {
		return out
	}
	for _, s := range p.Steps {
		step := stepJSON{ID: s.ID, Type: string(s.Type), Title: s.Title, DurationSec: s.DurationSec}
		if s.Exercise != nil {
			step.Description = s.Exercise.Description
			step.TargetReps = s.Exercise.TargetReps
			step.Equipment = s.Exercise.Equipment
		}
		if s.Rest != nil {
			step.Tip = s.Rest.Tip
		}
		out.Steps = append(out.Steps, step)
	}
	return out
}

type workoutJSON struct {
	ID             string       `json:"id"`
	ProgramID      string       `json:"program_id"`
	ProgramTitle   string       `json:"program_title"`
	StartedAt      string       `json:"started_at"`
	FinishedAt     string       `json:"finished_at"`
	TotalElapsed   int          `json:"total_elapsed_sec"`
	TotalActiveSec int          `json:"total_active_sec"`
	TotalRestSec   int          `json:"total_rest_sec"`
	SkippedCount   int          `json:"skipped_count"`
	ExtendedCount  int          `json:"extended_count"`
	CompletionRate float64      `json:"completion_rate"`
	Results        []resultJSON `json:"results,omitempty"`
}

type resultJSON struct {
	StepID             string `json:"step_id"`
	Type               string `json:"type"`
	PlannedDurationSec int    `json:"planned_duration_sec"`
	ActualElapsedSec   int    `json:"actual_elapsed_sec"`
	WasSkipped         bool   `json:"was_skipped"`
	WasExtended        bool   `json:"was_extended"`
	ExtensionSec       int    `json:"extension_sec"`
}

func toWorkoutJSON(r *domain.WorkoutRecord, withResults bool) workoutJSON {
	out := workoutJSON{
		ID:             r.ID,
		ProgramID:      r.ProgramID,
		ProgramTitle:   r.ProgramTitle,
		StartedAt:      r.StartedAt.Format(time.RFC3339),
		FinishedAt:     r.FinishedAt.Format(time.RFC3339),
		TotalElapsed:   int(r.TotalElapsed.Round(time.Second) / time.Second),
		TotalActiveSec: r.Summary.TotalActiveSec,
		TotalRestSec:   r.Summary.TotalRestSec,
		SkippedCount:   r.Summary.SkippedCount,
		ExtendedCount:  r.Summary.ExtendedCount,
		CompletionRate: r.Summary.CompletionRate,
	}
	if !withResults {
		return out
	}
	for _, res := range r.Results {
		out.Results = append(out.Results, resultJSON{
			StepID:             res.StepID,
			Type:               string(res.Type),
			PlannedDurationSec: res.PlannedDurationSec,
			ActualElapsedSec:   res.ActualElapsedSec,
			WasSkipped:         res.WasSkipped,
			WasExtended:        res.WasExtended,
			ExtensionSec:       res.ExtensionSec,
		})
	}
	return out
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// difficultyStars renders a 1 to 5 difficulty as filled and empty stars.
func difficultyStars(d int) string {
	if d < domain.MinDifficulty {
		d = domain.MinDifficulty
	}
	if d > domain.MaxDifficulty {
		d = domain.MaxDifficulty
	}
	return strings.Repeat("★", d) + strings.Repeat("☆", domain.MaxDifficulty-d)
}

// printWorkout writes a finished workout with its step log.
func printWorkout(w io.Writer, r *domain.WorkoutRecord) {
	fmt.Fprintf(w, "🏁 %s (ID: %s)\n", r.ProgramTitle, shortID(r.ID))
	fmt.Fprintf(w, "   Finished: %s\n", r.FinishedAt.Local().Format("Mon Jan 2 15:04"))
	fmt.Fprintf(w, "   Total: %s · active %s · rest %s\n",
		domain.FormatDuration(r.TotalElapsed),
		domain.FormatDuration(seconds(r.Summary.TotalActiveSec)),
		domain.FormatDuration(seconds(r.Summary.TotalRestSec)))
	fmt.Fprintf(w, "   Completed: %.0f%% · %d skipped · %d extended\n",
		r.Summary.CompletionRate, r.Summary.SkippedCount, r.Summary.ExtendedCount)

	if len(r.Results) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i, res := range r.Results {
		note := ""
		if res.WasSkipped {
			note = " (skipped)"
		}
		if res.WasExtended {
			note += fmt.Sprintf(" (+%ds)", res.ExtensionSec)
		}
		fmt.Fprintf(w, "   %2d. %-20s %-8s %6s / %s%s\n", i+1, res.StepID, domain.GetStepTypeLabel(res.Type),
			domain.FormatDuration(seconds(res.ActualElapsedSec)),
			domain.FormatDuration(seconds(res.PlannedDurationSec)), note)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
