// Package library loads training programs from YAML files and serves them
// through the ports.ProgramCatalog contract.
package library

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xvierd/trainer-cli/internal/domain"
)

type programFile struct {
	ID             string     `yaml:"id"`
	Title          string     `yaml:"title"`
	Description    string     `yaml:"description"`
	Difficulty     int        `yaml:"difficulty"`
	Tags           []string   `yaml:"tags"`
	TotalActiveSec int        `yaml:"total_active_sec"`
	TotalRestSec   int        `yaml:"total_rest_sec"`
	StepsCount     int        `yaml:"steps_count"`
	Steps          []stepFile `yaml:"steps"`
}

type stepFile struct {
	ID          string        `yaml:"id"`
	Type        string        `yaml:"type"`
	Title       string        `yaml:"title"`
	DurationSec int           `yaml:"duration_sec"`
	Exercise    *exerciseFile `yaml:"exercise"`
	Rest        *restFile     `yaml:"rest"`
}

type exerciseFile struct {
	Description string   `yaml:"description"`
	IconRef     string   `yaml:"icon_ref"`
	TargetReps  int      `yaml:"target_reps"`
	Equipment   []string `yaml:"equipment"`
}

type restFile struct {
	Tip string `yaml:"tip"`
}

// Decode reads one program document. Unknown keys are an error. The result
// is not validated; use domain.ValidateProgram.
func Decode(r io.Reader) (*domain.Program, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f programFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty program document")
		}
		return nil, fmt.Errorf("failed to decode program: %w", err)
	}
	if f.ID == "" {
		return nil, fmt.Errorf("program has no id")
	}
	return f.toDomain(), nil
}

// LoadFile decodes the program stored at path.
func LoadFile(path string) (*domain.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	p, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func (f programFile) toDomain() *domain.Program {
	p := &domain.Program{
		ID:             f.ID,
		Title:          f.Title,
		Description:    f.Description,
		Difficulty:     f.Difficulty,
		Tags:           f.Tags,
		TotalActiveSec: f.TotalActiveSec,
		TotalRestSec:   f.TotalRestSec,
		StepsCount:     f.StepsCount,
		Steps:          make([]domain.Step, 0, len(f.Steps)),
	}
	for _, s := range f.Steps {
		p.Steps = append(p.Steps, s.toDomain())
	}
	return p
}

// toDomain keeps a malformed step malformed so validation can reject it:
// an unknown type, or a payload block that does not match the type.
func (s stepFile) toDomain() domain.Step {
	step := domain.Step{
		ID:          s.ID,
		Title:       s.Title,
		DurationSec: s.DurationSec,
		Type:        domain.StepType(s.Type),
	}

	switch step.Type {
	case domain.StepTypeExercise:
		ex := s.Exercise
		if ex == nil {
			ex = &exerciseFile{}
		}
		step.Exercise = &domain.ExerciseDetails{
			Description: ex.Description,
			IconRef:     ex.IconRef,
			TargetReps:  ex.TargetReps,
			Equipment:   ex.Equipment,
		}
		if s.Rest != nil {
			step.Rest = &domain.RestDetails{Tip: s.Rest.Tip}
		}
	case domain.StepTypeRest:
		tip := ""
		if s.Rest != nil {
			tip = s.Rest.Tip
		}
		step.Rest = &domain.RestDetails{Tip: tip}
		if s.Exercise != nil {
			step.Exercise = &domain.ExerciseDetails{}
		}
	}
	return step
}
