// Package notification plays session cues as terminal beeps and desktop
// notifications.
package notification

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gen2brain/beeep"

	"github.com/xvierd/trainer-cli/internal/config"
	"github.com/xvierd/trainer-cli/internal/domain"
	"github.com/xvierd/trainer-cli/internal/ports"
)

// Backend is the sound and notification sink. beeep is the default.
type Backend interface {
	Beep(freq float64, duration int) error
	Notify(title, message string) error
}

type beeepBackend struct{}

func (beeepBackend) Beep(freq float64, duration int) error {
	return beeep.Beep(freq, duration)
}

func (beeepBackend) Notify(title, message string) error {
	return beeep.Notify(title, message, "")
}

// Notifier implements ports.CuePlayer.
type Notifier struct {
	cfg     *config.NotificationConfig
	backend Backend
	logger  *slog.Logger
	titles  map[string]string
}

// New creates a notifier with the given configuration.
func New(cfg *config.NotificationConfig, logger *slog.Logger) *Notifier {
	return NewWithBackend(cfg, beeepBackend{}, logger)
}

// NewWithBackend creates a notifier that plays through backend.
func NewWithBackend(cfg *config.NotificationConfig, backend Backend, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{cfg: cfg, backend: backend, logger: logger, titles: map[string]string{}}
}

// SetProgram registers step titles so notifications can name the step.
func (n *Notifier) SetProgram(p *domain.Program) {
	titles := make(map[string]string, len(p.Steps))
	for _, s := range p.Steps {
		titles[s.ID] = s.Title
	}
	n.titles = titles
}

// IsEnabled returns true if cues are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}

// Play implements ports.CuePlayer. Failures are logged and never returned:
// a missing sound device must not affect the session.
func (n *Notifier) Play(cue domain.Cue) {
	if !n.IsEnabled() {
		return
	}

	var err error
	switch cue.Kind {
	case domain.CueCountdown:
		if n.cfg.Sound {
			err = n.backend.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		}
	case domain.CueStepComplete:
		err = n.backend.Notify("Step complete", n.stepMessage(cue))
	case domain.CueSessionFinished:
		err = n.backend.Notify("Workout complete!", "Great job! Every step is done.")
	}
	if err != nil {
		n.logger.Debug("cue failed", "kind", cue.Kind, "error", err)
	}
}

func (n *Notifier) stepMessage(cue domain.Cue) string {
	if title, ok := n.titles[cue.StepID]; ok && title != "" {
		return fmt.Sprintf("%s done.", title)
	}
	return fmt.Sprintf("Step %d done.", cue.StepIndex+1)
}

var _ ports.CuePlayer = (*Notifier)(nil)
