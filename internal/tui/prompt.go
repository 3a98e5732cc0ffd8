package tui

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/mrz1836/forge/internal/domain"
	"github.com/mrz1836/forge/internal/errors"
)

// ConfirmFunc asks a yes/no question and returns the answer.
type ConfirmFunc func(title, description string) (bool, error)

// GatePrompt asks a human whether to override a failed quality gate.
// The first prompt error is kept and every later gate is declined.
type GatePrompt struct {
	w       io.Writer
	confirm ConfirmFunc
	logger  zerolog.Logger

	mu  sync.Mutex
	err error
}

// GatePromptOption configures a GatePrompt.
type GatePromptOption func(*GatePrompt)

// WithConfirmFunc replaces the interactive huh confirmation.
func WithConfirmFunc(fn ConfirmFunc) GatePromptOption {
	return func(p *GatePrompt) {
		p.confirm = fn
	}
}

// NewGatePrompt creates a prompt that renders findings to w before asking.
func NewGatePrompt(w io.Writer, logger zerolog.Logger, opts ...GatePromptOption) *GatePrompt {
	p := &GatePrompt{
		w:       w,
		confirm: Confirm,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Approve matches the pipeline approver signature.
func (p *GatePrompt) Approve(gateName string, report *domain.ReviewReport) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return false
	}

	RenderFindings(p.w, report)

	description := ""
	if report != nil {
		description = fmt.Sprintf("%d critical, %d high issue(s) remain", report.CriticalIssueCount, report.HighIssueCount)
	}

	ok, err := p.confirm(fmt.Sprintf("Override the failed %s gate and continue?", gateName), description)
	if err != nil {
		p.err = err
		p.logger.Warn().Err(err).Str("gate", gateName).Msg("gate prompt failed, declining override")
		return false
	}

	p.logger.Info().Str("gate", gateName).Bool("approved", ok).Msg("gate decision recorded")
	return ok
}

// Err returns the first prompt failure, if any.
func (p *GatePrompt) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Confirm runs a huh confirmation defaulting to No.
// Returns ErrInteractiveRequired without a terminal on stdin and ErrPromptCanceled on abort.
func Confirm(title, description string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, errors.ErrInteractiveRequired
	}

	CheckNoColor()

	var confirmed bool
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Override").
		Negative("Stop").
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(ForgeTheme()).
		WithShowHelp(true)

	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return false, errors.ErrPromptCanceled
		}
		return false, fmt.Errorf("confirm prompt failed: %w", err)
	}
	return confirmed, nil
}

// ForgeTheme maps the FORGE palette onto the huh base theme.
func ForgeTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorPrimary)
	t.Focused.Title = t.Focused.Title.Foreground(ColorPrimary)
	t.Focused.Description = t.Focused.Description.Foreground(ColorMuted)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Background(ColorWarning)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorError)

	t.Blurred.Base = t.Blurred.Base.BorderForeground(ColorMuted)
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorMuted)

	return t
}
