package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
)

// Terminal prompts on an interactive terminal with huh forms. An aborted form
// (ctrl+c or esc) counts as "no".
type Terminal struct {
	in         io.Reader
	out        io.Writer
	accessible bool
}

// NewTerminal creates a Terminal prompter. Accessible mode replaces the
// full-screen form with plain line prompts.
func NewTerminal(in io.Reader, out io.Writer, accessible bool) *Terminal {
	return &Terminal{in: in, out: out, accessible: accessible}
}

func (t *Terminal) run(ctx context.Context, field huh.Field) error {
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(huh.ThemeBase()).
		WithAccessible(t.accessible).
		WithInput(t.in).
		WithOutput(t.out)
	return form.RunWithContext(ctx)
}

// ConfirmUpdate offers yes, "no, don't ask again" and no.
func (t *Terminal) ConfirmUpdate(ctx context.Context, p UpdatePrompt) (Choice, error) {
	choice := Yes
	sel := huh.NewSelect[Choice]().
		Title(p.Title()).
		Description(p.Body()).
		Options(
			huh.NewOption("Yes", Yes),
			huh.NewOption("No, don't ask again", NoDontAskAgain),
			huh.NewOption("No", No),
		).
		Value(&choice)

	if err := t.run(ctx, sel); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return No, nil
		}
		return No, fmt.Errorf("update prompt failed: %w", err)
	}
	return choice, nil
}

// Confirm asks a yes/no question.
func (t *Terminal) Confirm(ctx context.Context, title, body string) (bool, error) {
	ok := false
	confirm := huh.NewConfirm().
		Title(title).
		Description(body).
		Affirmative("Yes").
		Negative("No").
		Value(&ok)

	if err := t.run(ctx, confirm); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return ok, nil
}
