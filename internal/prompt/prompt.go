// Package prompt asks the operator for consent.
//
// The engine only sees the Prompter interface. Interactive runs use the
// terminal implementation built on huh forms; unattended runs use Unattended,
// which consents to everything without any I/O.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

// Choice is the operator's answer to an update prompt.
type Choice int

const (
	Yes Choice = iota
	NoDontAskAgain
	No
)

func (c Choice) String() string {
	switch c {
	case Yes:
		return "yes"
	case NoDontAskAgain:
		return "no, don't ask again"
	case No:
		return "no"
	default:
		return fmt.Sprintf("choice(%d)", int(c))
	}
}

// UpdatePrompt describes the update being offered.
type UpdatePrompt struct {
	// Current is the enabled package version, "(Unknown)" when unparsable
	Current string

	// Target is the version that would become enabled
	Target string

	// Reenable is set when the current package is reconfigured rather than
	// replaced
	Reenable bool
}

// Title is the prompt heading.
func (p UpdatePrompt) Title() string {
	return "Update plugin"
}

// Body is the prompt text.
func (p UpdatePrompt) Body() string {
	if p.Reenable {
		return fmt.Sprintf("A configuration change requires re-enabling the current plugin.\n\nCurrent version: %s\n\nProceed?", p.Current)
	}
	return fmt.Sprintf("A newer plugin version is available.\n\nCurrent version: %s\nNew version:     %s\n\nEnable the new version?", p.Current, p.Target)
}

// Prompter asks the operator questions.
type Prompter interface {
	// ConfirmUpdate offers an update and returns the operator's choice.
	ConfirmUpdate(ctx context.Context, p UpdatePrompt) (Choice, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, title, body string) (bool, error)
}

// ErrNoAnswer is returned by Scripted when its queue runs dry.
var ErrNoAnswer = errors.New("no scripted answer")

// Unattended consents to everything.
type Unattended struct{}

// ConfirmUpdate returns Yes.
func (Unattended) ConfirmUpdate(context.Context, UpdatePrompt) (Choice, error) {
	return Yes, nil
}

// Confirm returns true.
func (Unattended) Confirm(context.Context, string, string) (bool, error) {
	return true, nil
}

// Scripted replays queued answers and records every question asked.
type Scripted struct {
	Choices  []Choice
	Confirms []bool

	// Asked records prompt titles in order.
	Asked []string
}

// ConfirmUpdate pops the next queued choice.
func (s *Scripted) ConfirmUpdate(_ context.Context, p UpdatePrompt) (Choice, error) {
	s.Asked = append(s.Asked, p.Title())
	if len(s.Choices) == 0 {
		return No, ErrNoAnswer
	}
	c := s.Choices[0]
	s.Choices = s.Choices[1:]
	return c, nil
}

// Confirm pops the next queued confirmation.
func (s *Scripted) Confirm(_ context.Context, title, _ string) (bool, error) {
	s.Asked = append(s.Asked, title)
	if len(s.Confirms) == 0 {
		return false, ErrNoAnswer
	}
	ok := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return ok, nil
}
