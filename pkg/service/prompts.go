package service

import (
	"context"
	"fmt"
)

// Mode selects which prompt fragments are assembled into the agent's
// system prompt.
type Mode string

const (
	// ModeInteractive has the agent present proposals and wait for user
	// approval at each workflow step.
	ModeInteractive Mode = "interactive"
	// ModeAutomated has the agent execute the full workflow without asking
	// for confirmation.
	ModeAutomated Mode = "automated"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInteractive:
		return ModeInteractive, nil
	case ModeAutomated:
		return ModeAutomated, nil
	default:
		return "", fmt.Errorf("unknown mode %q, must be %q or %q", s, ModeInteractive, ModeAutomated)
	}
}

// PromptAssembler builds the agent system prompt for a mode and workspace.
type PromptAssembler interface {
	SystemPrompt(mode Mode, workspaceDir string) (string, error)
}

// ModeService exposes the current prompt-assembly mode and switches it.
// Switching resets the agent conversation so the new system prompt takes
// effect on the next turn.
type ModeService interface {
	Current(ctx context.Context) Mode
	Switch(ctx context.Context, mode Mode) (Mode, error)
}

// ModeResult is the response body of the mode endpoints.
type ModeResult struct {
	Mode Mode `json:"mode"`
}
