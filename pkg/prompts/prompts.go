// Package prompts assembles the agent system prompt from markdown
// fragments: a base prompt shared by both modes plus a mode-specific
// fragment. Fragments ship embedded in the binary and can be overridden
// from a directory for prompt iteration without a rebuild.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/agentic-etl/etl-backend/pkg/service"
)

//go:embed templates/*.md
var embedded embed.FS

const (
	baseFile        = "base.md"
	interactiveFile = "interactive.md"
	automatedFile   = "automated.md"
)

var _ service.PromptAssembler = &Assembler{}

type Assembler struct {
	// dir overrides the embedded fragments when non-empty.
	dir string
}

func NewAssembler(dir string) *Assembler {
	return &Assembler{
		dir: dir,
	}
}

type promptContext struct {
	WorkspaceDir string
}

// SystemPrompt renders base + mode fragment with the workspace directory
// interpolated.
func (a *Assembler) SystemPrompt(mode service.Mode, workspaceDir string) (string, error) {
	modeFile := interactiveFile
	if mode == service.ModeAutomated {
		modeFile = automatedFile
	}

	base, err := a.fragment(baseFile)
	if err != nil {
		return "", err
	}

	modeFragment, err := a.fragment(modeFile)
	if err != nil {
		return "", err
	}

	joined := strings.TrimRight(base, "\n") + "\n\n" + strings.TrimRight(modeFragment, "\n") + "\n"

	tmpl, err := template.New("system_prompt").Parse(joined)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	var out bytes.Buffer
	err = tmpl.Execute(&out, promptContext{WorkspaceDir: workspaceDir})
	if err != nil {
		return "", fmt.Errorf("rendering prompt template: %w", err)
	}

	return out.String(), nil
}

func (a *Assembler) fragment(name string) (string, error) {
	if a.dir != "" {
		data, err := os.ReadFile(filepath.Join(a.dir, name))
		if err != nil {
			return "", fmt.Errorf("reading prompt fragment %s: %w", name, err)
		}

		return string(data), nil
	}

	data, err := embedded.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("reading embedded prompt fragment %s: %w", name, err)
	}

	return string(data), nil
}
