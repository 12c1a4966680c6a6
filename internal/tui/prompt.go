// internal/tui/prompt.go
//
// Prompt asks for a single line of text.

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lineage/internal/logbook"
)

// Prompt is a one-line text input with an optional validator.
type Prompt struct {
	label    string
	input    textinput.Model
	validate func(string) error
	notices  *logbook.Logbook
	err      error
	value    string
	done     bool
	canceled bool
}

// NewPrompt builds a prompt titled label.
func NewPrompt(label string, opts ...ModelOption) *Prompt {
	o := collect(opts)
	input := textinput.New()
	input.Placeholder = "name"
	input.CharLimit = 120
	input.Width = 40
	input.SetValue(o.initial)
	input.Focus()
	return &Prompt{label: label, input: input, validate: o.validate, notices: o.notices}
}

// Value returns the submitted text. ok is false when the prompt was canceled.
func (p *Prompt) Value() (string, bool) {
	return p.value, p.done && !p.canceled
}

// Canceled reports whether the user left without submitting.
func (p *Prompt) Canceled() bool { return p.canceled }

func (p *Prompt) Init() tea.Cmd { return textinput.Blink }

func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			p.canceled = true
			p.done = true
			return p, tea.Quit
		case tea.KeyEnter:
			value := strings.TrimSpace(p.input.Value())
			if p.validate != nil {
				if err := p.validate(value); err != nil {
					p.err = err
					return p, nil
				}
			}
			p.value = value
			p.done = true
			return p, tea.Quit
		}
		p.err = nil
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Prompt) View() string {
	if p.done {
		return ""
	}
	errLine := ""
	if p.err != nil {
		errLine = errorStyle.Render(p.err.Error())
	}
	return joinSections(
		renderHeader("lineage"),
		p.label,
		p.input.View(),
		errLine,
		hintStyle.Render("enter to confirm · esc to cancel"),
		renderNotices(p.notices),
	)
}
