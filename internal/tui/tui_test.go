package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lineage/internal/logbook"
)

var relations = []Item{
	{Value: "father", Label: "Open/create father"},
	{Value: "child", Label: "Create child"},
	{Value: "sibling", Label: "Create sibling"},
}

func send(t *testing.T, model tea.Model, msgs ...tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		model, cmd = model.Update(msg)
	}
	return model, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestChoicePicksHighlightedItem(t *testing.T) {
	choice := NewChoice("Relative", relations)
	_, cmd := send(t, choice,
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if !isQuit(cmd) {
		t.Fatalf("enter should quit the program")
	}
	item, ok := choice.Chosen()
	if !ok {
		t.Fatalf("expected a choice")
	}
	if item.Value != "sibling" {
		t.Fatalf("chosen = %q, want sibling", item.Value)
	}
	if choice.View() != "" {
		t.Fatalf("view should be empty once done")
	}
}

func TestChoiceCancel(t *testing.T) {
	choice := NewChoice("Relative", relations)
	_, cmd := send(t, choice, tea.KeyMsg{Type: tea.KeyEsc})
	if !isQuit(cmd) {
		t.Fatalf("esc should quit the program")
	}
	if _, ok := choice.Chosen(); ok {
		t.Fatalf("canceled choice reported a selection")
	}
	if !choice.Canceled() {
		t.Fatalf("expected canceled")
	}
}

func TestChoiceViewShowsNotices(t *testing.T) {
	book, err := logbook.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open logbook: %v", err)
	}
	book.Info("created child A.B")
	choice := NewChoice("Relative", relations, WithNotices(book))
	send(t, choice, tea.WindowSizeMsg{Width: 100, Height: 40})

	view := choice.View()
	for _, want := range []string{"LINEAGE", "Create child", "created child A.B", "notices.log"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestPromptSubmitsTrimmedValue(t *testing.T) {
	prompt := NewPrompt("Child name:")
	_, cmd := send(t, prompt, runes("  Weekly "), tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Fatalf("enter should quit the program")
	}
	value, ok := prompt.Value()
	if !ok || value != "Weekly" {
		t.Fatalf("value = %q, %v; want Weekly, true", value, ok)
	}
}

func TestPromptValidatorKeepsPromptOpen(t *testing.T) {
	invalid := errors.New("label must not contain a dot")
	validate := func(v string) error {
		if strings.Contains(v, ".") {
			return invalid
		}
		return nil
	}
	prompt := NewPrompt("Sibling name:", WithValidator(validate), WithInitialValue("a.b"))

	_, cmd := send(t, prompt, tea.KeyMsg{Type: tea.KeyEnter})
	if isQuit(cmd) {
		t.Fatalf("invalid value must not quit")
	}
	if !strings.Contains(prompt.View(), invalid.Error()) {
		t.Fatalf("view should show the validation error:\n%s", prompt.View())
	}
	if _, ok := prompt.Value(); ok {
		t.Fatalf("invalid value was accepted")
	}

	prompt.input.SetValue("ab")
	_, cmd = send(t, prompt, tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Fatalf("valid value should quit")
	}
	if value, ok := prompt.Value(); !ok || value != "ab" {
		t.Fatalf("value = %q, %v", value, ok)
	}
}

func TestPromptCancel(t *testing.T) {
	prompt := NewPrompt("Child name:")
	send(t, prompt, runes("x"), tea.KeyMsg{Type: tea.KeyCtrlC})
	if !prompt.Canceled() {
		t.Fatalf("expected canceled")
	}
	if _, ok := prompt.Value(); ok {
		t.Fatalf("canceled prompt reported a value")
	}
}
