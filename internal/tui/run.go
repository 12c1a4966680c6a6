package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCanceled is returned when the user leaves a menu or prompt.
var ErrCanceled = errors.New("tui: canceled")

// Choose runs a Choice until the user picks an item.
func Choose(ctx context.Context, title string, items []Item, opts []ModelOption, progOpts ...tea.ProgramOption) (Item, error) {
	model := NewChoice(title, items, opts...)
	if err := run(ctx, model, progOpts); err != nil {
		return Item{}, err
	}
	item, ok := model.Chosen()
	if !ok {
		return Item{}, ErrCanceled
	}
	return item, nil
}

// Ask runs a Prompt until the user submits a valid value.
func Ask(ctx context.Context, label string, opts []ModelOption, progOpts ...tea.ProgramOption) (string, error) {
	model := NewPrompt(label, opts...)
	if err := run(ctx, model, progOpts); err != nil {
		return "", err
	}
	value, ok := model.Value()
	if !ok {
		return "", ErrCanceled
	}
	return value, nil
}

func run(ctx context.Context, model tea.Model, progOpts []tea.ProgramOption) error {
	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, progOpts...)
	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
