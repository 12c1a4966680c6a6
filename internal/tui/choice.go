// internal/tui/choice.go
//
// Choice is a single-selection menu built on bubbles/list. It quits the
// program once the user picks an option or cancels.

package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/lineage/internal/logbook"
)

// Item is one selectable entry.
type Item struct {
	Value string
	Label string
	Hint  string
}

func (i Item) Title() string       { return i.Label }
func (i Item) Description() string { return i.Hint }
func (i Item) FilterValue() string { return i.Value }

// Choice lets the user pick one Item.
type Choice struct {
	title    string
	menu     list.Model
	notices  *logbook.Logbook
	chosen   Item
	done     bool
	canceled bool
	width    int
	height   int
}

// ModelOption customizes the Choice and Prompt models.
type ModelOption func(*modelOptions)

type modelOptions struct {
	notices  *logbook.Logbook
	validate func(string) error
	initial  string
}

// WithNotices draws the tail of book under the model.
func WithNotices(book *logbook.Logbook) ModelOption {
	return func(o *modelOptions) { o.notices = book }
}

// WithValidator rejects prompt values before submission.
func WithValidator(fn func(string) error) ModelOption {
	return func(o *modelOptions) { o.validate = fn }
}

// WithInitialValue pre-fills the prompt.
func WithInitialValue(value string) ModelOption {
	return func(o *modelOptions) { o.initial = value }
}

func collect(opts []ModelOption) modelOptions {
	var o modelOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// NewChoice builds a menu over items.
func NewChoice(title string, items []Item, opts ...ModelOption) *Choice {
	o := collect(opts)
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		listItems[i] = item
	}
	menu := list.New(listItems, list.NewDefaultDelegate(), 60, 14)
	menu.Title = title
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	return &Choice{title: title, menu: menu, notices: o.notices}
}

// Chosen returns the selected item. ok is false when nothing was chosen.
func (c *Choice) Chosen() (Item, bool) {
	return c.chosen, c.done && !c.canceled
}

// Canceled reports whether the user left without choosing.
func (c *Choice) Canceled() bool { return c.canceled }

func (c *Choice) Init() tea.Cmd { return nil }

func (c *Choice) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.menu.SetSize(max(20, msg.Width-4), max(6, msg.Height-10))
		return c, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			c.canceled = true
			c.done = true
			return c, tea.Quit
		case "enter":
			item, ok := c.menu.SelectedItem().(Item)
			if !ok {
				return c, nil
			}
			c.chosen = item
			c.done = true
			return c, tea.Quit
		}
	}
	var cmd tea.Cmd
	c.menu, cmd = c.menu.Update(msg)
	return c, cmd
}

func (c *Choice) View() string {
	if c.done {
		return ""
	}
	return joinSections(
		renderHeader("lineage"),
		c.menu.View(),
		renderNotices(c.notices),
	)
}
