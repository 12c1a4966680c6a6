// internal/tui/styles.go
//
// Shared lipgloss styles and the notices panel drawn under every screen.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/lineage/internal/logbook"
)

const noticeLines = 5

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FF6B6B")).
	MarginBottom(1)

var (
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

func renderHeader(title string) string {
	return headerStyle.Render("⬡ " + strings.ToUpper(title))
}

// renderNotices draws the tail of the notices logbook, or nothing when the
// logbook is empty.
func renderNotices(book *logbook.Logbook) string {
	if book == nil {
		return ""
	}
	lines, total := book.Tail(noticeLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(book.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func joinSections(sections ...string) string {
	var kept []string
	for _, s := range sections {
		if s != "" {
			kept = append(kept, s)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, kept...)
}
