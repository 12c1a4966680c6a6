package document

import "strings"

// Heading renders a single first-level heading line.
func Heading(title string) string {
	return HeadingMarker + " " + title + "\n"
}

// HeadingLines returns every line of content whose first character is the
// heading marker, in original order.
func HeadingLines(content string) []string {
	var headings []string
	for _, line := range strings.Split(normalizeNewlines(content), "\n") {
		if strings.HasPrefix(line, HeadingMarker) {
			headings = append(headings, line)
		}
	}
	return headings
}

// SiblingScaffold derives the initial content of a sibling from the current
// document. The heading outline is kept and every occurrence of the current
// title heading is renamed to label. Without headings the scaffold is a
// single heading titled label.
func SiblingScaffold(content, currentTitle, label string) string {
	headings := HeadingLines(content)
	if len(headings) == 0 {
		return Heading(label)
	}
	outline := strings.Join(headings, "\n")
	return strings.ReplaceAll(outline, HeadingMarker+" "+currentTitle, HeadingMarker+" "+label)
}

func normalizeNewlines(content string) string {
	return strings.ReplaceAll(content, "\r\n", "\n")
}
