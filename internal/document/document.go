// Package document defines the note type shared by the storage, graph and
// resolution layers, plus the pure name derivations that operate on
// dot-tokenized names ("A.B.C" is a child of "A.B", which is a child of "A").
package document

import (
	"path"
	"strings"
)

const (
	// Ext is the filename suffix of every document.
	Ext = ".md"
	// Separator splits a document name into hierarchy tokens.
	Separator = "."
	// Placeholder is written into documents created on demand by the resolver.
	Placeholder = "\n# temp"
	// HeadingMarker is the only markdown syntax the core interprets.
	HeadingMarker = "#"
)

// Document is a named text artifact. Path is slash-delimited and relative to
// the vault root; Name is the basename without Ext.
type Document struct {
	Name    string
	Path    string
	Content string
}

// New builds a document from its vault-relative path.
func New(p, content string) Document {
	return Document{Name: NameFromPath(p), Path: p, Content: content}
}

// NameFromPath returns the basename of p without the document suffix.
func NameFromPath(p string) string {
	return strings.TrimSuffix(path.Base(p), Ext)
}

// Dir returns the folder prefix of p including its trailing slash, or "" for
// documents stored at the vault root.
func Dir(p string) string {
	dir := path.Dir(p)
	if dir == "." || dir == "/" || dir == "" {
		return ""
	}
	return dir + "/"
}

// Tokens splits a name into its hierarchy tokens.
func Tokens(name string) []string {
	return strings.Split(name, Separator)
}

// IsRoot reports whether the name has a single token and therefore no father.
func IsRoot(name string) bool {
	return len(Tokens(name)) <= 1
}

// Title is the last token of a name.
func Title(name string) string {
	tokens := Tokens(name)
	return tokens[len(tokens)-1]
}

// FatherName drops the last token. ok is false for root names.
func FatherName(name string) (string, bool) {
	tokens := Tokens(name)
	if len(tokens) <= 1 {
		return "", false
	}
	return strings.Join(tokens[:len(tokens)-1], Separator), true
}

// FatherTitle is the second-to-last token, the heading used for a father
// scaffold. ok is false for root names.
func FatherTitle(name string) (string, bool) {
	tokens := Tokens(name)
	if len(tokens) <= 1 {
		return "", false
	}
	return tokens[len(tokens)-2], true
}

// ChildName appends label as a new token.
func ChildName(name, label string) string {
	return name + Separator + label
}

// SiblingName replaces the last token with label. ok is false for root names.
func SiblingName(name, label string) (string, bool) {
	father, ok := FatherName(name)
	if !ok {
		return "", false
	}
	return ChildName(father, label), true
}
