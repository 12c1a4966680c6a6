// Package relative creates the father, a child or a sibling of a document
// and hands the result to the link updater and the editor.
package relative

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/logging"
	"github.com/kingrea/lineage/internal/workspace"
)

var (
	ErrRootHasNoFather  = errors.New("relative: a root document has no father")
	ErrRootHasNoSibling = errors.New("relative: a root document cannot have a sibling")
	ErrInvalidLabel     = errors.New("relative: invalid label")
)

// Kind names the relation being opened or created.
type Kind string

const (
	Father  Kind = "father"
	Child   Kind = "child"
	Sibling Kind = "sibling"
)

// Kinds lists the relations in the order they are offered to the user.
var Kinds = []Kind{Father, Child, Sibling}

// Storage is the document store the operations write through.
type Storage interface {
	Create(ctx context.Context, path, content string) (document.Document, error)
	Read(ctx context.Context, doc document.Document) (string, error)
	Lookup(ctx context.Context, path string) (document.Document, bool, error)
	List(ctx context.Context) ([]document.Document, error)
}

// Updater refreshes links after a document joins target. secondary is the
// Celestia partition, consulted for cross-partition links.
type Updater interface {
	Update(ctx context.Context, doc document.Document, target, secondary *graph.Graph) error
}

// Opener presents a document to the user.
type Opener interface {
	Open(ctx context.Context, doc document.Document) error
}

// Outcome is the document an operation ended on. Created is false when an
// existing father was only opened.
type Outcome struct {
	Kind     Kind
	Document document.Document
	Created  bool
}

// Ops runs relative operations against one store.
type Ops struct {
	store   Storage
	updater Updater
	opener  Opener
	layout  workspace.Layout
	logger  *slog.Logger
}

// Option customizes Ops.
type Option func(*Ops)

// WithLogger injects a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Ops) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New wires the collaborators together.
func New(store Storage, updater Updater, opener Opener, layout workspace.Layout, opts ...Option) *Ops {
	o := &Ops{
		store:   store,
		updater: updater,
		opener:  opener,
		layout:  layout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run dispatches on kind. label is ignored for Father.
func (o *Ops) Run(ctx context.Context, kind Kind, current document.Document, label string) (Outcome, error) {
	switch kind {
	case Father:
		return o.Father(ctx, current)
	case Child:
		return o.Child(ctx, current, label)
	case Sibling:
		return o.Sibling(ctx, current, label)
	default:
		return Outcome{}, fmt.Errorf("relative: unknown relation %q", kind)
	}
}

// Father opens the father of current, creating it with a heading scaffold
// when it does not exist yet.
func (o *Ops) Father(ctx context.Context, current document.Document) (Outcome, error) {
	name, ok := document.FatherName(current.Name)
	if !ok {
		return Outcome{}, fmt.Errorf("%w: %s", ErrRootHasNoFather, current.Name)
	}
	title, _ := document.FatherTitle(current.Name)
	path := document.Dir(current.Path) + name + document.Ext

	existing, found, err := o.store.Lookup(ctx, path)
	if err != nil {
		return Outcome{}, fmt.Errorf("relative: look up father %s: %w", name, err)
	}
	if found {
		if err := o.opener.Open(ctx, existing); err != nil {
			return Outcome{}, fmt.Errorf("relative: open %s: %w", existing.Name, err)
		}
		o.logger.Info("father opened", "name", existing.Name, "path", existing.Path)
		return Outcome{Kind: Father, Document: existing}, nil
	}
	return o.create(ctx, Father, path, document.Heading(title))
}

// Child creates current.Name + "." + label.
func (o *Ops) Child(ctx context.Context, current document.Document, label string) (Outcome, error) {
	label, err := cleanLabel(label)
	if err != nil {
		return Outcome{}, err
	}
	name := document.ChildName(current.Name, label)
	path := document.Dir(current.Path) + name + document.Ext
	return o.create(ctx, Child, path, document.Heading(label))
}

// Sibling creates a document next to current, copying the heading lines of
// current with its title swapped for label.
func (o *Ops) Sibling(ctx context.Context, current document.Document, label string) (Outcome, error) {
	if document.IsRoot(current.Name) {
		return Outcome{}, fmt.Errorf("%w: %s", ErrRootHasNoSibling, current.Name)
	}
	label, err := cleanLabel(label)
	if err != nil {
		return Outcome{}, err
	}
	name, _ := document.SiblingName(current.Name, label)
	path := document.Dir(current.Path) + name + document.Ext

	content, err := o.store.Read(ctx, current)
	if err != nil {
		return Outcome{}, fmt.Errorf("relative: read %s: %w", current.Name, err)
	}
	scaffold := document.SiblingScaffold(content, document.Title(current.Name), label)
	return o.create(ctx, Sibling, path, scaffold)
}

// create stores the document, rebuilds the partitions, hands the document to
// the updater and finally opens it. A failure after the create leaves the
// document in place.
func (o *Ops) create(ctx context.Context, kind Kind, path, content string) (Outcome, error) {
	name := document.NameFromPath(path)
	doc, err := o.store.Create(ctx, path, content)
	if err != nil {
		o.logger.Error("relative creation failed", "kind", kind, "name", name, "error", err)
		return Outcome{}, fmt.Errorf("relative: create %s %s: %w", kind, name, err)
	}
	o.logger.Info("relative created", "kind", kind, "name", doc.Name, "path", doc.Path)

	parts, err := workspace.Build(ctx, o.store, o.layout)
	if err != nil {
		return Outcome{}, fmt.Errorf("relative: index %s: %w", doc.Name, err)
	}
	if target := parts.Target(doc.Path); target != nil {
		if err := o.updater.Update(ctx, doc, target, parts.Celestia); err != nil {
			return Outcome{}, fmt.Errorf("relative: index %s: %w", doc.Name, err)
		}
	} else {
		o.logger.Debug("document outside every partition", "path", doc.Path)
	}

	if err := o.opener.Open(ctx, doc); err != nil {
		return Outcome{}, fmt.Errorf("relative: open %s: %w", doc.Name, err)
	}
	return Outcome{Kind: kind, Document: doc, Created: true}, nil
}

func cleanLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	switch {
	case label == "":
		return "", fmt.Errorf("%w: label is empty", ErrInvalidLabel)
	case strings.Contains(label, "/"):
		return "", fmt.Errorf("%w: %q must not contain %q", ErrInvalidLabel, label, "/")
	}
	return label, nil
}

// ValidateLabel reports whether label can name a child or sibling.
func ValidateLabel(label string) error {
	_, err := cleanLabel(label)
	return err
}
