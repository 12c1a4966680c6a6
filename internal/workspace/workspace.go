// Package workspace rebuilds the two document partitions (the root Void
// partition and the Celestia partition) from the live document set.
package workspace

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/kingrea/lineage/internal/config"
	"github.com/kingrea/lineage/internal/document"
	"github.com/kingrea/lineage/internal/graph"
)

// Partition describes one graph: its path prefix and alias bundle.
type Partition struct {
	Path  string
	Alias graph.Alias
}

// Layout is everything needed to split a document set into partitions.
type Layout struct {
	Void       Partition
	Celestia   Partition
	RootMarker string
	Language   language.Tag
}

// LayoutFromConfig derives a layout from the project config.
func LayoutFromConfig(pc config.ProjectConfig) (Layout, error) {
	tag, err := language.Parse(pc.Locale)
	if err != nil {
		return Layout{}, fmt.Errorf("workspace: locale %q: %w", pc.Locale, err)
	}
	return Layout{
		Void:       partitionFromConfig(pc.Partitions.Void),
		Celestia:   partitionFromConfig(pc.Partitions.Celestia),
		RootMarker: pc.RootMarker,
		Language:   tag,
	}, nil
}

func partitionFromConfig(p config.PartitionConfig) Partition {
	return Partition{
		Path: p.Path,
		Alias: graph.Alias{
			Founder:  p.Alias.Founder,
			Ancestor: p.Alias.Ancestor,
			Father:   p.Alias.Father,
		},
	}
}

// Lister enumerates every stored document.
type Lister interface {
	List(ctx context.Context) ([]document.Document, error)
}

// Partitions holds the rebuilt graphs.
type Partitions struct {
	Void     *graph.Graph
	Celestia *graph.Graph
}

// Build lists every document and groups the ones under each partition path
// into a collation-ordered graph. Partitions are filtered independently, so
// a document under nested partition paths belongs to both.
func Build(ctx context.Context, lister Lister, layout Layout) (*Partitions, error) {
	docs, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("workspace: list documents: %w", err)
	}
	var voidDocs, celestiaDocs []document.Document
	for _, doc := range docs {
		if layout.Void.contains(doc.Path) {
			voidDocs = append(voidDocs, doc)
		}
		if layout.Celestia.contains(doc.Path) {
			celestiaDocs = append(celestiaDocs, doc)
		}
	}
	return &Partitions{
		Void:     layout.graph(voidDocs, layout.Void),
		Celestia: layout.graph(celestiaDocs, layout.Celestia),
	}, nil
}

func (p Partition) contains(path string) bool {
	return p.Path != "" && strings.HasPrefix(path, p.Path)
}

func (l Layout) graph(docs []document.Document, p Partition) *graph.Graph {
	tag := l.Language
	if tag == (language.Tag{}) {
		tag = language.Und
	}
	graph.SortDocuments(docs, tag)
	opts := []graph.Option{graph.WithLanguage(tag)}
	if l.RootMarker != "" {
		opts = append(opts, graph.WithRootMarker(l.RootMarker))
	}
	return graph.New(docs, p.Path, p.Alias, opts...)
}

// Target returns the graph a newly created document at path belongs to:
// Void when the path contains the Void prefix, else Celestia when it
// contains the Celestia prefix, else nil.
func (p *Partitions) Target(path string) *graph.Graph {
	switch {
	case p.Void != nil && p.Void.Path() != "" && strings.Contains(path, p.Void.Path()):
		return p.Void
	case p.Celestia != nil && p.Celestia.Path() != "" && strings.Contains(path, p.Celestia.Path()):
		return p.Celestia
	default:
		return nil
	}
}
