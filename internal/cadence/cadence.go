// Package cadence resolves the founder (and father) document of a periodic
// note. One parametrized strategy serves every cadence: the cadence only
// selects a Binding from the Table.
package cadence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kingrea/lineage/internal/config"
	"github.com/kingrea/lineage/internal/graph"
	"github.com/kingrea/lineage/internal/resolver"
)

// Cadence is a periodicity class.
type Cadence int

const (
	Weekly Cadence = iota
	Monthly
	Quarterly
	Yearly
)

// All lists every cadence in ascending period length.
var All = []Cadence{Weekly, Monthly, Quarterly, Yearly}

// ErrInvalidBinding is returned for tables with missing or malformed keys.
var ErrInvalidBinding = errors.New("cadence: invalid binding")

// ErrUnknownCadence is returned by Parse for unrecognised names.
var ErrUnknownCadence = errors.New("cadence: unknown cadence")

func (c Cadence) String() string {
	switch c {
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	case Quarterly:
		return "quarterly"
	case Yearly:
		return "yearly"
	default:
		return fmt.Sprintf("cadence(%d)", int(c))
	}
}

// Parse maps "weekly", "monthly", "quarterly" or "yearly" onto a Cadence.
func Parse(value string) (Cadence, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	for _, c := range All {
		if c.String() == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCadence, value)
}

// Binding names the two documents anchoring a cadence. Template is the
// document name inside the primary hierarchy; Bootstrap is the genesis
// document inside the bootstrap partition.
type Binding struct {
	Template  string
	Bootstrap string
}

// Table maps every cadence onto its binding.
type Table map[Cadence]Binding

// TableFromConfig builds a table from the periodic section of the project
// config.
func TableFromConfig(pc config.PeriodicConfig) Table {
	table := make(Table, len(All))
	for _, c := range All {
		template, _ := pc.Templates.Get(c.String())
		bootstrap, _ := pc.CelestiaPaths.Get(c.String())
		table[c] = Binding{Template: template, Bootstrap: bootstrap}
	}
	return table
}

// Validate reports the first cadence whose binding is missing or malformed.
func (t Table) Validate() error {
	for _, c := range All {
		b, ok := t[c]
		if !ok {
			return fmt.Errorf("%w: %s has no binding", ErrInvalidBinding, c)
		}
		if err := config.ValidateName(b.Template); err != nil {
			return fmt.Errorf("%w: %s template: %v", ErrInvalidBinding, c, err)
		}
		if err := config.ValidateName(b.Bootstrap); err != nil {
			return fmt.Errorf("%w: %s bootstrap: %v", ErrInvalidBinding, c, err)
		}
	}
	return nil
}

// Finder is the find-or-create operation the strategy delegates to.
type Finder interface {
	Find(ctx context.Context, g *graph.Graph, name string, create bool) (resolver.Result, error)
}

// Resolver picks the founder of a periodic note.
type Resolver struct {
	finder Finder
	table  Table
}

// New validates table and returns a resolver over finder.
func New(finder Finder, table Table) (*Resolver, error) {
	if finder == nil {
		return nil, errors.New("cadence: finder is required")
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	copied := make(Table, len(table))
	for c, b := range table {
		copied[c] = b
	}
	return &Resolver{finder: finder, table: copied}, nil
}

// FindFounder resolves the founder of current. The cadence template itself
// is founded by its genesis document in bootstrap; every other note is
// founded by the template in primary. Either one is created when missing.
func (r *Resolver) FindFounder(ctx context.Context, c Cadence, current string, primary, bootstrap *graph.Graph) (resolver.Result, error) {
	b, ok := r.table[c]
	if !ok {
		return resolver.Result{}, fmt.Errorf("%w: %s has no binding", ErrInvalidBinding, c)
	}
	if current == b.Template {
		return r.finder.Find(ctx, bootstrap, b.Bootstrap, true)
	}
	return r.finder.Find(ctx, primary, b.Template, true)
}

// FindFather resolves the father of current. For periodic notes the father
// is the founder.
func (r *Resolver) FindFather(ctx context.Context, c Cadence, current string, primary, bootstrap *graph.Graph) (resolver.Result, error) {
	return r.FindFounder(ctx, c, current, primary, bootstrap)
}
