package complete

import (
	"errors"
	"fmt"
	"slices"

	"go.jacobcolvin.com/wfcomplete/schemagraph"
)

const typeObject = "object"

// DefaultMaxFields is the field budget of [Flatten] unless [WithMaxFields]
// sets another one.
const DefaultMaxFields = 50_000

// Sentinel errors returned by [Flatten].
var (
	ErrRootNotFound   = errors.New("root schema not found")
	ErrEmptyRoot      = errors.New("root schema has no properties")
	ErrSchemaTooLarge = errors.New("schema too large")
)

// FlattenOption configures [Flatten].
type FlattenOption func(*flattener)

// WithMaxFields sets the number of fields [Flatten] may emit before it
// gives up with [ErrSchemaTooLarge]. Values below 1 keep the default.
func WithMaxFields(n int) FlattenOption {
	return func(f *flattener) {
		if n > 0 {
			f.maxFields = n
		}
	}
}

// Flatten walks the schema from rootRef and returns its table of fields.
// An empty rootRef means the document root.
//
// Fields are emitted depth first with properties in [schemagraph.Graph.PropertyNames]
// order. A property whose value is a map keyed by user-defined names
// (patternProperties) is emitted before its children, whose Parents get a
// [Wildcard] for the user-defined level, and the entry schema's oneOf
// becomes its [Field.EntryExclusionGroups]. Other object and array-of-object
// properties are emitted after their children so that their exclusion
// groups can be taken from the child schema's oneOf. A schema already being
// walked higher up the current path is not entered again.
//
// Schemas whose definitions reference each other can still expand into a
// number of fields that grows with the number of distinct paths through
// them. Flatten stops with [ErrSchemaTooLarge] once the field budget is
// spent.
func Flatten(g *schemagraph.Graph, rootRef string, opts ...FlattenOption) (*Table, error) {
	if rootRef == "" {
		rootRef = schemagraph.RootPointer
	}

	root, err := g.ResolveRef(rootRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRootNotFound, err)
	}

	if len(g.Node(g.Resolve(root)).Properties) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyRoot, rootRef)
	}

	f := &flattener{
		g:         g,
		path:      make(map[schemagraph.NodeID]bool),
		maxFields: DefaultMaxFields,
	}

	for _, opt := range opts {
		opt(f)
	}

	oneOf := f.walk(root, nil)
	if f.exhausted {
		return nil, fmt.Errorf("%w: %s expands to more than %d fields",
			ErrSchemaTooLarge, rootRef, f.maxFields)
	}

	return &Table{
		fields:     f.fields,
		rootGroups: f.exclusionGroups(oneOf),
	}, nil
}

type flattener struct {
	g         *schemagraph.Graph
	path      map[schemagraph.NodeID]bool
	fields    []Field
	maxFields int
	exhausted bool
}

// walk emits the fields of the schema id resolves to and returns that
// schema's oneOf branches. Schemas without properties, and schemas already
// on the current path, only return their branches.
func (f *flattener) walk(id schemagraph.NodeID, parents []string) []schemagraph.NodeID {
	id = f.g.Resolve(id)
	n := f.g.Node(id)

	if len(n.Properties) == 0 || f.path[id] || f.exhausted {
		return n.OneOf
	}

	f.path[id] = true
	defer delete(f.path, id)

	for _, name := range f.g.PropertyNames(id) {
		if f.exhausted {
			break
		}

		f.property(name, n.Properties[name], parents)
	}

	return n.OneOf
}

func (f *flattener) property(name string, id schemagraph.NodeID, parents []string) {
	p := f.g.Node(id)
	field := Field{
		Name:    name,
		Depth:   len(parents),
		Parents: slices.Clone(parents),
		Types:   slices.Clone(p.Types),
	}
	children := slices.Concat(parents, []string{name})

	switch {
	case p.IsType(typeObject) && f.entry(id) != schemagraph.NoNode:
		i := f.emit(field)

		groups := f.exclusionGroups(f.walk(f.entry(id), slices.Concat(children, []string{Wildcard})))
		if i >= 0 {
			f.fields[i].EntryExclusionGroups = groups
		}

	case p.HasType() && f.descendable(p.Items):
		field.ExclusionGroups = f.exclusionGroups(f.walk(p.Items, children))
		f.emit(field)

	case !p.HasType() && p.Ref != "":
		field.Types = slices.Clone(f.g.Node(f.g.Resolve(id)).Types)
		if len(field.Types) == 0 {
			field.Types = []string{typeObject}
		}

		field.ExclusionGroups = f.exclusionGroups(f.walk(id, children))
		f.emit(field)

	case p.IsType(typeObject) && len(p.Properties) > 0:
		field.ExclusionGroups = f.exclusionGroups(f.walk(id, children))
		f.emit(field)

	default:
		field.Types = f.leafTypes(p, children)
		f.emit(field)
	}
}

// leafTypes returns the declared types of p plus those of its oneOf
// branches. Branches that are objects with properties are walked as well.
func (f *flattener) leafTypes(p schemagraph.Node, children []string) []string {
	types := slices.Clone(p.Types)

	for _, b := range p.OneOf {
		bn := f.g.Node(f.g.Resolve(b))

		branchTypes := bn.Types
		if len(branchTypes) == 0 && len(bn.Properties) > 0 {
			branchTypes = []string{typeObject}
		}

		for _, t := range branchTypes {
			if !slices.Contains(types, t) {
				types = append(types, t)
			}
		}

		if len(bn.Properties) > 0 {
			f.walk(b, children)
		}
	}

	return types
}

// entry returns the first patternProperties value of id that can be
// walked.
func (f *flattener) entry(id schemagraph.NodeID) schemagraph.NodeID {
	patterns := f.g.Node(f.g.Resolve(id)).PatternProperties

	for _, pattern := range f.g.PatternNames(id) {
		if f.descendable(patterns[pattern]) {
			return patterns[pattern]
		}
	}

	return schemagraph.NoNode
}

// descendable reports whether id is a $ref or an inline object with
// properties.
func (f *flattener) descendable(id schemagraph.NodeID) bool {
	if id == schemagraph.NoNode {
		return false
	}

	n := f.g.Node(id)

	return n.Ref != "" || len(n.Properties) > 0
}

// exclusionGroups builds, for every key required by some branch, the union
// of the required lists of all branches that require it.
func (f *flattener) exclusionGroups(branches []schemagraph.NodeID) map[string][]string {
	var groups map[string][]string

	for _, b := range branches {
		required := f.g.Node(f.g.Resolve(b)).Required

		for _, name := range required {
			if groups == nil {
				groups = make(map[string][]string)
			}

			for _, other := range required {
				if !slices.Contains(groups[name], other) {
					groups[name] = append(groups[name], other)
				}
			}
		}
	}

	for name := range groups {
		slices.Sort(groups[name])
	}

	return groups
}

// emit appends field and returns its index, or -1 once the field budget is
// spent.
func (f *flattener) emit(field Field) int {
	if len(f.fields) >= f.maxFields {
		f.exhausted = true

		return -1
	}

	f.fields = append(f.fields, field)

	return len(f.fields) - 1
}
