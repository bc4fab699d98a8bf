package complete

import "slices"

// Wildcard stands in a [Field.Parents] position whose key is user-defined,
// such as a job name under "jobs". It matches any ancestor key.
const Wildcard = "*"

// Field is one key the schema allows, at a fixed position in the document.
//
// Parents holds the enclosing keys, outermost first, and always has Depth
// entries. ExclusionGroups maps a key of this field's own object to every
// key that some oneOf branch requires together with it.
// EntryExclusionGroups does the same for the objects under the user-defined
// keys of a map field.
type Field struct {
	ExclusionGroups      map[string][]string `json:"exclusionGroups,omitempty"      yaml:"exclusionGroups,omitempty"`
	EntryExclusionGroups map[string][]string `json:"entryExclusionGroups,omitempty" yaml:"entryExclusionGroups,omitempty"`
	Name                 string              `json:"name"                           yaml:"name"`
	Parents              []string            `json:"parents,omitempty"              yaml:"parents,omitempty"`
	Types                []string            `json:"types,omitempty"                yaml:"types,omitempty"`
	Depth                int                 `json:"depth"                          yaml:"depth"`
}

// MatchesParents reports whether chain, an ancestor chain from a document,
// fits this field's Parents position by position.
func (f Field) MatchesParents(chain []string) bool {
	if len(chain) != len(f.Parents) {
		return false
	}

	for i, p := range f.Parents {
		if p != Wildcard && p != chain[i] {
			return false
		}
	}

	return true
}

// Table is the flattened, read-only form of a schema. Safe for concurrent
// use.
//
// Create instances with [Flatten].
type Table struct {
	rootGroups map[string][]string
	fields     []Field
}

// Len returns the number of fields.
func (t *Table) Len() int {
	return len(t.fields)
}

// Fields returns a deep copy of the fields in table order.
func (t *Table) Fields() []Field {
	fields := make([]Field, len(t.fields))

	for i, f := range t.fields {
		f.Parents = slices.Clone(f.Parents)
		f.Types = slices.Clone(f.Types)
		f.ExclusionGroups = cloneGroups(f.ExclusionGroups)
		f.EntryExclusionGroups = cloneGroups(f.EntryExclusionGroups)
		fields[i] = f
	}

	return fields
}

// RootExclusionGroups returns the exclusion groups that apply to top-level
// keys, built from the root schema's own oneOf.
func (t *Table) RootExclusionGroups() map[string][]string {
	return cloneGroups(t.rootGroups)
}

// exclusionGroups returns the groups that constrain the keys of the object
// ancestors leads to.
func (t *Table) exclusionGroups(ancestors []string) map[string][]string {
	if len(ancestors) == 0 {
		return t.rootGroups
	}

	last := len(ancestors) - 1

	for _, f := range t.fields {
		if f.Name == ancestors[last] && f.Depth == last && f.MatchesParents(ancestors[:last]) {
			return f.ExclusionGroups
		}
	}

	if last == 0 {
		return nil
	}

	// No field is named after the last ancestor, so it may be a
	// user-defined key under a map field.
	for _, f := range t.fields {
		if f.EntryExclusionGroups != nil && f.Name == ancestors[last-1] &&
			f.Depth == last-1 && f.MatchesParents(ancestors[:last-1]) {
			return f.EntryExclusionGroups
		}
	}

	return nil
}

func cloneGroups(groups map[string][]string) map[string][]string {
	if groups == nil {
		return nil
	}

	c := make(map[string][]string, len(groups))
	for k, v := range groups {
		c[k] = slices.Clone(v)
	}

	return c
}
