package complete

import (
	"go.jacobcolvin.com/wfcomplete/yamlctx"
)

// Suggest returns the keys the schema allows at ctx, in table order.
//
// A key is suggested when its field sits at ctx.Depth under a matching
// ancestor chain, it is not already a sibling, and it is not excluded by
// the oneOf groups of the enclosing object. Once a sibling belonging to an
// exclusion group is present, only keys in the groups of every such
// sibling stay eligible; keys that appear only in other groups are
// dropped. Keys outside all groups are never excluded.
func Suggest(t *Table, ctx yamlctx.Context) []string {
	if t == nil {
		return nil
	}

	present := make(map[string]bool, len(ctx.Siblings))
	for _, s := range ctx.Siblings {
		present[s] = true
	}

	excluded := excludedKeys(t.exclusionGroups(ctx.Ancestors), ctx.Siblings)
	seen := make(map[string]bool)

	var out []string

	for _, f := range t.fields {
		if f.Depth != ctx.Depth || !f.MatchesParents(ctx.Ancestors) {
			continue
		}

		if present[f.Name] || excluded[f.Name] || seen[f.Name] {
			continue
		}

		seen[f.Name] = true
		out = append(out, f.Name)
	}

	return out
}

// excludedKeys returns the grouped keys that no longer fit the siblings:
// every key of every group, minus the intersection of the groups of the
// present siblings.
func excludedKeys(groups map[string][]string, siblings []string) map[string]bool {
	if len(groups) == 0 {
		return nil
	}

	var allowed map[string]bool

	for _, s := range siblings {
		group, ok := groups[s]
		if !ok {
			continue
		}

		in := make(map[string]bool, len(group))
		for _, k := range group {
			if allowed == nil || allowed[k] {
				in[k] = true
			}
		}

		allowed = in
	}

	if allowed == nil {
		return nil
	}

	excluded := make(map[string]bool)

	for _, group := range groups {
		for _, k := range group {
			if !allowed[k] {
				excluded[k] = true
			}
		}
	}

	return excluded
}
