// Package yamlctx derives the structural position of a caret inside a
// partially written YAML document without parsing it.
//
// Documents being edited are rarely valid YAML, so [Resolve] works on raw
// lines and indentation only. It reports the caret's nesting depth, the
// chain of enclosing keys, and the keys already present next to the caret:
//
//	jobs:
//	  build:
//	    stage: compile
//	    |
//
// resolves to Ancestors ["jobs", "build"], Depth 2 and Siblings ["stage"].
//
// List items do not add a level of nesting: the keys of a "- " item are
// siblings of each other, and the item's first key (on the "- " line) is a
// sibling of the keys indented under it. An odd indentation count on the
// caret line makes the position indeterminate.
package yamlctx
