// Package complete suggests YAML keys for a caret position in a workflow
// file, driven by the workflow's JSON Schema.
//
// Work is split in two phases. [Flatten] runs once per schema load and
// turns the schema graph into a [Table]: one [Field] per key the schema
// allows, annotated with its depth, its chain of parent keys and the
// exclusion groups derived from oneOf/required. [Suggest] runs per request
// and intersects a [yamlctx.Context] with that table.
//
// # Flattening
//
// Properties are walked depth first from the root $ref:
//
//   - A map property keyed by user-defined names (type object with a
//     patternProperties entry that is a $ref or an inline object) is
//     emitted, then its entry schema is walked with the parent chain
//     extended by the property name and [Wildcard].
//   - An array of objects (typed, with items.$ref or inline item
//     properties) walks the item schema first, then is emitted with the
//     item schema's oneOf turned into exclusion groups.
//   - An untyped $ref, or an inline object with properties, is handled the
//     same way with the referenced or inline schema.
//   - Anything else is a leaf. Its types are its own declared types plus
//     those of its oneOf branches; branches that are objects with
//     properties are walked too.
//
// The root schema's oneOf becomes the table's root exclusion groups. A
// schema that is already being walked further up the current path is not
// walked again, so self-referencing schemas terminate.
//
// # Exclusion groups
//
// For every oneOf branch, every key in the branch's required list maps to
// the whole list; a key named by several branches maps to the union. When
// keys of the enclosing object's groups are already present as siblings,
// only keys in the intersection of their groups stay eligible.
//
// # Sessions
//
// [Provider] holds the table for an editing session. [Provider.Reload]
// rebuilds it from the schema file and swaps it atomically,
// [Provider.Watch] calls Reload when the file changes, and
// [Provider.Complete] answers requests from raw text and a caret
// position. [Config] wires these to CLI flags and persisted settings.
package complete
