// Package schemagraph loads a JSON Schema document into a read-only node
// table that can be navigated by stable [NodeID] values.
//
// The document is parsed with [github.com/google/jsonschema-go/jsonschema]
// and then copied into an arena: every subschema becomes one [Node], and
// every node is registered under its JSON pointer ("#",
// "#/definitions/V2Job", "#/$defs/Step/properties/run", ...). A $ref is a
// lookup in that pointer table, so shared subschemas are referenced by ID
// instead of by aliased pointers.
//
// Only the members used for key completion are kept on a [Node]: $ref,
// type, properties, patternProperties, items, oneOf and required. Other
// members are still walked so that every $ref in the document is checked.
//
// Loading fails, once, when the document is not a schema
// ([ErrInvalidSchema]), when any $ref has no target ([ErrUnresolvedRef]),
// or when a chain of $ref nodes never reaches a concrete schema
// ([ErrRefCycle]). A [Graph] that loaded successfully never fails to
// resolve a reference afterwards.
//
//	g, err := schemagraph.ReadFile("workflow.schema.json")
//	if err != nil {
//		return err
//	}
//
//	job, err := g.ResolveRef("#/definitions/V2Job")
//	steps, ok := g.Child(job, "steps")
package schemagraph
