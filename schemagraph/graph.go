package schemagraph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// Sentinel errors returned while loading a schema.
var (
	ErrReadSchema    = errors.New("read schema")
	ErrInvalidSchema = errors.New("invalid schema")
	ErrUnresolvedRef = errors.New("unresolved $ref")
	ErrRefCycle      = errors.New("$ref cycle")
)

// NodeID identifies a [Node] within a [Graph].
type NodeID int

// NoNode is the zero reference, returned when a member is absent.
const NoNode NodeID = -1

// RootPointer is the JSON pointer of the document root.
const RootPointer = "#"

// Node is one subschema of the document.
//
// Slices and maps are shared with the [Graph] and must not be modified.
type Node struct {
	PatternProperties map[string]NodeID
	Properties        map[string]NodeID
	Pointer           string
	Ref               string
	Types             []string
	PropertyOrder     []string
	OneOf             []NodeID
	Required          []string
	Items             NodeID
}

// HasType reports whether the node declares at least one type.
func (n Node) HasType() bool {
	return len(n.Types) > 0
}

// IsType reports whether the node declares typ among its types.
func (n Node) IsType(typ string) bool {
	return slices.Contains(n.Types, typ)
}

// Graph is an immutable table of schema nodes. Safe for concurrent use.
//
// Create instances with [Parse], [ReadFile] or [FromSchema].
type Graph struct {
	pointers map[string]NodeID
	nodes    []Node
}

// ReadFile reads and parses the schema document at path.
func ReadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Schema path comes from configuration.
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadSchema, err)
	}

	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return g, nil
}

// Parse parses a JSON Schema document.
func Parse(data []byte) (*Graph, error) {
	var schema jsonschema.Schema

	err := json.Unmarshal(data, &schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	return FromSchema(&schema)
}

// FromSchema builds a [Graph] from an already parsed schema.
func FromSchema(schema *jsonschema.Schema) (*Graph, error) {
	if schema == nil {
		return nil, fmt.Errorf("%w: nil schema", ErrInvalidSchema)
	}

	g := &Graph{
		pointers: make(map[string]NodeID),
	}

	g.add(schema, RootPointer)

	err := g.check()
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Root returns the ID of the document root.
func (g *Graph) Root() NodeID {
	return 0
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns the node with the given ID. It panics if id is out of range.
func (g *Graph) Node(id NodeID) Node {
	return g.nodes[id]
}

// ResolveRef returns the node a $ref string points to.
func (g *Graph) ResolveRef(ref string) (NodeID, error) {
	id, ok := g.pointers[ref]
	if !ok {
		return NoNode, fmt.Errorf("%w: %q", ErrUnresolvedRef, ref)
	}

	return id, nil
}

// Resolve follows $ref from id until it reaches a node without one. A node
// without $ref resolves to itself.
func (g *Graph) Resolve(id NodeID) NodeID {
	if id == NoNode {
		return NoNode
	}

	// Chains were checked for existence and cycles at load time.
	for g.nodes[id].Ref != "" {
		id = g.pointers[g.nodes[id].Ref]
	}

	return id
}

// Child returns the property name of the node id resolves to.
func (g *Graph) Child(id NodeID, name string) (NodeID, bool) {
	id = g.Resolve(id)
	if id == NoNode {
		return NoNode, false
	}

	child, ok := g.nodes[id].Properties[name]

	return child, ok
}

// PropertyNames returns the property names of the node id resolves to.
// Names listed in the schema's PropertyOrder come first, in that order;
// the rest follow sorted.
func (g *Graph) PropertyNames(id NodeID) []string {
	id = g.Resolve(id)
	if id == NoNode {
		return nil
	}

	n := g.nodes[id]

	names := make([]string, 0, len(n.Properties))
	seen := make(map[string]bool, len(n.Properties))

	for _, name := range n.PropertyOrder {
		if _, ok := n.Properties[name]; ok && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	rest := make([]string, 0, len(n.Properties)-len(names))

	for name := range n.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}

	slices.Sort(rest)

	return append(names, rest...)
}

// PatternNames returns the sorted patternProperties keys of the node id
// resolves to.
func (g *Graph) PatternNames(id NodeID) []string {
	id = g.Resolve(id)
	if id == NoNode {
		return nil
	}

	names := make([]string, 0, len(g.nodes[id].PatternProperties))
	for name := range g.nodes[id].PatternProperties {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// add copies s and its subschemas into the arena and returns its ID.
func (g *Graph) add(s *jsonschema.Schema, pointer string) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{Pointer: pointer, Items: NoNode})
	g.pointers[pointer] = id

	n := Node{
		Pointer:       pointer,
		Ref:           s.Ref,
		Required:      slices.Clone(s.Required),
		PropertyOrder: slices.Clone(s.PropertyOrder),
		Items:         NoNode,
	}

	switch {
	case s.Type != "":
		n.Types = []string{s.Type}
	case len(s.Types) > 0:
		n.Types = slices.Clone(s.Types)
	}

	g.addMap(s.Definitions, pointer+"/definitions")
	g.addMap(s.Defs, pointer+"/$defs")

	if len(s.Properties) > 0 {
		n.Properties = g.addMap(s.Properties, pointer+"/properties")
	}

	if len(s.PatternProperties) > 0 {
		n.PatternProperties = g.addMap(s.PatternProperties, pointer+"/patternProperties")
	}

	if s.Items != nil {
		n.Items = g.add(s.Items, pointer+"/items")
	}

	for i, item := range s.ItemsArray {
		g.add(item, pointer+"/items/"+strconv.Itoa(i))
	}

	if s.AdditionalProperties != nil {
		g.add(s.AdditionalProperties, pointer+"/additionalProperties")
	}

	n.OneOf = g.addList(s.OneOf, pointer+"/oneOf")
	g.addList(s.AnyOf, pointer+"/anyOf")
	g.addList(s.AllOf, pointer+"/allOf")

	g.nodes[id] = n

	return id
}

func (g *Graph) addMap(m map[string]*jsonschema.Schema, prefix string) map[string]NodeID {
	if len(m) == 0 {
		return nil
	}

	ids := make(map[string]NodeID, len(m))

	for name, s := range m {
		if s == nil {
			continue
		}

		ids[name] = g.add(s, prefix+"/"+escapePointer(name))
	}

	return ids
}

func (g *Graph) addList(list []*jsonschema.Schema, prefix string) []NodeID {
	if len(list) == 0 {
		return nil
	}

	ids := make([]NodeID, 0, len(list))

	for i, s := range list {
		if s == nil {
			continue
		}

		ids = append(ids, g.add(s, prefix+"/"+strconv.Itoa(i)))
	}

	return ids
}

// check verifies that every $ref has a target and that no $ref chain loops
// without reaching a concrete schema.
func (g *Graph) check() error {
	for _, n := range g.nodes {
		if n.Ref == "" {
			continue
		}

		if _, ok := g.pointers[n.Ref]; !ok {
			return fmt.Errorf("%w: %q at %s", ErrUnresolvedRef, n.Ref, n.Pointer)
		}
	}

	for i := range g.nodes {
		seen := make(map[NodeID]bool)

		for id := NodeID(i); g.nodes[id].Ref != ""; id = g.pointers[g.nodes[id].Ref] {
			if seen[id] {
				return fmt.Errorf("%w: starting at %s", ErrRefCycle, g.nodes[i].Pointer)
			}

			seen[id] = true
		}
	}

	return nil
}

// escapePointer escapes a member name for use as a JSON pointer segment.
func escapePointer(name string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
}
