package complete_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/wfcomplete/complete"
	"go.jacobcolvin.com/wfcomplete/schemagraph"
	"go.jacobcolvin.com/wfcomplete/stringtest"
	"go.jacobcolvin.com/wfcomplete/yamlctx"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	table := loadTable(t)

	tcs := map[string]struct {
		doc  string
		want []string
	}{
		"empty document": {
			doc:  "‸",
			want: []string{"name", "on", "jobs", "stages", "from", "parameters"},
		},
		"present keys are not suggested again": {
			doc: stringtest.JoinLF(
				"name: ci",
				"on:",
				"  push: {}",
				"‸",
			),
			want: []string{"jobs", "stages", "from", "parameters"},
		},
		"siblings below the caret count": {
			doc: stringtest.JoinLF(
				"‸",
				"name: ci",
				"stages:",
				"  build: {}",
			),
			want: []string{"on", "jobs", "from", "parameters"},
		},
		"root branch excludes the other": {
			doc: stringtest.JoinLF(
				"from: .cds/template.yml",
				"‸",
			),
			want: []string{"name", "on", "stages", "parameters"},
		},
		"nested object": {
			doc: stringtest.JoinLF(
				"on:",
				"  push:",
				"    branches: [main]",
				"  ‸",
			),
			want: []string{"pull-request", "model-update"},
		},
		"job under user-defined name": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    ‸",
			),
			want: []string{
				"name", "if", "stage", "needs", "runs-on", "steps",
				"services", "strategy", "timeout", "vars",
			},
		},
		"step with uses": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    steps:",
				"      - uses: actions/checkout",
				"        ‸",
			),
			want: []string{"id", "if", "with", "continue-on-error"},
		},
		"step with run": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    steps:",
				"      - id: test",
				"        run: make test",
				"        ‸",
			),
			want: []string{"if", "with", "continue-on-error"},
		},
		"new list item ignores previous item": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    steps:",
				"      - uses: actions/checkout",
				"      - ‸",
			),
			want: []string{"id", "if", "uses", "run", "with", "continue-on-error"},
		},
		"chosen branch keeps its own keys": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    runs-on:",
				"      worker_model: ubuntu",
				"      ‸",
			),
			want: []string{"flavor", "image", "model"},
		},
		"key shared by branches excludes nothing": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    runs-on:",
				"      image: ubuntu",
				"      ‸",
			),
			want: []string{"flavor", "memory", "model", "worker_model"},
		},
		"two grouped siblings intersect": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    runs-on:",
				"      image: ubuntu",
				"      memory: 4G",
				"      ‸",
			),
			want: []string{"flavor", "model"},
		},
		"nested wildcard": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    services:",
				"      postgres:",
				"        image: postgres:16",
				"        ‸",
			),
			want: []string{"env", "readiness"},
		},
		"map entry branch excludes the other": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    services:",
				"      cache:",
				"        build: ./cache",
				"        ‸",
			),
			want: []string{"env", "readiness"},
		},
		"map entry before any branch key": {
			doc: stringtest.JoinLF(
				"jobs:",
				"  build:",
				"    services:",
				"      cache:",
				"        ‸",
			),
			want: []string{"image", "build", "env", "readiness"},
		},
		"unknown parent": {
			doc: stringtest.JoinLF(
				"unknown:",
				"  ‸",
			),
		},
		"map of scalars": {
			doc: stringtest.JoinLF(
				"parameters:",
				"  ‸",
			),
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			text, line, col := stringtest.Caret(tc.doc)

			ctx, ok := yamlctx.Resolve(yamlctx.Lines(text), yamlctx.Position{Line: line, Column: col})
			require.True(t, ok)

			assert.ElementsMatch(t, tc.want, complete.Suggest(table, ctx))
		})
	}
}

func TestSuggestRootMatchesDepthZero(t *testing.T) {
	t.Parallel()

	table := loadTable(t)

	var want []string

	for _, f := range table.Fields() {
		if f.Depth == 0 {
			want = append(want, f.Name)
		}
	}

	got := complete.Suggest(table, yamlctx.Context{})
	assert.Equal(t, want, got)
}

func TestSuggestNoDuplicates(t *testing.T) {
	t.Parallel()

	g, err := schemagraph.Parse([]byte(`{
		"type": "object",
		"properties": {
			"cache": {
				"oneOf": [
					{"type": "object", "properties": {"key": {"type": "string"}}},
					{"type": "object", "properties": {"key": {"type": "string"}, "paths": {"type": "array"}}}
				]
			}
		}
	}`))
	require.NoError(t, err)

	table, err := complete.Flatten(g, "")
	require.NoError(t, err)

	require.Len(t, table.Fields(), 4)

	got := complete.Suggest(table, yamlctx.Context{
		Ancestors: []string{"cache"},
		Depth:     1,
	})
	assert.Equal(t, []string{"key", "paths"}, got)
}

func TestSuggestNilTable(t *testing.T) {
	t.Parallel()

	assert.Empty(t, complete.Suggest(nil, yamlctx.Context{}))
}
