package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.jacobcolvin.com/wfcomplete/complete"
	"go.jacobcolvin.com/wfcomplete/profile"
)

const testSchema = "../../complete/testdata/workflow.schema.json"

func newTestProvider(t *testing.T) *complete.Provider {
	t.Helper()

	p := complete.NewProvider(testSchema,
		complete.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, p.Reload())

	return p
}

func TestHandleRequests(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input string
		want  []string
	}{
		"root suggestions with prefix": {
			input: `{"text": "j", "line": 0, "column": 1}`,
			want:  []string{`{"suggestions":["jobs"]}`},
		},
		"nested suggestions": {
			input: `{"text": "jobs:\n  build:\n    steps:\n      - uses: x\n        i", "line": 4, "column": 9}`,
			want:  []string{`{"suggestions":["id","if"]}`},
		},
		"no suggestions is an empty list": {
			input: `{"text": "name: ", "line": 0, "column": 6}`,
			want:  []string{`{"suggestions":[]}`},
		},
		"reload": {
			input: `{"reload": true}`,
			want:  []string{`{"suggestions":[]}`},
		},
		"malformed request keeps the session": {
			input: "not json\n\n" + `{"text": "fr", "line": 0, "column": 2}`,
			want: []string{
				`{"error":"decode request: invalid character 'o' in literal null (expecting 'u')"}`,
				`{"suggestions":["from"]}`,
			},
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			err := handleRequests(newTestProvider(t), strings.NewReader(tc.input), &out)
			require.NoError(t, err)

			lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
			require.Len(t, lines, len(tc.want))

			for i, want := range tc.want {
				assert.JSONEq(t, want, lines[i])
			}
		})
	}
}

func TestHandleRequestsReloadFailure(t *testing.T) {
	t.Parallel()

	p := complete.NewProvider("does-not-exist.json",
		complete.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	var out bytes.Buffer

	require.NoError(t, handleRequests(p, strings.NewReader(`{"reload": true}`), &out))

	var resp map[string]any

	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Contains(t, resp["error"], "schema unavailable")
	assert.NotContains(t, resp, "suggestions")
}

func TestServe(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	input := `{"text": "", "line": 0, "column": 0}` + "\n"

	err := serve(t.Context(), newTestProvider(t), strings.NewReader(input), &out, true)
	require.NoError(t, err)

	var resp response

	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.ElementsMatch(t,
		[]string{"name", "on", "jobs", "stages", "from", "parameters"},
		resp.Suggestions,
	)
}

func TestWriteResult(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		value  any
		err    error
		format string
		want   string
	}{
		"text": {
			format: "text",
			value:  []string{"id", "if"},
			want:   "id\nif\n",
		},
		"text empty": {
			format: "text",
			value:  []string{},
			want:   "",
		},
		"json": {
			format: "json",
			value:  []string{"id"},
			want:   "[\n  \"id\"\n]\n",
		},
		"yaml": {
			format: "yaml",
			value:  []string{"id", "if"},
			want:   "- id\n- if\n",
		},
		"text of fields": {
			format: "text",
			value:  []complete.Field{{Name: "id"}},
			err:    ErrUnknownOutput,
		},
		"unknown format": {
			format: "xml",
			value:  []string{"id"},
			err:    ErrUnknownOutput,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			err := writeResult(&out, tc.format, tc.value)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestLineLength(t *testing.T) {
	t.Parallel()

	text := "jobs:\r\n  build:\n"

	assert.Equal(t, 5, lineLength(text, 0))
	assert.Equal(t, 8, lineLength(text, 1))
	assert.Equal(t, 0, lineLength(text, 2))
	assert.Equal(t, 0, lineLength(text, 9))
	assert.Equal(t, 0, lineLength(text, -1))
}

func TestReadInput(t *testing.T) {
	t.Parallel()

	got, err := readInput(strings.NewReader("name: ci"), "-")
	require.NoError(t, err)
	assert.Equal(t, "name: ci", got)

	got, err = readInput(nil, testSchema)
	require.NoError(t, err)
	assert.Contains(t, got, "V2Workflow")

	_, err = readInput(nil, "does-not-exist.yaml")
	require.ErrorIs(t, err, ErrReadInput)
}

func TestLoadProfiled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg := complete.NewConfig()
	cfg.SchemaDir = filepath.Dir(testSchema)
	cfg.SchemaFile = filepath.Base(testSchema)

	profCfg := profile.NewConfig()
	profCfg.CPUProfile = filepath.Join(dir, "cpu.prof")
	profCfg.HeapProfile = filepath.Join(dir, "heap.prof")

	p, err := loadProfiled(cfg, profCfg)
	require.NoError(t, err)
	assert.Positive(t, p.Table().Len())
	assert.FileExists(t, profCfg.CPUProfile)
	assert.FileExists(t, profCfg.HeapProfile)

	// Profiling is stopped even when the schema fails to load, so a
	// second run can start it again.
	cfg.SchemaFile = "missing.json"

	_, err = loadProfiled(cfg, profCfg)
	require.ErrorIs(t, err, complete.ErrSchemaUnavailable)

	cfg.SchemaFile = filepath.Base(testSchema)

	_, err = loadProfiled(cfg, profCfg)
	require.NoError(t, err)

	info, err := os.Stat(profCfg.CPUProfile)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
