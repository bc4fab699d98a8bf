package complete

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"go.jacobcolvin.com/wfcomplete/schemagraph"
	"go.jacobcolvin.com/wfcomplete/yamlctx"
)

// ErrSchemaUnavailable is returned by [Provider.Reload] when the schema file
// cannot be turned into a [Table].
var ErrSchemaUnavailable = errors.New("schema unavailable")

// Provider answers completion requests for one editing session.
//
// The flattened schema is built by [Provider.Reload] and replaced as a
// whole on every reload, so [Provider.Complete] can run concurrently with a
// reload and sees either the old table or the new one. Until a reload
// succeeds, Complete returns no suggestions.
//
// Create instances with [NewProvider].
type Provider struct {
	table      atomic.Pointer[Table]
	logger     *slog.Logger
	schemaPath string
	rootRef    string
}

// Option configures a [Provider].
type Option func(*Provider)

// WithLogger sets the logger used for reload and request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithRootRef sets the $ref of the schema describing the whole document.
// The default is the document root.
func WithRootRef(ref string) Option {
	return func(p *Provider) {
		p.rootRef = ref
	}
}

// NewProvider creates a [Provider] for the schema file at schemaPath. The
// schema is not read until [Provider.Reload] is called.
func NewProvider(schemaPath string, opts ...Option) *Provider {
	p := &Provider{
		schemaPath: schemaPath,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SchemaPath returns the path of the schema file.
func (p *Provider) SchemaPath() string {
	return p.schemaPath
}

// Table returns the current table, or nil if no schema is loaded.
func (p *Provider) Table() *Table {
	return p.table.Load()
}

// Reload reads, parses and flattens the schema file and swaps in the new
// table. On failure the current table is dropped and the error is logged.
func (p *Provider) Reload() error {
	t, err := p.load()
	if err != nil {
		p.table.Store(nil)
		p.logger.Error("load schema",
			slog.String("path", p.schemaPath),
			slog.Any("error", err),
		)

		return fmt.Errorf("%w: %w", ErrSchemaUnavailable, err)
	}

	p.table.Store(t)
	p.logger.Info("schema loaded",
		slog.String("path", p.schemaPath),
		slog.Int("fields", t.Len()),
	)

	return nil
}

func (p *Provider) load() (*Table, error) {
	g, err := schemagraph.ReadFile(p.schemaPath)
	if err != nil {
		return nil, err
	}

	return Flatten(g, p.rootRef)
}

// Complete returns the keys to offer at pos in text. Keys are filtered by
// the partial key already typed before the caret. Complete never panics;
// any failure yields no suggestions.
func (p *Provider) Complete(text string, pos yamlctx.Position) (suggestions []string) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("completion request",
				slog.Int("line", pos.Line),
				slog.Int("column", pos.Column),
				slog.Any("panic", r),
			)

			suggestions = nil
		}
	}()

	t := p.table.Load()
	if t == nil {
		return nil
	}

	ctx, ok := yamlctx.Resolve(yamlctx.Lines(text), pos)
	if !ok {
		p.logger.Debug("no completion context",
			slog.Int("line", pos.Line),
			slog.Int("column", pos.Column),
		)

		return nil
	}

	for _, key := range Suggest(t, ctx) {
		if strings.HasPrefix(key, ctx.Prefix) {
			suggestions = append(suggestions, key)
		}
	}

	p.logger.Debug("completion request",
		slog.Int("depth", ctx.Depth),
		slog.Any("ancestors", ctx.Ancestors),
		slog.Int("suggestions", len(suggestions)),
	)

	return suggestions
}
