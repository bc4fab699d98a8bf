package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go.jacobcolvin.com/wfcomplete/complete"
	"go.jacobcolvin.com/wfcomplete/yamlctx"
)

// maxRequestSize bounds one request line, which carries a whole document.
const maxRequestSize = 16 << 20

type request struct {
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Reload bool   `json:"reload"`
}

type response struct {
	Suggestions []string `json:"suggestions,omitzero"`
	Error       string   `json:"error,omitempty"`
}

func newServeCmd(cfg *complete.Config) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer completion requests on stdin, one JSON object per line",
		Long: `serve reads one JSON request per line from stdin and writes one JSON response
per line to stdout, until stdin is closed.

  {"text": "<document>", "line": 3, "column": 4}  ->  {"suggestions": ["if", "with"]}
  {"reload": true}                                  ->  {"suggestions": []}

Malformed requests get {"error": "..."} and the session continues. With
--watch the schema is reloaded whenever its file changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := cfg.NewProvider(slog.Default())
			if err != nil {
				return err
			}

			// A missing schema is reported once and the session still starts,
			// so that a later reload can recover.
			_ = p.Reload()

			return serve(cmd.Context(), p, cmd.InOrStdin(), cmd.OutOrStdout(), watch)
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", true, "reload the schema when its file changes")

	return cmd
}

func serve(ctx context.Context, p *complete.Provider, r io.Reader, w io.Writer, watch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if watch {
		g.Go(func() error {
			err := p.Watch(ctx)
			if err != nil {
				slog.Warn("schema changes will not be picked up", slog.Any("error", err))
			}

			return nil
		})
	}

	// Reads from stdin cannot be interrupted, so the loop is not part of
	// the group and an interrupt returns without waiting for it.
	done := make(chan error, 1)

	go func() {
		done <- handleRequests(p, r, w)
	}()

	var err error

	select {
	case err = <-done:
	case <-ctx.Done():
	}

	cancel()

	return errors.Join(err, g.Wait())
}

// handleRequests answers requests read from r until r is exhausted.
func handleRequests(p *complete.Provider, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxRequestSize)

	enc := json.NewEncoder(w)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		err := enc.Encode(handle(p, line))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	return nil
}

func handle(p *complete.Provider, line []byte) response {
	var req request

	err := json.Unmarshal(line, &req)
	if err != nil {
		return response{Error: fmt.Sprintf("decode request: %v", err)}
	}

	if req.Reload {
		err := p.Reload()
		if err != nil {
			return response{Error: err.Error()}
		}

		return response{Suggestions: []string{}}
	}

	keys := p.Complete(req.Text, yamlctx.Position{Line: req.Line, Column: req.Column})
	if keys == nil {
		keys = []string{}
	}

	return response{Suggestions: keys}
}
