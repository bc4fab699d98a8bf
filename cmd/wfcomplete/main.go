// Package main provides the CLI entry point for wfcomplete, which suggests
// YAML keys for workflow files from the workflow's JSON Schema.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"go.jacobcolvin.com/wfcomplete/complete"
	"go.jacobcolvin.com/wfcomplete/log"
	"go.jacobcolvin.com/wfcomplete/profile"
	"go.jacobcolvin.com/wfcomplete/settings"
	"go.jacobcolvin.com/wfcomplete/version"
	"go.jacobcolvin.com/wfcomplete/yamlctx"
)

var (
	// ErrReadInput indicates the document could not be read.
	ErrReadInput = errors.New("read input")
	// ErrWriteOutput indicates results could not be written.
	ErrWriteOutput = errors.New("write output")
	// ErrUnknownOutput indicates an unsupported --output value.
	ErrUnknownOutput = errors.New("unknown output format")
)

var outputFormats = []string{"text", "json", "yaml"}

func main() {
	logCfg := log.NewConfig()
	cfg := complete.NewConfig()

	rootCmd := &cobra.Command{
		Use:   "wfcomplete",
		Short: "Suggest YAML keys for workflow files",
		Long: `wfcomplete suggests the YAML keys a workflow JSON Schema allows at a caret
position. Keys already present are not offered again, and keys belonging to a
different oneOf branch than the one already chosen are left out.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			return nil
		},
	}

	logCfg.RegisterFlags(rootCmd.PersistentFlags())
	cfg.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newSuggestCmd(cfg),
		newFieldsCmd(cfg),
		newServeCmd(cfg),
		newConfigCmd(cfg),
		newVersionCmd(),
	)

	completionErr := errors.Join(
		logCfg.RegisterCompletions(rootCmd),
		cfg.RegisterCompletions(rootCmd),
	)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func newSuggestCmd(cfg *complete.Config) *cobra.Command {
	var (
		line   int
		column int
		output string
		colon  bool
	)

	cmd := &cobra.Command{
		Use:   "suggest [flags] <file.yaml|->",
		Short: "Print the keys allowed at a caret position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			p, err := loadProvider(cfg)
			if err != nil {
				return err
			}

			if column < 0 {
				column = lineLength(text, line)
			}

			keys := p.Complete(text, yamlctx.Position{Line: line, Column: column})
			if keys == nil {
				keys = []string{}
			}

			if colon && output == "text" {
				for i, k := range keys {
					keys[i] = k + ": "
				}
			}

			return writeResult(cmd.OutOrStdout(), output, keys)
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 0, "zero-based caret line")
	cmd.Flags().IntVarP(&column, "column", "c", -1, "zero-based caret byte column (-1 for end of line)")
	cmd.Flags().StringVarP(&output, "output", "o", "text",
		fmt.Sprintf("output format, one of: %s", outputFormats))
	cmd.Flags().BoolVar(&colon, "colon", false, `append ": " to each key in text output`)

	err := cmd.RegisterFlagCompletionFunc("output",
		cobra.FixedCompletions(outputFormats, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	return cmd
}

func newFieldsCmd(cfg *complete.Config) *cobra.Command {
	var output string

	profCfg := profile.NewConfig()

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "Print the flattened schema table",
		Long: `fields loads and flattens the schema and prints every field it allows.
With --cpu-profile or --heap-profile, loading the schema is profiled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output == "text" {
				return fmt.Errorf("%w: %q", ErrUnknownOutput, output)
			}

			p, err := loadProfiled(cfg, profCfg)
			if err != nil {
				return err
			}

			return writeResult(cmd.OutOrStdout(), output, p.Table().Fields())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format, one of: [yaml json]")
	profCfg.RegisterFlags(cmd.Flags())

	err := errors.Join(
		cmd.RegisterFlagCompletionFunc("output",
			cobra.FixedCompletions([]string{"yaml", "json"}, cobra.ShellCompDirectiveNoFileComp)),
		profCfg.RegisterCompletions(cmd),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", err)
	}

	return cmd
}

func newConfigCmd(cfg *complete.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change persisted settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the settings file and resolved schema path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := cfg.SettingsPath()
			if err != nil {
				return err
			}

			s, err := settings.Load(path)
			if err != nil {
				return err
			}

			schemaPath, err := cfg.SchemaPath()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "settings: %s\n", path)
			fmt.Fprintf(out, "schemaDir: %s\n", s.SchemaDir)
			fmt.Fprintf(out, "schema: %s\n", schemaPath)

			return nil
		},
	}

	setDir := &cobra.Command{
		Use:   "set-schema-dir <dir>",
		Short: "Persist the directory holding the workflow schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := cfg.SettingsPath()
			if err != nil {
				return err
			}

			s, err := settings.Load(path)
			if err != nil {
				return err
			}

			s.SchemaDir = args[0]

			err = settings.Save(path, s)
			if err != nil {
				return err
			}

			slog.Info("settings saved",
				slog.String("path", path),
				slog.String("schemaDir", s.SchemaDir),
			)

			return nil
		},
		ValidArgsFunction: func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
	}

	cmd.AddCommand(show, setDir)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())
			if err != nil {
				return fmt.Errorf("%w: %w", ErrWriteOutput, err)
			}

			return nil
		},
	}
}

func loadProvider(cfg *complete.Config) (*complete.Provider, error) {
	p, err := cfg.NewProvider(slog.Default())
	if err != nil {
		return nil, err
	}

	err = p.Reload()
	if err != nil {
		return nil, err
	}

	return p, nil
}

// loadProfiled runs [loadProvider] under the profiles enabled in profCfg.
func loadProfiled(cfg *complete.Config, profCfg *profile.Config) (*complete.Provider, error) {
	prof := profCfg.NewProfiler()

	err := prof.Start()
	if err != nil {
		return nil, err
	}

	p, err := loadProvider(cfg)

	stopErr := prof.Stop()
	if err != nil || stopErr != nil {
		return nil, errors.Join(err, stopErr)
	}

	return p, nil
}

func readInput(stdin io.Reader, arg string) (string, error) {
	var (
		data []byte
		err  error
	)

	if arg == "-" {
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("%w: stdin: %w", ErrReadInput, err)
		}
	} else {
		data, err = os.ReadFile(arg) //nolint:gosec // Document path is user input.
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrReadInput, err)
		}
	}

	return string(data), nil
}

// lineLength returns the byte length of the zero-based line n of text, or 0
// when text has fewer lines.
func lineLength(text string, n int) int {
	lines := yamlctx.Lines(text)
	if n < 0 || n >= len(lines) {
		return 0
	}

	return len(lines[n])
}

func writeResult(w io.Writer, format string, v any) error {
	var (
		out []byte
		err error
	)

	switch format {
	case "json":
		out, err = json.MarshalIndent(v, "", "  ")
		out = append(out, '\n')

	case "yaml":
		out, err = yaml.Marshal(v)

	case "text":
		keys, ok := v.([]string)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
		}

		if len(keys) > 0 {
			out = []byte(strings.Join(keys, "\n") + "\n")
		}

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutput, format)
	}

	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	return nil
}
