package complete

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.jacobcolvin.com/wfcomplete/settings"
)

// DefaultSchemaFile is the schema file name looked up in the schema
// directory.
const DefaultSchemaFile = "workflow.schema.json"

// Flags holds CLI flag names for completion configuration, allowing callers
// to customize flag names while keeping sensible defaults via [NewConfig].
type Flags struct {
	SchemaDir  string
	SchemaFile string
	RootRef    string
	Settings   string
}

// NewConfig creates a new [Config] embedding these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{
		Flags: f,
	}
}

// Config holds CLI flag values for completion configuration.
//
// The schema directory is taken from SchemaDir when set, otherwise from the
// persisted [settings.Settings], otherwise the user's home directory.
//
// Create instances with [NewConfig] and register CLI flags with
// [Config.RegisterFlags]. Use [Config.NewProvider] to create a [Provider].
type Config struct {
	Flags      Flags
	SchemaDir  string
	SchemaFile string
	RootRef    string
	Settings   string
}

// NewConfig returns a new [Config] with default flag names.
func NewConfig() *Config {
	f := Flags{
		SchemaDir:  "schema-dir",
		SchemaFile: "schema-file",
		RootRef:    "root-ref",
		Settings:   "settings",
	}

	return f.NewConfig()
}

// RegisterFlags adds completion flags to the given [*pflag.FlagSet].
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.SchemaDir, c.Flags.SchemaDir, "",
		"directory holding the workflow JSON Schema (default from settings, then home directory)")
	flags.StringVar(&c.SchemaFile, c.Flags.SchemaFile, DefaultSchemaFile,
		"schema file name within the schema directory")
	flags.StringVar(&c.RootRef, c.Flags.RootRef, "#",
		"$ref of the schema describing a whole document")
	flags.StringVar(&c.Settings, c.Flags.Settings, "",
		"settings file path (default under the user config directory)")
}

// RegisterCompletions registers shell completions for completion flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.SchemaDir,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.SchemaDir, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.SchemaFile,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"json"}, cobra.ShellCompDirectiveFilterFileExt
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.SchemaFile, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.RootRef,
		cobra.FixedCompletions([]string{"#"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.RootRef, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Settings,
		func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
		})
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Settings, err)
	}

	return nil
}

// SettingsPath returns the settings file path from the flag or its
// default location.
func (c *Config) SettingsPath() (string, error) {
	if c.Settings != "" {
		return c.Settings, nil
	}

	return settings.DefaultPath()
}

// SchemaPath returns the full path of the schema file.
func (c *Config) SchemaPath() (string, error) {
	file := c.SchemaFile
	if file == "" {
		file = DefaultSchemaFile
	}

	if filepath.IsAbs(file) {
		return file, nil
	}

	dir := c.SchemaDir
	if dir == "" {
		var s settings.Settings

		path, err := c.SettingsPath()
		if err == nil {
			s, err = settings.Load(path)
			if err != nil {
				return "", err
			}
		}

		dir, err = s.SchemaDirOrDefault()
		if err != nil {
			return "", err
		}
	}

	return filepath.Join(dir, file), nil
}

// NewProvider creates a [Provider] using this [Config]. The schema is not
// loaded; call [Provider.Reload].
func (c *Config) NewProvider(logger *slog.Logger) (*Provider, error) {
	path, err := c.SchemaPath()
	if err != nil {
		return nil, err
	}

	opts := []Option{WithRootRef(c.RootRef)}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}

	return NewProvider(path, opts...), nil
}
