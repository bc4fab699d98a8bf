// Package log provides structured logging handler construction for use with
// [log/slog].
//
// It supports [FormatJSON], [FormatLogfmt] and [FormatText] output, plus
// [FormatAuto], which picks text when writing to a terminal and logfmt
// otherwise. Editor integrations run the completion server with stderr
// redirected to a file, so auto keeps those logs machine-readable.
//
// Typical usage creates a [Config], registers flags, then builds a handler
// at startup:
//
//	cfg := log.NewConfig()
//	cfg.RegisterFlags(rootCmd.PersistentFlags())
//	cfg.RegisterCompletions(rootCmd)
//
//	handler, err := cfg.NewHandler(os.Stderr)
//	slog.SetDefault(slog.New(handler))
package log
