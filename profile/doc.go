// Package profile records CPU and heap profiles around a unit of work, such
// as loading and flattening a schema.
//
// Register the flags on a command, then wrap the work:
//
//	cfg := profile.NewConfig()
//	cfg.RegisterFlags(cmd.Flags())
//
//	p := cfg.NewProfiler()
//	err := p.Start()
//	// ...
//	err = errors.Join(err, p.Stop())
//
// Both profiles are off unless a path is given, for example
// --cpu-profile=cpu.prof.
package profile
