package profile

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
)

// ErrProfile indicates a profile could not be started or written.
var ErrProfile = errors.New("profile")

// Profiler records the profiles enabled in its [Config] between
// [Profiler.Start] and [Profiler.Stop].
//
// Create instances with [Config.NewProfiler].
type Profiler struct {
	cpuFile *os.File
	Config
}

// Start begins CPU profiling if enabled.
func (p *Profiler) Start() error {
	if p.CPUProfile == "" {
		return nil
	}

	f, err := os.Create(p.CPUProfile) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("%w: create cpu profile: %w", ErrProfile, err)
	}

	err = pprof.StartCPUProfile(f)
	if err != nil {
		return errors.Join(
			fmt.Errorf("%w: start cpu profile: %w", ErrProfile, err),
			f.Close(),
		)
	}

	p.cpuFile = f

	return nil
}

// Stop ends CPU profiling and writes the heap profile if enabled. Stop is
// safe to call without a successful Start.
func (p *Profiler) Stop() error {
	var errs []error

	if p.cpuFile != nil {
		pprof.StopCPUProfile()

		err := p.cpuFile.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: close cpu profile: %w", ErrProfile, err))
		}

		p.cpuFile = nil
	}

	if p.HeapProfile != "" {
		err := writeHeap(p.HeapProfile)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func writeHeap(path string) error {
	f, err := os.Create(path) //nolint:gosec // Profile path from CLI flag is expected.
	if err != nil {
		return fmt.Errorf("%w: create heap profile: %w", ErrProfile, err)
	}

	// Up-to-date statistics need a completed GC cycle.
	runtime.GC()

	err = pprof.Lookup("heap").WriteTo(f, 0)
	if err != nil {
		return errors.Join(fmt.Errorf("%w: write heap profile: %w", ErrProfile, err), f.Close())
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("%w: write heap profile: %w", ErrProfile, err)
	}

	return nil
}
