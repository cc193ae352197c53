// Package prof captures pprof profiles and runtime traces of a snexc run.
package prof

import (
	"os"
	"runtime"
	"runtime/pprof"
	rtrace "runtime/trace"

	"go.uber.org/multierr"
)

// Options names the output files; empty paths disable the profile.
type Options struct {
	CPU     string
	Mem     string
	Runtime string
}

func (o Options) Enabled() bool { return o.CPU != "" || o.Mem != "" || o.Runtime != "" }

// Session is an active set of profiles.
type Session struct {
	opts      Options
	cpuFile   *os.File
	traceFile *os.File
}

// Start begins the CPU profile and the runtime trace. The heap profile is
// written by Stop.
func Start(opts Options) (*Session, error) {
	s := &Session{opts: opts}
	if opts.CPU != "" {
		f, err := os.Create(opts.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		s.cpuFile = f
	}
	if opts.Runtime != "" {
		f, err := os.Create(opts.Runtime)
		if err != nil {
			return nil, multierr.Append(err, s.Stop())
		}
		if err := rtrace.Start(f); err != nil {
			_ = f.Close()
			return nil, multierr.Append(err, s.Stop())
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends every profile and writes the heap profile. It is safe to call
// more than once.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	var errs error
	if s.cpuFile != nil {
		pprof.StopCPUProfile()
		errs = multierr.Append(errs, s.cpuFile.Close())
		s.cpuFile = nil
	}
	if s.traceFile != nil {
		rtrace.Stop()
		errs = multierr.Append(errs, s.traceFile.Close())
		s.traceFile = nil
	}
	if s.opts.Mem != "" {
		errs = multierr.Append(errs, writeHeap(s.opts.Mem))
		s.opts.Mem = ""
	}
	return errs
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, f.Close()) }()
	runtime.GC()
	return pprof.WriteHeapProfile(f)
}
