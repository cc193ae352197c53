package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"snex/internal/decl"
	"snex/internal/diag"
	"snex/internal/render"
	"snex/internal/session"
	"snex/internal/trace"
	"snex/internal/types"
)

// unit is one compiled manifest.
type unit struct {
	path    string
	session *session.Session
	result  *decl.Result
	// bag holds the diagnostics; for a manifest that failed to load it is
	// the only output.
	bag *diag.Bag
}

func (u *unit) failed() bool { return u.bag.HasErrors() }

// compile loads path and replays it into a fresh session. Load failures are
// returned as a unit with a single diagnostic, not as an error.
func compile(ctx context.Context, path string, reg *types.Registry) (*unit, error) {
	u := &unit{path: path}
	m, err := decl.Load(path)
	if err != nil {
		u.bag = diag.NewBag(1)
		u.bag.Add(diag.NewError(loadCode(err), diag.Location{File: path}, err.Error()))
		return u, nil
	}
	s, err := session.New(session.Options{
		File:           path,
		Padding:        env.padding,
		MaxDiagnostics: env.maxDiagnostics,
		Registry:       reg,
		Tracer:         trace.FromContext(ctx),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	u.session = s
	u.result = decl.Build(s, m)
	s.Close()
	u.bag = s.Diagnostics()
	u.bag.Sort()
	return u, nil
}

func loadCode(err error) diag.Code {
	var coded session.Coded
	if errors.As(err, &coded) {
		return coded.DiagCode()
	}
	return diag.IOLoadFileError
}

// report prints the diagnostics of u and, with --timings, its pass timings.
func report(out, errOut io.Writer, u *unit) error {
	if err := renderDiagnostics(out, u.bag); err != nil {
		return err
	}
	if env.timings && u.session != nil {
		_, err := fmt.Fprintf(errOut, "%s:\n%s", u.path, u.session.Timer().Summary())
		return err
	}
	return nil
}

// compileOne compiles a single manifest for the inspection commands, which
// refuse to run on a manifest with errors.
func compileOne(ctx context.Context, errOut io.Writer, path string) (*unit, error) {
	u, err := compile(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if err := report(errOut, errOut, u); err != nil {
		return nil, err
	}
	if u.failed() {
		return nil, errFailed
	}
	return u, nil
}

func renderDiagnostics(w io.Writer, bag *diag.Bag) error {
	return render.Diagnostics(w, bag.Items(), env.colour)
}
