package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"snex/internal/diag"
	"snex/internal/render"
	"snex/internal/types"
)

var checkJobs int

func init() {
	checkCmd.Flags().IntVarP(&checkJobs, "jobs", "j", 0, "manifests compiled in parallel (0 = number of CPUs)")
}

var checkCmd = &cobra.Command{
	Use:   "check <manifest.toml>...",
	Short: "Declare every manifest and report diagnostics",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jobs := checkJobs
		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}
		reg := types.NewRegistry()
		units := make([]*unit, len(args))

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(jobs)
		for i, path := range args {
			g.Go(func() error {
				u, err := compile(ctx, path, reg)
				if err != nil {
					return err
				}
				units[i] = u
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		// Merge grows the limit to fit every unit.
		total := diag.NewBag(0)
		for _, u := range units {
			if err := report(out, cmd.ErrOrStderr(), u); err != nil {
				return err
			}
			total.Merge(u.bag)
		}
		if err := render.Summary(out, total); err != nil {
			return err
		}
		if total.HasErrors() {
			return errFailed
		}
		if total.Len() == 0 {
			fmt.Fprintf(out, "%d manifest(s) ok, %d type(s) instantiated\n", len(units), reg.Len())
		}
		return nil
	},
}
