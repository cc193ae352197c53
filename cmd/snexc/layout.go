package main

import (
	"github.com/spf13/cobra"

	"snex/internal/decl"
	"snex/internal/diag"
	"snex/internal/ident"
	"snex/internal/render"
	"snex/internal/session"
)

var layoutNamespace string

func init() {
	layoutCmd.Flags().StringVarP(&layoutNamespace, "namespace", "n", "", "namespace the type is resolved from")
}

var layoutCmd = &cobra.Command{
	Use:   "layout <manifest.toml> <type>",
	Short: "Print the memory layout of a type",
	Long:  `layout resolves a type expression such as "dsp::Pair<float>" against a manifest and prints member offsets, padding and sizes`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := compileOne(cmd.Context(), cmd.ErrOrStderr(), args[0])
		if err != nil {
			return err
		}
		s := u.session
		restore := s.Handler().Goto(ident.Parse(layoutNamespace))
		t, err := decl.ResolveTypeString(s, args[1])
		restore()
		if err != nil {
			d := diag.NewError(session.Classify(err), diag.Location{File: args[0], Subject: args[1]}, err.Error())
			if err := render.Diagnostics(cmd.ErrOrStderr(), []diag.Diagnostic{d}, env.colour); err != nil {
				return err
			}
			return errFailed
		}
		return render.Layout(cmd.OutOrStdout(), t)
	},
}
