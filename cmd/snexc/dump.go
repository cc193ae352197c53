package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"snex/internal/namespace"
	"snex/internal/render"
)

var (
	dumpInternal bool
	dumpFormat   string
)

func init() {
	dumpCmd.Flags().BoolVar(&dumpInternal, "internal", false, "include builtin symbols")
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "tree", "output format (tree|source)")
}

var dumpCmd = &cobra.Command{
	Use:   "dump <manifest.toml>",
	Short: "Print the namespace tree of a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := compileOne(cmd.Context(), cmd.ErrOrStderr(), args[0])
		if err != nil {
			return err
		}
		opts := namespace.DumpOptions{Internal: dumpInternal || !env.cfg.Compiler.HideInternal}
		h := u.session.Handler()
		switch dumpFormat {
		case "tree":
			return render.Tree(cmd.OutOrStdout(), h, opts)
		case "source":
			return h.Dump(cmd.OutOrStdout(), opts)
		}
		return fmt.Errorf("unsupported format %q (must be tree or source)", dumpFormat)
	},
}
