package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"snex/internal/namespace"
	"snex/internal/snapshot"
)

var (
	tokensOut      string
	tokensReuse    bool
	tokensInternal bool
	tokensQuiet    bool
)

func init() {
	tokensCmd.Flags().StringVarP(&tokensOut, "out", "o", "", "write the token list to a msgpack snapshot")
	tokensCmd.Flags().BoolVar(&tokensReuse, "reuse", false, "read --out instead of compiling when it is newer than the manifest")
	tokensCmd.Flags().BoolVar(&tokensInternal, "internal", false, "include builtin symbols")
	tokensCmd.Flags().BoolVarP(&tokensQuiet, "quiet", "q", false, "do not print the tokens")
}

var tokensCmd = &cobra.Command{
	Use:   "tokens <manifest.toml>",
	Short: "List completion tokens of a manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if tokensReuse && tokensOut != "" {
			if snap, ok := freshSnapshot(path, tokensOut); ok {
				return printTokens(cmd.OutOrStdout(), snap.Tokens)
			}
		}

		u, err := compileOne(cmd.Context(), cmd.ErrOrStderr(), path)
		if err != nil {
			return err
		}
		tokens := u.session.Handler().TokenList(namespace.DumpOptions{Internal: tokensInternal})
		if tokensOut != "" {
			if err := snapshot.Save(tokensOut, path, tokens); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
		}
		return printTokens(cmd.OutOrStdout(), tokens)
	},
}

// freshSnapshot returns the snapshot at snapPath if it was made from
// manifest after its last modification.
func freshSnapshot(manifest, snapPath string) (*snapshot.File, bool) {
	info, err := os.Stat(manifest)
	if err != nil {
		return nil, false
	}
	snap, ok, err := snapshot.Load(snapPath)
	if err != nil || !ok || snap.Source != manifest {
		return nil, false
	}
	if snap.Created.Before(info.ModTime()) {
		return nil, false
	}
	return snap, true
}

func printTokens(w io.Writer, tokens []namespace.Token) error {
	if tokensQuiet {
		return nil
	}
	for _, tok := range tokens {
		detail := tok.Type
		if tok.Signature != "" {
			detail = tok.Signature
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", tok.ID, tok.Kind, detail); err != nil {
			return err
		}
	}
	return nil
}
