package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dferrors "github.com/docfind-go/docfind/internal/errors"
	"github.com/docfind-go/docfind/pkg/embed"
	"github.com/docfind-go/docfind/pkg/serialize"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <artifact.wasm>",
		Short: "Print summary statistics for a patched docfind artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
	return cmd
}

func runInspect(cmd *cobra.Command, artifactPath string) error {
	patched, err := os.ReadFile(artifactPath)
	if err != nil {
		return dferrors.InputMalformed("failed to read artifact", err).WithDetail("path", artifactPath)
	}

	envelope, err := embed.ExtractImage(patched)
	if err != nil {
		return err
	}

	img, err := serialize.Decode(envelope)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "version:          %d\n", img.Version)
	fmt.Fprintf(out, "documents:        %d\n", len(img.Docs))
	fmt.Fprintf(out, "keywords:         %d\n", len(img.Postings))
	fmt.Fprintf(out, "interned strings: %d\n", len(img.Strings))
	fmt.Fprintf(out, "image bytes:      %d\n", len(envelope))
	fmt.Fprintf(out, "artifact bytes:   %d\n", len(patched))
	return nil
}
