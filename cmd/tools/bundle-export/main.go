// cmd/tools/bundle-export/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"venture-builder/internal/bundle"
	"venture-builder/internal/content"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "bundle-export",
		Short:        "Build site bundles from saved venture content",
		SilenceUsage: true,
	}
	root.AddCommand(newArchiveCmd(), newFilesCmd())
	return root
}

func newArchiveCmd() *cobra.Command {
	var input, name, out string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Write the bundle as a zip archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := assemble(cmd.InOrStdin(), input, name)
			if err != nil {
				return err
			}
			path, err := bundle.SaveArchive(b, out)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d files, %d bytes)\n", path, b.Len(), b.Size())
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "Content JSON file, - for stdin")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.Flags().StringVar(&out, "out", ".", "Output directory")
	cmd.MarkFlagRequired("name")
	return cmd
}

func newFilesCmd() *cobra.Command {
	var input, name string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the files the bundle would contain",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := assemble(cmd.InOrStdin(), input, name)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tBYTES")
			for _, f := range b.Files() {
				fmt.Fprintf(w, "%s\t%d\n", f.Path, len(f.Content))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "Content JSON file, - for stdin")
	cmd.Flags().StringVar(&name, "name", "", "Project name")
	cmd.MarkFlagRequired("name")
	return cmd
}

func assemble(stdin io.Reader, input, name string) (*bundle.Bundle, error) {
	var (
		raw []byte
		err error
	)
	if input == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}

	c, err := content.Parse(raw)
	if err != nil {
		return nil, err
	}
	return bundle.NewAssembler(nil).Assemble(c, name)
}
