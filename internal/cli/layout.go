package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lumipallolabs/fsview/internal/core"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/model"
	"github.com/lumipallolabs/fsview/internal/scanner"
	"github.com/spf13/cobra"
)

type layoutFlags struct {
	output    string
	expandAll bool
}

func newLayoutCmd(opts *options) *cobra.Command {
	var flags layoutFlags

	cmd := &cobra.Command{
		Use:   "layout <path>",
		Short: "Scan a directory and print its layout as JSON",
		Long: `Scan a directory, lay it out in the selected mode and print the geometry of
every node as JSON. Only the root directory is expanded unless --expand-all
is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if flags.output != "" {
				f, err := os.Create(flags.output)
				if err != nil {
					return fmt.Errorf("create %s: %w", flags.output, err)
				}
				defer f.Close()
				out = f
			}
			return runLayout(cmd.Context(), opts, flags, args[0], out)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&flags.expandAll, "expand-all", false, "expand every directory")
	return cmd
}

// runLayout scans path, lays it out and writes the JSON dump to w
func runLayout(ctx context.Context, opts *options, flags layoutFlags, path string, w io.Writer) error {
	logger := loggerFromContext(ctx)

	cfg, err := opts.load()
	if err != nil {
		return err
	}
	mode := cfg.LayoutMode()

	prog := newProgress(logger)
	tree, err := scanner.NewWalker(cfg.Scan.Workers).Scan(ctx, path)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	prog.done(fmt.Sprintf("Scanned %d nodes", tree.Len()))

	state := core.NewTreeState()
	if flags.expandAll {
		tree.Walk(model.RootDir, func(id model.NodeID) bool {
			if tree.IsDir(id) {
				state.SetExpanded(id, true)
			}
			return true
		})
	}

	prog = newProgress(logger)
	engine := layout.New(tree, state, layout.WithLogger(logger))
	engine.Init(mode)
	engine.Update()
	prog.done(fmt.Sprintf("Laid out %d nodes in %s mode", tree.Len(), mode))

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dumpLayout(engine)); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	return nil
}
