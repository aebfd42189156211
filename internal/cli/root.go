package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/lumipallolabs/fsview/internal/config"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the build information shown by `fsview version`. main
// calls it with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// options are the persistent flags shared by every command
type options struct {
	configPath string
	mode       string
	noCache    bool
	verbose    bool
}

// load reads the config file and applies flag overrides
func (o *options) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.mode != "" {
		if _, err := layout.ParseMode(o.mode); err != nil {
			return cfg, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = o.mode
	}
	if o.noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

// Execute runs the fsview CLI
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "fsview [path]",
		Short: "fsview shows where your disk space went",
		Long: `fsview scans a directory tree and lays it out in one of three views:
a radial disc, a treemap, or a city of platforms you can expand and collapse.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := log.InfoLevel
			if opts.verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level)))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runView(cmd.Context(), opts, path)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath(), "config file")
	flags.StringVarP(&opts.mode, "mode", "m", "", "layout mode: disc, map or tree")
	flags.BoolVar(&opts.noCache, "no-cache", false, "do not read or write scan snapshots")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newLayoutCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fsview %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
		},
	}
}

// debugLogFile opens the debug log used by the interactive viewer, which
// cannot log to the terminal it draws on
func debugLogFile() (*os.File, error) {
	return os.OpenFile("debug.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
