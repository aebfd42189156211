package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lumipallolabs/fsview/internal/core"
	"github.com/lumipallolabs/fsview/internal/layout"
	"github.com/lumipallolabs/fsview/internal/logging"
	"github.com/lumipallolabs/fsview/internal/prefs"
	"github.com/lumipallolabs/fsview/internal/ui"
)

// runView scans path and opens the interactive viewer. Without a path the
// last scanned path is reused, falling back to the working directory.
func runView(ctx context.Context, opts *options, path string) error {
	logger := loggerFromContext(ctx)

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	pm := prefs.NewManager("")
	if err := pm.Load(); err != nil {
		logger.Warn("ignoring unreadable prefs", "err", err)
	}
	last := pm.Prefs()
	if path == "" {
		path = last.LastPath
	}
	if path == "" {
		path = "."
	}
	// A remembered mode wins over the config default, not over --mode
	if opts.mode == "" {
		if _, err := layout.ParseMode(last.LastMode); err == nil {
			cfg.Mode = last.LastMode
		}
	}

	if opts.verbose && !logging.Enabled {
		f, err := debugLogFile()
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logging.SetOutput(f, log.DebugLevel)
	}

	c := core.NewController(path, cfg, pm)
	defer c.Stop()

	p := tea.NewProgram(ui.NewApp(c), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run viewer: %w", err)
	}
	return nil
}
