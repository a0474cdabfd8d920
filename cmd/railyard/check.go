package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// errInvalidLayout is returned when validation finds errors.
var errInvalidLayout = errors.New("layout has validation errors")

func newCheckCmd(c *cli) *cobra.Command {
	var watchFlag bool

	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Report connectivity, networks and validation findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !watchFlag {
				return c.check(cmd, path)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if err := c.check(cmd, path); err != nil {
				c.logger.Warn("check failed", slog.String("error", err.Error()))
			}
			return watch(ctx, c.logger, path, func() {
				if err := c.check(cmd, path); err != nil {
					c.logger.Warn("check failed", slog.String("error", err.Error()))
				}
			})
		},
	}

	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "re-check whenever the file changes")
	return cmd
}

func (c *cli) check(cmd *cobra.Command, path string) error {
	pieces, err := c.evaluateFile(path)
	if err != nil {
		return err
	}
	r := buildReport(path, pieces)
	if err := r.write(cmd.OutOrStdout(), c.jsonOutput); err != nil {
		return err
	}
	if r.HasErrors {
		return errInvalidLayout
	}
	return nil
}

// watch calls onChange every time path is written or re-created until ctx
// is done. The parent directory is watched so editors that replace the
// file on save are handled.
func watch(ctx context.Context, logger *slog.Logger, path string, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving path %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	logger.Info("watching layout", slog.String("file", abs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Debug("layout changed", slog.String("op", ev.Op.String()))
				onChange()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}
