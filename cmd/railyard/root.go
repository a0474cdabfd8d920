package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chazu/railyard/pkg/config"
	"github.com/chazu/railyard/pkg/engine"
	"github.com/chazu/railyard/pkg/layout"
)

// cli carries state shared by every subcommand once flags are parsed.
type cli struct {
	configPath string
	jsonOutput bool

	settings config.Settings
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "railyard",
		Short: "Inspect model railway layouts",
		Long: `Railyard evaluates layout files and reports which connectors are
joined, which rail networks they form and where a piece would snap.

Examples:
  railyard check yard.rail
  railyard check yard.rail --watch
  railyard snap yard.rail --at 100,0,0 --radius 5`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.settings = s
			c.logger = s.Logger()
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML settings file")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "print results as JSON")

	root.AddCommand(newCheckCmd(c))
	root.AddCommand(newSnapCmd(c))
	root.AddCommand(newConfigCmd(c))
	return root
}

// evaluateFile reads and evaluates a layout file. Evaluation errors in the
// layout source are returned as a single error listing every message.
func (c *cli) evaluateFile(path string) (layout.Snapshot, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout: %w", err)
	}

	eng := engine.NewEngine(engine.WithTimeout(c.settings.EvalTimeout))
	pieces, evalErrs, err := eng.Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			c.logger.Error("layout error", slog.String("file", path), slog.Int("line", e.Line), slog.String("message", e.Message))
		}
		return nil, fmt.Errorf("evaluate %s: %w", path, evalErrs[0])
	}

	c.logger.Debug("layout evaluated", slog.String("file", path), slog.Int("pieces", len(pieces)))
	return pieces, nil
}
