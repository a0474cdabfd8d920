package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/layout"
	"github.com/chazu/railyard/pkg/snap"
)

func newSnapCmd(c *cli) *cobra.Command {
	var (
		at       string
		radius   float64
		freeOnly bool
		exclude  string
	)

	cmd := &cobra.Command{
		Use:   "snap FILE --at x,y,z",
		Short: "List connectors within snapping distance of a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			probe, err := parseVec3(at)
			if err != nil {
				return fmt.Errorf("--at: %w", err)
			}
			if !cmd.Flags().Changed("radius") {
				radius = c.settings.SnapRadius
			}

			pieces, err := c.evaluateFile(args[0])
			if err != nil {
				return err
			}

			var opts []snap.Option
			if freeOnly {
				opts = append(opts, snap.FreeOnly(connectivity.ComputeUsage(pieces).ConnectedNodeIDs()))
			}
			if exclude != "" {
				opts = append(opts, snap.ExcludePiece(layout.PieceID(exclude)))
			}
			cands, err := snap.FindCandidates(&probe, radius, pieces, opts...)
			if err != nil {
				return err
			}
			snap.SortByDistance(cands)

			out := cmd.OutOrStdout()
			if c.jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(cands)
			}
			if len(cands) == 0 {
				fmt.Fprintf(out, "no connectors within %gmm\n", radius)
				return nil
			}
			for _, cand := range cands {
				fmt.Fprintf(out, "%s\t%.3f\n", cand.Ref(), cand.Distance)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "probe position as x,y,z (required)")
	cmd.Flags().Float64Var(&radius, "radius", 0, "search radius in mm (default from settings)")
	cmd.Flags().BoolVar(&freeOnly, "free-only", false, "only list connectors that are not connected")
	cmd.Flags().StringVar(&exclude, "exclude", "", "ignore connectors of this piece")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (layout.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return layout.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return layout.Vec3{}, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = f
	}
	return layout.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
}
