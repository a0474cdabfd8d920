// Package snap finds connectors within a placement-time snap radius of a
// probe position. It is a pure query with no state, cheap enough to run on
// every pointer move during a placement gesture.
//
// The scan is linear over all connectors. Layouts hold tens to low hundreds
// of connectors, which does not warrant a spatial index.
package snap

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/layout"
)

// ErrInvalidArgument is returned for caller bugs such as a nil probe or a
// negative radius. It is never returned because of malformed layout data.
var ErrInvalidArgument = errors.New("invalid argument")

// Candidate is a connector within range of the probe.
type Candidate struct {
	Piece     layout.PieceID     `json:"piece"`
	Connector layout.ConnectorID `json:"connector"`
	Distance  float64            `json:"distance"`
}

// Ref returns the candidate's connector reference.
func (c Candidate) Ref() layout.ConnectorRef {
	return layout.ConnectorRef{Piece: c.Piece, Connector: c.Connector}
}

type options struct {
	exclude   map[layout.PieceID]bool
	free      bool
	connected connectivity.NodeSet
}

// Option narrows a candidate search.
type Option func(*options)

// ExcludePiece drops the connectors of the given piece, typically the piece
// being dragged, so it cannot snap to itself.
func ExcludePiece(id layout.PieceID) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[layout.PieceID]bool)
		}
		o.exclude[id] = true
	}
}

// FreeOnly drops connectors that are connected under connected, the set
// computed from node usage of the same snapshot. A connector whose node id
// is no longer shared, e.g. after its partner piece was removed, is free.
func FreeOnly(connected connectivity.NodeSet) Option {
	return func(o *options) {
		o.free = true
		o.connected = connected
	}
}

// FindCandidates returns every connector whose world position lies within
// radius of probe, boundary included. Results are grouped by piece in input
// order with connector order preserved. Connectors without a world position
// and malformed pieces are excluded, never reported as errors.
func FindCandidates(probe *layout.Vec3, radius float64, pieces layout.Snapshot, opts ...Option) ([]Candidate, error) {
	if err := checkArgs(probe, radius); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	var out []Candidate
	pieces.Each(func(p *layout.Piece, _ int, c *layout.Connector) {
		if !c.HasPosition() || o.exclude[p.ID] {
			return
		}
		if o.free && connectivity.IsConnected(c, o.connected) {
			return
		}
		d := probe.Distance(*c.WorldPos)
		if d <= radius {
			out = append(out, Candidate{Piece: p.ID, Connector: c.ID, Distance: d})
		}
	})
	return out, nil
}

func checkArgs(probe *layout.Vec3, radius float64) error {
	if probe == nil {
		return fmt.Errorf("snap: nil probe: %w", ErrInvalidArgument)
	}
	if math.IsNaN(probe.X) || math.IsNaN(probe.Y) || math.IsNaN(probe.Z) {
		return fmt.Errorf("snap: probe %v has a NaN component: %w", *probe, ErrInvalidArgument)
	}
	if math.IsNaN(radius) || radius < 0 {
		return fmt.Errorf("snap: radius %v must be non-negative: %w", radius, ErrInvalidArgument)
	}
	return nil
}

// SortByDistance orders candidates closest first. Equidistant candidates
// keep their input order, so the one from the earlier piece wins.
func SortByDistance(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Distance < cands[j].Distance
	})
}

// Closest returns the nearest candidate without reordering cands.
func Closest(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Distance < best.Distance {
			best = c
		}
	}
	return best, true
}
