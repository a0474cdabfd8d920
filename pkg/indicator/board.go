package indicator

import (
	"io"
	"log/slog"
	"time"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/layout"
	"github.com/chazu/railyard/pkg/snap"
)

// Entry pairs a connector with its indicator.
type Entry struct {
	Ref       layout.ConnectorRef `json:"ref"`
	Indicator Indicator           `json:"indicator"`
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithResolver sets the resolver used for recomputation.
func WithResolver(r *connectivity.Resolver) BoardOption {
	return func(b *Board) {
		b.resolver = r
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = l
	}
}

// Board holds the indicator of every connector seen in the last
// recomputation. The caller pushes the current snapshot on every trigger;
// the board keeps only ids and states, never pieces.
//
// A Board belongs to one caller (the editor's UI loop) and is not safe for
// concurrent use.
type Board struct {
	resolver *connectivity.Resolver
	logger   *slog.Logger

	states map[layout.ConnectorRef]Indicator
	order  []layout.ConnectorRef
}

// NewBoard creates an empty Board.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		resolver: connectivity.NewResolver(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		states:   make(map[layout.ConnectorRef]Indicator),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Recompute resolves the whole snapshot and replaces every base state.
// Connectors of removed pieces disappear from the board. A repeated piece
// id is shown at its first position only. Overlays on
// connectors that still exist are kept; they are only removed by the
// explicit clear operations.
func (b *Board) Recompute(pieces layout.Snapshot) *connectivity.Result {
	start := time.Now()
	res := b.resolver.ResolveAll(pieces)

	states := make(map[layout.ConnectorRef]Indicator, len(b.states))
	order := make([]layout.ConnectorRef, 0, len(b.order))
	first := make(map[layout.PieceID]*layout.Piece, len(pieces))
	pieces.Each(func(p *layout.Piece, _ int, c *layout.Connector) {
		if f, ok := first[p.ID]; !ok {
			first[p.ID] = p
		} else if f != p {
			return
		}
		ref := layout.ConnectorRef{Piece: p.ID, Connector: c.ID}
		if _, dup := states[ref]; dup {
			return
		}
		ind := Indicator{Base: res.States[p.ID][c.ID]}
		if prev, ok := b.states[ref]; ok {
			ind.Overlay = prev.Overlay
		}
		states[ref] = ind
		order = append(order, ref)
	})
	b.states = states
	b.order = order

	for _, s := range res.Skips {
		b.logger.Debug("connector skipped for position queries",
			slog.String("ref", s.Ref.String()),
			slog.String("reason", s.Reason))
	}

	recomputeTotal.Inc()
	recomputeDuration.Observe(time.Since(start).Seconds())
	b.logger.Debug("indicator board recomputed",
		slog.Int("connectors", len(order)),
		slog.Int("connected_nodes", len(res.Connected)))
	return res
}

// AddPiece resolves a single newly placed piece against the node usage of
// pieces (which may or may not already contain it) and records its base
// states without touching any other connector. A full Recompute is expected
// to follow.
func (b *Board) AddPiece(p *layout.Piece, pieces layout.Snapshot) map[layout.ConnectorID]connectivity.State {
	if p == nil {
		return map[layout.ConnectorID]connectivity.State{}
	}
	connected := connectivity.ComputeUsage(pieces.With(p)).ConnectedNodeIDs()
	states := connectivity.Resolve(p, connected)

	for _, c := range p.Connectors {
		if c == nil {
			continue
		}
		ref := layout.ConnectorRef{Piece: p.ID, Connector: c.ID}
		ind, ok := b.states[ref]
		if !ok {
			b.order = append(b.order, ref)
		}
		ind.Base = states[c.ID]
		b.states[ref] = ind
	}
	return states
}

// MarkCandidates sets the snapping overlay on every candidate the board
// knows about and returns how many were marked.
func (b *Board) MarkCandidates(cands []snap.Candidate) int {
	marked := 0
	for _, c := range cands {
		ref := c.Ref()
		ind, ok := b.states[ref]
		if !ok {
			b.logger.Debug("snap candidate not on board", slog.String("ref", ref.String()))
			continue
		}
		ind.Overlay = OverlaySnapping
		b.states[ref] = ind
		marked++
	}
	candidatesMarkedTotal.Add(float64(marked))
	return marked
}

// ReplaceCandidates moves the snapping overlay to exactly cands: connectors
// snapping from an earlier pointer position lose it. Base states are not
// re-resolved; the gesture still ends with ClearCandidates.
func (b *Board) ReplaceCandidates(cands []snap.Candidate) int {
	b.clearOverlay(OverlaySnapping)
	return b.MarkCandidates(cands)
}

// Hover moves the hovering overlay to ref; at most one connector hovers at
// a time. It reports false, leaving the board unchanged, if the board does
// not know the connector.
func (b *Board) Hover(ref layout.ConnectorRef) bool {
	ind, ok := b.states[ref]
	if !ok {
		return false
	}
	b.clearOverlay(OverlayHovering)
	ind.Overlay = OverlayHovering
	b.states[ref] = ind
	return true
}

// Unhover removes the hovering overlay and reports whether one was set.
func (b *Board) Unhover() bool {
	return b.clearOverlay(OverlayHovering) > 0
}

func (b *Board) clearOverlay(o Overlay) int {
	n := 0
	for ref, ind := range b.states {
		if ind.Overlay == o {
			ind.Overlay = OverlayNone
			b.states[ref] = ind
			n++
		}
	}
	return n
}

// ClearCandidates ends a placement gesture: it re-runs resolution on pieces
// and removes every snapping overlay, leaving each such connector at its
// connectivity-derived state. It must be called on drop, cancel and mode exit.
func (b *Board) ClearCandidates(pieces layout.Snapshot) *connectivity.Result {
	res := b.Recompute(pieces)
	b.clearOverlay(OverlaySnapping)
	overlayClearsTotal.WithLabelValues("candidates").Inc()
	return res
}

// ClearHighlighting re-runs resolution on pieces and removes every overlay.
func (b *Board) ClearHighlighting(pieces layout.Snapshot) *connectivity.Result {
	res := b.Recompute(pieces)
	for ref, ind := range b.states {
		if ind.Overlay != OverlayNone {
			ind.Overlay = OverlayNone
			b.states[ref] = ind
		}
	}
	overlayClearsTotal.WithLabelValues("all").Inc()
	return res
}

// Get returns the indicator for ref.
func (b *Board) Get(ref layout.ConnectorRef) (Indicator, bool) {
	ind, ok := b.states[ref]
	return ind, ok
}

// Len returns the number of connectors on the board.
func (b *Board) Len() int {
	return len(b.states)
}

// Entries returns a copy of every indicator in snapshot order.
func (b *Board) Entries() []Entry {
	out := make([]Entry, 0, len(b.order))
	for _, ref := range b.order {
		out = append(out, Entry{Ref: ref, Indicator: b.states[ref]})
	}
	return out
}

// WithOverlay returns the refs currently carrying overlay o, in snapshot order.
func (b *Board) WithOverlay(o Overlay) []layout.ConnectorRef {
	var refs []layout.ConnectorRef
	for _, ref := range b.order {
		if b.states[ref].Overlay == o {
			refs = append(refs, ref)
		}
	}
	return refs
}
