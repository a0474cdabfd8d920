package connectivity

import (
	"github.com/chazu/railyard/pkg/layout"
)

// IsConnected reports whether c carries a node id that is in connected.
// A nil connector is never connected.
func IsConnected(c *layout.Connector, connected NodeSet) bool {
	if c == nil || c.NodeID.IsZero() {
		return false
	}
	return connected.Has(c.NodeID)
}

// Resolve maps every connector of the piece to its connectivity state.
// Connectivity does not depend on position, so connectors without a world
// position are resolved like any other. A nil piece resolves to an empty map.
func Resolve(p *layout.Piece, connected NodeSet) map[layout.ConnectorID]State {
	if p == nil {
		return map[layout.ConnectorID]State{}
	}
	states := make(map[layout.ConnectorID]State, len(p.Connectors))
	for _, c := range p.Connectors {
		if c == nil {
			continue
		}
		states[c.ID] = FromBool(IsConnected(c, connected))
	}
	return states
}

// Skip records a connector that was resolved for connectivity but cannot
// take part in position-dependent steps.
type Skip struct {
	Ref    layout.ConnectorRef
	Reason string
}

// Result is the output of a full resolution pass.
type Result struct {
	Usage     Usage
	Connected NodeSet
	States    map[layout.PieceID]map[layout.ConnectorID]State
	Skips     []Skip
}

// State returns the resolved state for ref, and whether ref was resolved.
func (r *Result) State(ref layout.ConnectorRef) (State, bool) {
	states, ok := r.States[ref.Piece]
	if !ok {
		return StateUnconnected, false
	}
	s, ok := states[ref.Connector]
	return s, ok
}

// ConnectedCount returns the number of connectors resolved as connected.
func (r *Result) ConnectedCount() int {
	n := 0
	for _, states := range r.States {
		for _, s := range states {
			if s == StateConnected {
				n++
			}
		}
	}
	return n
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithCache enables per-piece memoisation between calls. Results are
// identical to a resolver without a cache.
func WithCache() Option {
	return func(r *Resolver) {
		r.cache = newPieceCache()
	}
}

// Resolver recomputes node usage and connector states for a whole snapshot.
// A Resolver without a cache is stateless. With a cache it remembers, per
// piece id, a fingerprint and the state map from the previous call; it never
// keeps references to the caller's pieces.
//
// A Resolver is meant for a single caller and is not safe for concurrent use
// when the cache is enabled.
type Resolver struct {
	cache *pieceCache
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAll computes usage, the connected set and every connector's state.
// Usage counts every piece, but a repeated piece id is resolved and reported
// at its first position only, as network.Build groups it.
func (r *Resolver) ResolveAll(pieces layout.Snapshot) *Result {
	usage := ComputeUsage(pieces)
	connected := usage.ConnectedNodeIDs()

	res := &Result{
		Usage:     usage,
		Connected: connected,
		States:    make(map[layout.PieceID]map[layout.ConnectorID]State, len(pieces)),
	}

	seen := make(map[layout.PieceID]bool, len(pieces))
	for _, p := range pieces {
		if p == nil || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		res.States[p.ID] = r.resolvePiece(p, connected)

		for _, c := range p.Connectors {
			if c != nil && !c.HasPosition() {
				res.Skips = append(res.Skips, Skip{
					Ref:    layout.ConnectorRef{Piece: p.ID, Connector: c.ID},
					Reason: "no world position",
				})
			}
		}
	}

	if r.cache != nil {
		r.cache.retain(seen)
	}
	return res
}

// CacheStats reports cache hits and misses since the Resolver was created.
// Both are zero when caching is disabled.
func (r *Resolver) CacheStats() (hits, misses int) {
	if r.cache == nil {
		return 0, 0
	}
	return r.cache.hits, r.cache.misses
}

func (r *Resolver) resolvePiece(p *layout.Piece, connected NodeSet) map[layout.ConnectorID]State {
	if r.cache == nil {
		return Resolve(p, connected)
	}
	fp := fingerprintOf(p, connected)
	if states, ok := r.cache.lookup(p.ID, fp); ok {
		return states
	}
	states := Resolve(p, connected)
	r.cache.store(p.ID, fp, states)
	return copyStates(states)
}

func copyStates(in map[layout.ConnectorID]State) map[layout.ConnectorID]State {
	out := make(map[layout.ConnectorID]State, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
