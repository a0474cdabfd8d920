// Package connectivity infers which connectors of a track layout are joined
// into a continuous rail network. Nodes are never stored: a node exists only
// as a node id shared by connectors in the snapshot being examined, and it
// is connected when two or more connectors carry that id.
package connectivity

import (
	"sort"

	"github.com/samber/lo"

	"github.com/chazu/railyard/pkg/layout"
)

// Usage maps a node id to the number of connectors referencing it.
type Usage map[layout.NodeID]int

// ComputeUsage counts, for every non-absent node id, how many connectors in
// the snapshot reference it. Nil pieces, nil connector lists and nil
// connectors contribute nothing. The input is not modified.
func ComputeUsage(pieces layout.Snapshot) Usage {
	usage := make(Usage)
	pieces.Each(func(_ *layout.Piece, _ int, c *layout.Connector) {
		if c.NodeID.IsZero() {
			return
		}
		usage[c.NodeID]++
	})
	return usage
}

// Count returns the number of connectors referencing id.
func (u Usage) Count(id layout.NodeID) int {
	return u[id]
}

// ConnectedNodeIDs returns exactly the node ids referenced by more than one
// connector. This is the only place the connected rule is defined; every
// other component consumes the returned set.
func (u Usage) ConnectedNodeIDs() NodeSet {
	set := make(NodeSet)
	for id, n := range u {
		if n > 1 {
			set[id] = struct{}{}
		}
	}
	return set
}

// NodeSet is a set of node ids.
type NodeSet map[layout.NodeID]struct{}

// NewNodeSet builds a set from ids.
func NewNodeSet(ids ...layout.NodeID) NodeSet {
	set := make(NodeSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports whether id is in the set. The zero node id is never a member.
func (s NodeSet) Has(id layout.NodeID) bool {
	if id.IsZero() {
		return false
	}
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s NodeSet) Sorted() []layout.NodeID {
	ids := lo.Keys(s)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Equal reports whether both sets hold the same ids.
func (s NodeSet) Equal(o NodeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for id := range s {
		if _, ok := o[id]; !ok {
			return false
		}
	}
	return true
}
