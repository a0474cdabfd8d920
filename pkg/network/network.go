// Package network groups the pieces of a layout into rail networks: sets of
// pieces reachable from one another through connected nodes.
package network

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/layout"
)

// Network is one continuous group of track.
type Network struct {
	Pieces     []layout.PieceID `json:"pieces"`     // in snapshot order
	Connectors int              `json:"connectors"` // well-formed connectors on member pieces
	OpenEnds   int              `json:"open_ends"`  // member connectors that are unconnected
}

// Closed reports whether the network has no open ends, e.g. a loop.
func (n Network) Closed() bool {
	return n.OpenEnds == 0
}

// Build groups pieces into networks. Two pieces are adjacent when they share
// a node id in connected. Nil pieces are skipped and a repeated piece id is
// counted once, at its first position. Networks are ordered by their first
// piece in the snapshot.
func Build(pieces layout.Snapshot, connected connectivity.NodeSet) []Network {
	g := simple.NewUndirectedGraph()

	index := make(map[layout.PieceID]int64)
	var members []*layout.Piece
	for _, p := range pieces {
		if p == nil {
			continue
		}
		if _, dup := index[p.ID]; dup {
			continue
		}
		id := int64(len(members))
		index[p.ID] = id
		members = append(members, p)
		g.AddNode(simple.Node(id))
	}

	// Pieces sharing each connected node, in first-seen order.
	byNode := make(map[layout.NodeID][]int64)
	for id, p := range members {
		for _, c := range p.Connectors {
			if !connectivity.IsConnected(c, connected) {
				continue
			}
			byNode[c.NodeID] = append(byNode[c.NodeID], int64(id))
		}
	}
	for _, ids := range byNode {
		for i := 1; i < len(ids); i++ {
			a, b := ids[0], ids[i]
			if a == b || g.HasEdgeBetween(a, b) {
				continue
			}
			g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
		}
	}

	var out []Network
	for _, comp := range topo.ConnectedComponents(g) {
		ids := make([]int64, len(comp))
		for i, n := range comp {
			ids[i] = n.ID()
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		var n Network
		for _, id := range ids {
			p := members[id]
			n.Pieces = append(n.Pieces, p.ID)
			for _, c := range p.Connectors {
				if c == nil {
					continue
				}
				n.Connectors++
				if !connectivity.IsConnected(c, connected) {
					n.OpenEnds++
				}
			}
		}
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		return index[out[i].Pieces[0]] < index[out[j].Pieces[0]]
	})
	return out
}

// Of returns the index of the network containing piece, or -1.
func Of(networks []Network, piece layout.PieceID) int {
	for i, n := range networks {
		for _, id := range n.Pieces {
			if id == piece {
				return i
			}
		}
	}
	return -1
}
