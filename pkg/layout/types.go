package layout

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a world-space position in mm.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3(v3.Vec(v).Add(v3.Vec(o)))
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3(v3.Vec(v).Sub(v3.Vec(o)))
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v3.Vec(v).Sub(v3.Vec(o)).Length()
}

// IsZero reports whether all components are zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Connector is one connection point of a track piece.
type Connector struct {
	ID     ConnectorID `json:"id"`
	NodeID NodeID      `json:"node_id,omitempty"`

	// WorldPos is the connector tip in world space. It is nil while the
	// owning piece is still being constructed.
	WorldPos *Vec3 `json:"world_pos,omitempty"`
}

// HasPosition reports whether the connector can take part in position queries.
func (c *Connector) HasPosition() bool {
	return c != nil && c.WorldPos != nil
}

// Joined reports whether the connector carries a node id. A joined connector
// is not necessarily connected; see package connectivity.
func (c *Connector) Joined() bool {
	return c != nil && !c.NodeID.IsZero()
}

// clone returns a deep copy of the connector.
func (c *Connector) clone() *Connector {
	if c == nil {
		return nil
	}
	out := *c
	if c.WorldPos != nil {
		p := *c.WorldPos
		out.WorldPos = &p
	}
	return &out
}

// Piece is a placed track piece. Connector order is part of the piece's
// geometry and is never re-sorted.
type Piece struct {
	ID         PieceID      `json:"id"`
	Kind       string       `json:"kind,omitempty"` // e.g. "straight", "curve", "switch"
	Connectors []*Connector `json:"connectors"`
}

// Connector returns the connector with the given id, or nil.
func (p *Piece) Connector(id ConnectorID) *Connector {
	if p == nil {
		return nil
	}
	for _, c := range p.Connectors {
		if c != nil && c.ID == id {
			return c
		}
	}
	return nil
}

// ConnectorIndex returns the index of the connector with the given id, or -1.
func (p *Piece) ConnectorIndex(id ConnectorID) int {
	if p == nil {
		return -1
	}
	for i, c := range p.Connectors {
		if c != nil && c.ID == id {
			return i
		}
	}
	return -1
}

// clone returns a deep copy of the piece.
func (p *Piece) clone() *Piece {
	if p == nil {
		return nil
	}
	out := &Piece{ID: p.ID, Kind: p.Kind}
	if p.Connectors != nil {
		out.Connectors = make([]*Connector, len(p.Connectors))
		for i, c := range p.Connectors {
			out.Connectors[i] = c.clone()
		}
	}
	return out
}

// Snapshot is the ordered piece collection the caller owns and passes to
// the connectivity and snap components on every call.
type Snapshot []*Piece

// Get returns the piece with the given id, or nil.
func (s Snapshot) Get(id PieceID) *Piece {
	if i := s.Index(id); i >= 0 {
		return s[i]
	}
	return nil
}

// Index returns the position of the piece with the given id, or -1.
func (s Snapshot) Index(id PieceID) int {
	for i, p := range s {
		if p != nil && p.ID == id {
			return i
		}
	}
	return -1
}

// Lookup resolves a connector reference.
func (s Snapshot) Lookup(ref ConnectorRef) *Connector {
	return s.Get(ref.Piece).Connector(ref.Connector)
}

// ConnectorCount returns the number of well-formed connectors in the snapshot.
func (s Snapshot) ConnectorCount() int {
	n := 0
	s.Each(func(*Piece, int, *Connector) { n++ })
	return n
}

// Each calls fn for every well-formed connector in piece order, then
// connector order. Nil pieces and nil connectors are skipped.
func (s Snapshot) Each(fn func(p *Piece, index int, c *Connector)) {
	for _, p := range s {
		if p == nil {
			continue
		}
		for i, c := range p.Connectors {
			if c == nil {
				continue
			}
			fn(p, i, c)
		}
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	if s == nil {
		return nil
	}
	out := make(Snapshot, len(s))
	for i, p := range s {
		out[i] = p.clone()
	}
	return out
}
