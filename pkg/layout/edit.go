package layout

import (
	"errors"
	"fmt"
)

// Sentinel errors for snapshot edits.
var (
	ErrPieceNotFound     = errors.New("piece not found")
	ErrConnectorNotFound = errors.New("connector not found")
	ErrSelfJoin          = errors.New("cannot join a connector to itself")
)

// The edit operations below model the discrete changes the track editor
// makes between recomputations: add, move, remove, join and detach. Each
// returns a new Snapshot; untouched pieces are shared, touched pieces are
// copied, and the receiver is never modified.

// With returns a snapshot containing p. If a piece with the same id exists
// it is replaced in place, otherwise p is appended.
func (s Snapshot) With(p *Piece) Snapshot {
	out := make(Snapshot, len(s), len(s)+1)
	copy(out, s)
	if p == nil {
		return out
	}
	if i := s.Index(p.ID); i >= 0 {
		out[i] = p.clone()
		return out
	}
	return append(out, p.clone())
}

// Without returns a snapshot with the piece removed. Connectors on other
// pieces keep their node ids; a node left with a single connector simply
// stops being connected.
func (s Snapshot) Without(id PieceID) (Snapshot, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("layout: remove %q: %w", id, ErrPieceNotFound)
	}
	out := make(Snapshot, 0, len(s)-1)
	out = append(out, s[:i]...)
	out = append(out, s[i+1:]...)
	return out, nil
}

// Move translates every positioned connector of the piece by offset.
// Connectors without a position stay without one.
func (s Snapshot) Move(id PieceID, offset Vec3) (Snapshot, error) {
	i := s.Index(id)
	if i < 0 {
		return nil, fmt.Errorf("layout: move %q: %w", id, ErrPieceNotFound)
	}
	p := s[i].clone()
	for _, c := range p.Connectors {
		if c.HasPosition() {
			moved := c.WorldPos.Add(offset)
			c.WorldPos = &moved
		}
	}
	out := make(Snapshot, len(s))
	copy(out, s)
	out[i] = p
	return out, nil
}

// Join assigns node to both connectors so they become logically joined.
// If node is zero, a fresh id is minted.
func (s Snapshot) Join(a, b ConnectorRef, node NodeID) (Snapshot, error) {
	if a == b {
		return nil, fmt.Errorf("layout: join %s: %w", a, ErrSelfJoin)
	}
	if node.IsZero() {
		node = NewNodeID()
	}
	out, err := s.setNode(a, node)
	if err != nil {
		return nil, fmt.Errorf("layout: join: %w", err)
	}
	out, err = out.setNode(b, node)
	if err != nil {
		return nil, fmt.Errorf("layout: join: %w", err)
	}
	return out, nil
}

// Detach clears the node id of the referenced connector.
func (s Snapshot) Detach(ref ConnectorRef) (Snapshot, error) {
	out, err := s.setNode(ref, "")
	if err != nil {
		return nil, fmt.Errorf("layout: detach: %w", err)
	}
	return out, nil
}

func (s Snapshot) setNode(ref ConnectorRef, node NodeID) (Snapshot, error) {
	i := s.Index(ref.Piece)
	if i < 0 {
		return nil, fmt.Errorf("%s: %w", ref, ErrPieceNotFound)
	}
	j := s[i].ConnectorIndex(ref.Connector)
	if j < 0 {
		return nil, fmt.Errorf("%s: %w", ref, ErrConnectorNotFound)
	}
	p := s[i].clone()
	p.Connectors[j].NodeID = node
	out := make(Snapshot, len(s))
	copy(out, s)
	out[i] = p
	return out, nil
}
