package layout

import "github.com/google/uuid"

// PieceID uniquely identifies a track piece within a layout.
type PieceID string

// ConnectorID identifies a connector within its owning piece.
type ConnectorID string

// NodeID names the physical connection point a connector occupies.
// The zero value means the connector is not joined to anything.
type NodeID string

// IsZero reports whether the node id is absent.
func (id NodeID) IsZero() bool {
	return id == ""
}

// Short returns an abbreviated form suitable for log and error messages.
func (id NodeID) Short() string {
	if len(id) <= 12 {
		return string(id)
	}
	return string(id[:12])
}

// String implements fmt.Stringer.
func (id NodeID) String() string {
	return string(id)
}

// NewNodeID mints a fresh, globally unique node id.
func NewNodeID() NodeID {
	return NodeID("n-" + uuid.NewString())
}

// ConnectorRef addresses one connector of one piece.
type ConnectorRef struct {
	Piece     PieceID     `json:"piece"`
	Connector ConnectorID `json:"connector"`
}

func (r ConnectorRef) String() string {
	return string(r.Piece) + "." + string(r.Connector)
}
