package connectivity

import "fmt"

// State is the connectivity-derived base state of a connector.
type State int

const (
	StateUnconnected State = iota // node id absent, or no other connector shares it
	StateConnected                // node id shared with at least one other connector
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state by name for JSON consumers.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// FromBool maps a connected flag to a State.
func FromBool(connected bool) State {
	if connected {
		return StateConnected
	}
	return StateUnconnected
}
