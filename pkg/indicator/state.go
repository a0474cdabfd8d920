// Package indicator keeps the per-connector display state the render layer
// uses to colour connector indicators. Each indicator has two axes: a base
// state derived from connectivity, and an optional transient overlay set by
// the placement workflow. Overlays are always removable, after which the
// base state is exactly what connectivity resolution computes.
package indicator

import (
	"fmt"

	"github.com/chazu/railyard/pkg/connectivity"
)

// Overlay is a transient highlight layered over the base state.
type Overlay int

const (
	OverlayNone     Overlay = iota
	OverlayHovering         // pointer is over the connector
	OverlaySnapping         // connector is a snap candidate for the current gesture
)

func (o Overlay) String() string {
	switch o {
	case OverlayNone:
		return "none"
	case OverlayHovering:
		return "hovering"
	case OverlaySnapping:
		return "snapping"
	default:
		return fmt.Sprintf("Overlay(%d)", int(o))
	}
}

// MarshalText renders the overlay by name.
func (o Overlay) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Indicator is the display state of one connector.
type Indicator struct {
	Base    connectivity.State `json:"base"`
	Overlay Overlay            `json:"overlay"`
}

// Effective returns the name the render layer should display: the overlay
// when one is set, otherwise the base state.
func (i Indicator) Effective() string {
	if i.Overlay != OverlayNone {
		return i.Overlay.String()
	}
	return i.Base.String()
}
