// Package markers turns the indicator board into coloured marker meshes,
// one per positioned connector. It is the render-layer consumer of
// connectivity and snap results.
package markers

import (
	"fmt"

	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/indicator"
	"github.com/chazu/railyard/pkg/kernel"
	"github.com/chazu/railyard/pkg/layout"
)

// DefaultRadius is the marker sphere radius in mm.
const DefaultRadius = 3.0

// Style controls marker size and colour.
type Style struct {
	Radius  float64
	Palette Palette
}

// DefaultStyle returns DefaultRadius and DefaultPalette.
func DefaultStyle() Style {
	return Style{Radius: DefaultRadius, Palette: DefaultPalette()}
}

// Build produces one marker mesh per connector that has a world position
// and an entry on the board. Connectors without a position, or unknown to
// the board, are reported as skips and never stop the build. Build reads
// pieces and board and modifies neither.
func Build(pieces layout.Snapshot, board *indicator.Board, k kernel.Kernel, style Style) ([]*kernel.Mesh, []connectivity.Skip, error) {
	if board == nil || k == nil {
		return nil, nil, fmt.Errorf("markers: board and kernel are required")
	}
	if style.Radius <= 0 {
		style.Radius = DefaultRadius
	}

	var (
		meshes []*kernel.Mesh
		skips  []connectivity.Skip
		err    error
	)
	pieces.Each(func(p *layout.Piece, _ int, c *layout.Connector) {
		if err != nil {
			return
		}
		ref := layout.ConnectorRef{Piece: p.ID, Connector: c.ID}
		if !c.HasPosition() {
			skips = append(skips, connectivity.Skip{Ref: ref, Reason: "no world position"})
			return
		}
		ind, ok := board.Get(ref)
		if !ok {
			skips = append(skips, connectivity.Skip{Ref: ref, Reason: "not on indicator board"})
			return
		}

		var m *kernel.Mesh
		m, err = marker(k, *c.WorldPos, ind, style.Radius)
		if err != nil {
			err = fmt.Errorf("markers: %s: %w", ref, err)
			return
		}
		m.Ref = ref.String()
		m.Color = style.Palette.Color(ind.Effective())
		meshes = append(meshes, m)
	})
	if err != nil {
		return nil, nil, err
	}
	return meshes, skips, nil
}

// marker builds the solid for one connector: a sphere at the connector tip,
// with a post on top while an overlay is active so highlighted connectors
// stand out from a distance. The post's lower half is sunk into the sphere.
func marker(k kernel.Kernel, at layout.Vec3, ind indicator.Indicator, r float64) (*kernel.Mesh, error) {
	solid := k.Sphere(r)
	if ind.Overlay != indicator.OverlayNone {
		_, top := solid.BoundingBox()
		post := k.Translate(k.Box(r/2, 3*r, r/2), 0, top[1]+r, 0)
		solid = k.Union(solid, post)
	}
	solid = k.Translate(solid, at.X, at.Y, at.Z)
	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, err
	}
	if m.IsEmpty() {
		return nil, fmt.Errorf("empty marker mesh at %v", at)
	}
	return m, nil
}
