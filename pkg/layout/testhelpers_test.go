package layout

// pos returns a pointer to a Vec3, for building fixtures.
func pos(x, y, z float64) *Vec3 {
	return &Vec3{X: x, Y: y, Z: z}
}

// twoPieceLoop builds two straight pieces joined at node "n1".
func twoPieceLoop() Snapshot {
	return Snapshot{
		{ID: "s1", Kind: "straight", Connectors: []*Connector{
			{ID: "a", WorldPos: pos(0, 0, 0)},
			{ID: "b", NodeID: "n1", WorldPos: pos(100, 0, 0)},
		}},
		{ID: "s2", Kind: "straight", Connectors: []*Connector{
			{ID: "a", NodeID: "n1", WorldPos: pos(100, 0, 0)},
			{ID: "b", WorldPos: pos(200, 0, 0)},
		}},
	}
}
