package layout

import (
	"math"
	"testing"
)

func TestVec3Distance(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want float64
	}{
		{"same point", Vec3{1, 2, 3}, Vec3{1, 2, 3}, 0},
		{"unit x", Vec3{0, 0, 0}, Vec3{1, 0, 0}, 1},
		{"3-4-5", Vec3{0, 0, 0}, Vec3{3, 4, 0}, 5},
		{"single axis small", Vec3{0, 0, 0}, Vec3{0, 0, 0.01}, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Distance(tt.b)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Distance = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3AddSub(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{10, 20, 30}
	if got := a.Add(b); got != (Vec3{11, 22, 33}) {
		t.Errorf("Add = %v", got)
	}
	if got := b.Sub(a); got != (Vec3{9, 18, 27}) {
		t.Errorf("Sub = %v", got)
	}
}

func TestNodeIDZeroAndShort(t *testing.T) {
	var zero NodeID
	if !zero.IsZero() {
		t.Error("empty NodeID should be zero")
	}
	if NodeID("n1").IsZero() {
		t.Error("n1 should not be zero")
	}
	long := NodeID("n-0123456789abcdef")
	if got := long.Short(); got != "n-0123456789" {
		t.Errorf("Short = %q", got)
	}
	if got := NodeID("n1").Short(); got != "n1" {
		t.Errorf("Short = %q", got)
	}
}

func TestNewNodeIDUnique(t *testing.T) {
	a, b := NewNodeID(), NewNodeID()
	if a.IsZero() || b.IsZero() {
		t.Fatal("minted node id is zero")
	}
	if a == b {
		t.Errorf("expected distinct ids, got %s twice", a)
	}
}

func TestSnapshotLookupAndEach(t *testing.T) {
	s := twoPieceLoop()
	s = append(s, nil, &Piece{ID: "broken", Connectors: []*Connector{nil}})

	if c := s.Lookup(ConnectorRef{Piece: "s2", Connector: "a"}); c == nil || c.NodeID != "n1" {
		t.Fatalf("Lookup s2.a = %+v", c)
	}
	if c := s.Lookup(ConnectorRef{Piece: "nope", Connector: "a"}); c != nil {
		t.Errorf("expected nil for missing piece, got %+v", c)
	}

	var seen []string
	s.Each(func(p *Piece, i int, c *Connector) {
		seen = append(seen, string(p.ID)+"."+string(c.ID))
	})
	want := []string{"s1.a", "s1.b", "s2.a", "s2.b"}
	if len(seen) != len(want) {
		t.Fatalf("Each visited %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("Each[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
	if s.ConnectorCount() != 4 {
		t.Errorf("ConnectorCount = %d, want 4", s.ConnectorCount())
	}
}

func TestSnapshotCloneIsDeep(t *testing.T) {
	s := twoPieceLoop()
	c := s.Clone()
	c[0].Connectors[0].WorldPos.X = 999
	c[0].Connectors[1].NodeID = "changed"

	if s[0].Connectors[0].WorldPos.X != 0 {
		t.Error("clone shares WorldPos with original")
	}
	if s[0].Connectors[1].NodeID != "n1" {
		t.Error("clone shares connector with original")
	}
}
