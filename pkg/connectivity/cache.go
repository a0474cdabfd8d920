package connectivity

import (
	"strconv"
	"strings"

	"github.com/chazu/railyard/pkg/layout"
)

// fingerprint summarises everything a piece's resolution depends on: the
// connector count, each connector's id and node id in order, and whether
// each node id is currently connected. Equal fingerprints resolve equally.
type fingerprint string

func fingerprintOf(p *layout.Piece, connected NodeSet) fingerprint {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(p.Connectors)))
	for _, c := range p.Connectors {
		b.WriteByte('|')
		if c == nil {
			b.WriteByte('-')
			continue
		}
		b.WriteString(strconv.Quote(string(c.ID)))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(string(c.NodeID)))
		if connected.Has(c.NodeID) {
			b.WriteByte('+')
		}
	}
	return fingerprint(b.String())
}

type cacheEntry struct {
	fp     fingerprint
	states map[layout.ConnectorID]State
}

// pieceCache holds the last resolution per piece id.
type pieceCache struct {
	entries map[layout.PieceID]cacheEntry
	hits    int
	misses  int
}

func newPieceCache() *pieceCache {
	return &pieceCache{entries: make(map[layout.PieceID]cacheEntry)}
}

func (c *pieceCache) lookup(id layout.PieceID, fp fingerprint) (map[layout.ConnectorID]State, bool) {
	e, ok := c.entries[id]
	if !ok || e.fp != fp {
		c.misses++
		return nil, false
	}
	c.hits++
	return copyStates(e.states), true
}

func (c *pieceCache) store(id layout.PieceID, fp fingerprint, states map[layout.ConnectorID]State) {
	c.entries[id] = cacheEntry{fp: fp, states: copyStates(states)}
}

// retain drops entries for pieces no longer in the snapshot.
func (c *pieceCache) retain(live map[layout.PieceID]bool) {
	for id := range c.entries {
		if !live[id] {
			delete(c.entries, id)
		}
	}
}
