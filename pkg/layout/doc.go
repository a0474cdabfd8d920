// Package layout defines the track layout data model for Railyard.
// A layout is a flat, ordered snapshot of track pieces, each owning an
// ordered list of connectors. Connectors that share a node id are joined.
// Snapshots are never mutated in place; edits produce a new snapshot.
package layout
