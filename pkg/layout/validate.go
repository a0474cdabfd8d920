package layout

import "fmt"

// DefaultCoincidence is the distance in mm under which two connector tips
// sharing a node id are considered to sit at the same point.
const DefaultCoincidence = 0.5

// ValidationSeverity indicates whether a finding means the snapshot is
// inconsistent or is merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // inconsistent snapshot
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Piece    PieceID            // offending piece (empty if snapshot-level)
	Node     NodeID             // offending node (empty if not node-related)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.Piece != "":
		return fmt.Sprintf("[%s] piece %s: %s", e.Severity, e.Piece, e.Message)
	case !e.Node.IsZero():
		return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.Node.Short(), e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// Validate runs all checks on the snapshot. An empty result means the
// snapshot is consistent. Validation is read-only and has no influence on
// connectivity results: a snapshot with errors still resolves.
func Validate(s Snapshot) []ValidationError {
	return ValidateWithTolerance(s, DefaultCoincidence)
}

// ValidateWithTolerance is Validate with an explicit coincidence tolerance.
func ValidateWithTolerance(s Snapshot, tolerance float64) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validatePieceIDs(s)...)
	errs = append(errs, validateConnectorIDs(s)...)
	errs = append(errs, validateNodes(s, tolerance)...)
	return errs
}

// validatePieceIDs checks that every piece has a non-empty, unique id.
func validatePieceIDs(s Snapshot) []ValidationError {
	var errs []ValidationError
	seen := make(map[PieceID]bool)

	for i, p := range s {
		if p == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("piece at index %d is nil", i),
				Severity: SeverityWarning,
			})
			continue
		}
		if p.ID == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("piece at index %d has an empty id", i),
				Severity: SeverityError,
			})
			continue
		}
		if seen[p.ID] {
			errs = append(errs, ValidationError{
				Piece:    p.ID,
				Message:  "duplicate piece id",
				Severity: SeverityError,
			})
		}
		seen[p.ID] = true
	}

	return errs
}

// validateConnectorIDs checks that connector ids are unique within each piece.
func validateConnectorIDs(s Snapshot) []ValidationError {
	var errs []ValidationError

	for _, p := range s {
		if p == nil {
			continue
		}
		seen := make(map[ConnectorID]bool, len(p.Connectors))
		for i, c := range p.Connectors {
			if c == nil {
				errs = append(errs, ValidationError{
					Piece:    p.ID,
					Message:  fmt.Sprintf("connector at index %d is nil", i),
					Severity: SeverityWarning,
				})
				continue
			}
			if seen[c.ID] {
				errs = append(errs, ValidationError{
					Piece:    p.ID,
					Message:  fmt.Sprintf("duplicate connector id %q", c.ID),
					Severity: SeverityError,
				})
			}
			seen[c.ID] = true
		}
	}

	return errs
}

// validateNodes groups connectors by node id and flags groups that are
// suspicious: more than two connectors on one point, or joined connectors
// whose tips are not at the same place. Neither finding changes whether the
// node counts as connected.
func validateNodes(s Snapshot, tolerance float64) []ValidationError {
	var errs []ValidationError

	type member struct {
		piece PieceID
		pos   *Vec3
	}
	groups := make(map[NodeID][]member)
	var order []NodeID

	s.Each(func(p *Piece, _ int, c *Connector) {
		if c.NodeID.IsZero() {
			return
		}
		if _, ok := groups[c.NodeID]; !ok {
			order = append(order, c.NodeID)
		}
		groups[c.NodeID] = append(groups[c.NodeID], member{piece: p.ID, pos: c.WorldPos})
	})

	for _, id := range order {
		members := groups[id]
		if len(members) > 2 {
			errs = append(errs, ValidationError{
				Node:     id,
				Message:  fmt.Sprintf("node is shared by %d connectors", len(members)),
				Severity: SeverityWarning,
			})
		}

		var anchor *Vec3
		for _, m := range members {
			if m.pos == nil {
				continue
			}
			if anchor == nil {
				anchor = m.pos
				continue
			}
			if d := anchor.Distance(*m.pos); d > tolerance {
				errs = append(errs, ValidationError{
					Node:     id,
					Message:  fmt.Sprintf("joined connector positions do not coincide (%.3fmm apart on piece %s)", d, m.piece),
					Severity: SeverityWarning,
				})
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether any finding has error severity.
func HasErrors(errs []ValidationError) bool {
	for _, e := range errs {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
