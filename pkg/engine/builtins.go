package engine

import (
	"fmt"
	"math"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/railyard/pkg/layout"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms layout source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: snap-radius -> snap_radius
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a layout.Vec3.
type sexpVec3 struct {
	vec layout.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpConnector carries a connector from `connector` to `piece`.
type sexpConnector struct {
	c layout.Connector
}

func (c *sexpConnector) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(connector %q)", c.c.ID)
}
func (c *sexpConnector) Type() *zygo.RegisteredType { return nil }

// sexpPieceRef is returned by builtins that add a piece.
type sexpPieceRef struct {
	id layout.PieceID
}

func (p *sexpPieceRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(piece %q)", p.id)
}
func (p *sexpPieceRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value â€” treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_z) and plain strings ("z").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (layout.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return layout.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toPieceID accepts a piece id string or a piece reference.
func toPieceID(s zygo.Sexp) (layout.PieceID, error) {
	if ref, ok := s.(*sexpPieceRef); ok {
		return ref.id, nil
	}
	str, err := toString(s)
	if err != nil {
		return "", fmt.Errorf("expected piece id or piece reference: %w", err)
	}
	return layout.PieceID(str), nil
}

// ---------------------------------------------------------------------------
// Layout builder
// ---------------------------------------------------------------------------

// builder accumulates the snapshot while a program runs. Every builtin goes
// through the copy-on-write edit operations of layout.Snapshot.
type builder struct {
	pieces layout.Snapshot
}

func newBuilder() *builder {
	return &builder{pieces: layout.Snapshot{}}
}

func (b *builder) add(p *layout.Piece) error {
	if p.ID == "" {
		return fmt.Errorf("piece id must not be empty")
	}
	if b.pieces.Get(p.ID) != nil {
		return fmt.Errorf("duplicate piece id %q", p.ID)
	}
	b.pieces = b.pieces.With(p)
	return nil
}

// joinNode picks the node id for a join: an id already present on either
// side wins, otherwise the id is derived from both refs so that the same
// program always yields the same ids.
func (b *builder) joinNode(x, y layout.ConnectorRef) layout.NodeID {
	for _, ref := range []layout.ConnectorRef{x, y} {
		if c := b.pieces.Lookup(ref); c.Joined() {
			return c.NodeID
		}
	}
	return layout.NodeID(x.String() + "+" + y.String())
}

// straightEnds returns the two end points of a straight of the given length
// laid from `from` along heading (degrees, measured in the XZ plane from +X).
func straightEnds(from layout.Vec3, length, heading float64) (layout.Vec3, layout.Vec3) {
	rad := heading * math.Pi / 180
	dir := layout.Vec3{X: math.Cos(rad) * length, Z: math.Sin(rad) * length}
	return from, from.Add(dir)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all layout DSL builtins into a zygomys environment.
// The builtins operate on the provided builder, populating it during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: layout.Vec3{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (connector "a" :node "n1" :at (vec3 0 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("connector", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("connector requires an id argument")
		}

		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("connector: id: %w", err)
		}
		c := layout.Connector{ID: layout.ConnectorID(id)}

		if v, ok := pa.kw["node"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connector: node: %w", err)
			}
			c.NodeID = layout.NodeID(s)
		}
		if v, ok := pa.kw["at"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("connector: at: %w", err)
			}
			c.WorldPos = &vec
		}

		return &sexpConnector{c: c}, nil
	})

	// -----------------------------------------------------------------------
	// (piece "sw1" :kind "switch" (connector ...) (connector ...) ...)
	// -----------------------------------------------------------------------
	env.AddFunction("piece", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("piece requires an id argument")
		}

		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("piece: id: %w", err)
		}
		p := &layout.Piece{ID: layout.PieceID(id)}

		if v, ok := pa.kw["kind"]; ok {
			k, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("piece: kind: %w", err)
			}
			p.Kind = k
		}

		for i, arg := range pa.positional[1:] {
			sc, ok := arg.(*sexpConnector)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("piece: connector %d: expected connector, got %T (%s)",
					i, arg, arg.SexpString(nil))
			}
			c := sc.c
			p.Connectors = append(p.Connectors, &c)
		}

		if err := b.add(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("piece: %w", err)
		}
		return &sexpPieceRef{id: p.ID}, nil
	})

	// -----------------------------------------------------------------------
	// (straight "s1" :from (vec3 0 0 0) :length 168 :heading 90)
	// -----------------------------------------------------------------------
	env.AddFunction("straight", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("straight requires an id argument")
		}

		id, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: id: %w", err)
		}

		var from layout.Vec3
		if v, ok := pa.kw["from"]; ok {
			from, err = toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("straight: from: %w", err)
			}
		}
		v, ok := pa.kw["length"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("straight: length is required")
		}
		length, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: length: %w", err)
		}
		if length <= 0 {
			return zygo.SexpNull, fmt.Errorf("straight: length must be positive, got %g", length)
		}
		var heading float64
		if v, ok := pa.kw["heading"]; ok {
			heading, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("straight: heading: %w", err)
			}
		}

		a, z := straightEnds(from, length, heading)
		p := &layout.Piece{
			ID:   layout.PieceID(id),
			Kind: "straight",
			Connectors: []*layout.Connector{
				{ID: "a", WorldPos: &a},
				{ID: "b", WorldPos: &z},
			},
		}
		if err := b.add(p); err != nil {
			return zygo.SexpNull, fmt.Errorf("straight: %w", err)
		}
		return &sexpPieceRef{id: p.ID}, nil
	})

	// -----------------------------------------------------------------------
	// (join "s1" "b" "s2" "a")
	// -----------------------------------------------------------------------
	env.AddFunction("join", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("join requires 4 arguments (piece connector piece connector), got %d", len(args))
		}
		x, err := toRef(args[0], args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join: first: %w", err)
		}
		y, err := toRef(args[2], args[3])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("join: second: %w", err)
		}

		node := b.joinNode(x, y)
		out, err := b.pieces.Join(x, y, node)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.pieces = out
		return &zygo.SexpStr{S: string(node)}, nil
	})

	// -----------------------------------------------------------------------
	// (detach "s1" "b")
	// -----------------------------------------------------------------------
	env.AddFunction("detach", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("detach requires 2 arguments (piece connector), got %d", len(args))
		}
		ref, err := toRef(args[0], args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("detach: %w", err)
		}
		out, err := b.pieces.Detach(ref)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.pieces = out
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (move "s1" (vec3 10 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("move", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("move requires a piece and an offset, got %d arguments", len(args))
		}
		id, err := toPieceID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: piece: %w", err)
		}
		offset, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move: offset: %w", err)
		}
		out, err := b.pieces.Move(id, offset)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.pieces = out
		return &sexpPieceRef{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (remove "s1")
	// -----------------------------------------------------------------------
	env.AddFunction("remove", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("remove requires exactly 1 argument, got %d", len(args))
		}
		id, err := toPieceID(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("remove: piece: %w", err)
		}
		out, err := b.pieces.Without(id)
		if err != nil {
			return zygo.SexpNull, err
		}
		b.pieces = out
		return zygo.SexpNull, nil
	})
}

// toRef builds a connector reference from a piece and a connector argument.
func toRef(piece, conn zygo.Sexp) (layout.ConnectorRef, error) {
	p, err := toPieceID(piece)
	if err != nil {
		return layout.ConnectorRef{}, err
	}
	c, err := toKeywordString(conn)
	if err != nil {
		return layout.ConnectorRef{}, fmt.Errorf("connector: %w", err)
	}
	return layout.ConnectorRef{Piece: p, Connector: layout.ConnectorID(c)}, nil
}
