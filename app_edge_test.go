package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 markers, 0 errors, empty board.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("")

	if result.Markers == nil || result.Errors == nil || result.Warnings == nil {
		t.Fatal("result slices must be non-nil so the frontend sees [] rather than null")
	}
	if len(result.Indicators) != 0 {
		t.Errorf("expected empty board, got %d indicators", len(result.Indicators))
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := NewApp()
	source := `(straight "s1" :length 100)
(straight "s2" :length 100`
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors")
	}
	e := result.Errors[0]
	if e.Line == 0 && e.Message == "" {
		t.Error("error should have a line number or a message")
	}
}

// ---------------------------------------------------------------------------
// 3. Unknown references: joins to missing pieces or connectors.
// ---------------------------------------------------------------------------

func TestE2EUnknownReferences(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"missing piece", `(straight "s1" :length 1) (join "s1" "a" "ghost" "a")`, "piece not found"},
		{"missing connector", `(straight "s1" :length 1) (straight "s2" :length 1) (join "s1" "q" "s2" "a")`, "connector not found"},
		{"move missing", `(move "ghost" (vec3 1 0 0))`, "piece not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewApp().Evaluate(tt.source)
			if len(result.Errors) == 0 {
				t.Fatal("expected eval errors")
			}
			if !strings.Contains(result.Errors[0].Message, tt.want) {
				t.Errorf("error %q should contain %q", result.Errors[0].Message, tt.want)
			}
			if len(result.Markers) != 0 {
				t.Errorf("expected 0 markers on error, got %d", len(result.Markers))
			}
		})
	}
}

// ---------------------------------------------------------------------------
// 4. Degenerate pieces: connectors without positions, duplicate ids.
// ---------------------------------------------------------------------------

func TestE2EUnplacedConnectorsAreSkipped(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`
(piece "p1" (connector "a" :node "n1") (connector "b" :at (vec3 0 0 0)))
(piece "p2" (connector "a" :node "n1"))
`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	// Unplaced connectors still resolve, they just get no marker.
	if len(result.Indicators) != 3 {
		t.Errorf("expected 3 indicators, got %d", len(result.Indicators))
	}
	if len(result.Markers) != 1 {
		t.Errorf("expected 1 marker, got %d", len(result.Markers))
	}
	if got := stateOf(t, result.Indicators, "p1.a"); got != "connected" {
		t.Errorf("p1.a = %s, want connected", got)
	}

	skipped := 0
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "no world position") {
			skipped++
		}
	}
	if skipped != 2 {
		t.Errorf("expected 2 skip warnings, got %v", result.Warnings)
	}
}

func TestE2EThreeWayNodeWarns(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`
(piece "p1" (connector "a" :node "n1" :at (vec3 0 0 0)))
(piece "p2" (connector "a" :node "n1" :at (vec3 0 0 0)))
(piece "p3" (connector "a" :node "n1" :at (vec3 0 0 0)))
`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	for _, ref := range []string{"p1.a", "p2.a", "p3.a"} {
		if got := stateOf(t, result.Indicators, ref); got != "connected" {
			t.Errorf("%s = %s, want connected", ref, got)
		}
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "shared by 3 connectors") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a three-way node warning, got %v", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// 5. Rapid evaluation (debounce simulation): no panics.
//    Run with `go test -race` to detect data races.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	app := NewApp()

	sources := []string{
		`(straight "ok" :length 100)`,
		`(straight "broken"`,
		``,
		`(remove "missing")`,
		`(straight "also-ok" :length 200 :heading 45)`,
		`(+ 1 2)`,
		`;; just a comment`,
		`(undefined-func 1 2 3)`,
		`(straight "last" :length 400)`,
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			_ = app.Evaluate(source)
		}()
	}

	if got := len(app.Indicators()); got != 2 {
		t.Errorf("board should hold the last good layout (2 connectors), got %d", got)
	}
}

// ---------------------------------------------------------------------------
// 6. Large coordinates: a long layout far from the origin.
// ---------------------------------------------------------------------------

func TestE2ELargeCoordinates(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(straight "far" :from (vec3 100000 0 -100000) :length 5000)`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(result.Markers))
	}
	for _, m := range result.Markers {
		if len(m.Vertices) == 0 {
			t.Errorf("marker %s has no geometry", m.Ref)
		}
	}
}

// ---------------------------------------------------------------------------
// 7. Comments only: source that is only comments -> 0 markers, 0 errors.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := NewApp()

	source := `
;; This is a comment
;; Another comment
; And another
`
	result := app.Evaluate(source)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for comments-only source: %v", result.Errors)
	}
	if len(result.Markers) != 0 {
		t.Errorf("expected 0 markers for comments-only source, got %d", len(result.Markers))
	}
}

// ---------------------------------------------------------------------------
// 8. Nested expressions: def with arithmetic, then use in a layout.
// ---------------------------------------------------------------------------

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := NewApp()

	source := `
(def unit 168)
(def half (/ unit 2))
(straight "s1" :length (+ unit half))
(straight "s2" :from (vec3 (+ unit half) 0 0) :length half)
(join "s1" "b" "s2" "a")
`
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("joined ends should coincide, got warnings %v", result.Warnings)
	}
	if got := stateOf(t, result.Indicators, "s2.a"); got != "connected" {
		t.Errorf("s2.a = %s, want connected", got)
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	app := NewApp()
	result := app.Evaluate("   \n\t\n   ")

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors for whitespace-only source: %v", result.Errors)
	}
	if len(result.Markers) != 0 {
		t.Errorf("expected 0 markers, got %d", len(result.Markers))
	}
}
