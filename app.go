package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"

	"github.com/samber/lo"
	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/railyard/pkg/config"
	"github.com/chazu/railyard/pkg/connectivity"
	"github.com/chazu/railyard/pkg/engine"
	"github.com/chazu/railyard/pkg/indicator"
	"github.com/chazu/railyard/pkg/kernel"
	"github.com/chazu/railyard/pkg/kernel/sdfx"
	"github.com/chazu/railyard/pkg/layout"
	"github.com/chazu/railyard/pkg/markers"
	"github.com/chazu/railyard/pkg/network"
	"github.com/chazu/railyard/pkg/snap"
)

// indicatorsChanged is emitted to the frontend after every board update.
const indicatorsChanged = "indicators:changed"

// App is the Wails backend. It exposes methods to the frontend via bindings.
// The frontend calls bindings from several goroutines, so all state is
// guarded by mu.
type App struct {
	ctx    context.Context
	logger *slog.Logger

	mu       sync.Mutex
	settings config.Settings
	style    markers.Style
	engine   *engine.Engine
	kernel   kernel.Kernel
	board    *indicator.Board
	pieces   layout.Snapshot
}

// MarkerData is the JSON-serializable marker mesh sent to the frontend.
type MarkerData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Ref      string    `json:"ref"`
	Color    string    `json:"color"`
	Opacity  float32   `json:"opacity"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// ViewState is what the frontend needs to redraw connector indicators.
type ViewState struct {
	Markers    []MarkerData      `json:"markers"`
	Indicators []indicator.Entry `json:"indicators"`
	Errors     []EvalErrorData   `json:"errors"`
	Warnings   []EvalErrorData   `json:"warnings"`
}

// EvalResult is the full result returned to the frontend after evaluation.
type EvalResult struct {
	ViewState
	Networks []network.Network `json:"networks"`
}

// SnapResult lists snap candidates for the current placement gesture.
type SnapResult struct {
	ViewState
	Candidates []snap.Candidate `json:"candidates"`
}

// NewApp creates an App with default settings.
func NewApp() *App {
	a, err := NewAppWithSettings(config.Default(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		// Default settings always validate.
		panic(err)
	}
	return a
}

// NewAppWithSettings creates an App with an engine, the sdfx kernel and an
// empty indicator board configured from s.
func NewAppWithSettings(s config.Settings, logger *slog.Logger) (*App, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	style, err := s.Style()
	if err != nil {
		return nil, err
	}
	return &App{
		logger:   logger,
		settings: s,
		style:    style,
		engine:   engine.NewEngine(engine.WithTimeout(s.EvalTimeout)),
		kernel:   sdfx.New(s.MeshCells),
		board: indicator.NewBoard(
			indicator.WithResolver(connectivity.NewResolver(connectivity.WithCache())),
			indicator.WithLogger(logger),
		),
		pieces: layout.Snapshot{},
	}, nil
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// Evaluate takes layout source, replaces the current layout with the result
// and returns markers for every connector. On any error the previous layout
// stays in place and no markers are returned.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{ViewState: emptyView(), Networks: []network.Network{}}

	pieces, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.logger.Error("evaluate fatal error", slog.String("error", err.Error()))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.pieces = pieces
	res := a.board.ClearHighlighting(pieces)
	result.Networks = network.Build(pieces, res.Connected)

	for _, v := range layout.Validate(pieces) {
		result.Warnings = append(result.Warnings, EvalErrorData{Message: v.Error()})
	}
	result.ViewState = a.viewLocked(result.ViewState)
	return result
}

// FindCandidates marks every unconnected connector within the snap radius
// of (x, y, z) as a snap candidate, replacing the candidates of the previous
// pointer position. Connectors of the piece being placed are ignored when
// exclude is set.
func (a *App) FindCandidates(x, y, z float64, exclude string) SnapResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	result := SnapResult{ViewState: emptyView(), Candidates: []snap.Candidate{}}

	connected := connectivity.ComputeUsage(a.pieces).ConnectedNodeIDs()
	opts := []snap.Option{snap.FreeOnly(connected)}
	if exclude != "" {
		opts = append(opts, snap.ExcludePiece(layout.PieceID(exclude)))
	}
	cands, err := snap.FindCandidates(&layout.Vec3{X: x, Y: y, Z: z}, a.settings.SnapRadius, a.pieces, opts...)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	snap.SortByDistance(cands)

	a.board.ReplaceCandidates(cands)
	result.Candidates = cands
	result.ViewState = a.viewLocked(result.ViewState)
	return result
}

// ClearCandidates ends a placement gesture (drop, cancel or mode exit).
func (a *App) ClearCandidates() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.board.ClearCandidates(a.pieces)
	return a.viewLocked(emptyView())
}

// Hover highlights the connector closest to (x, y, z) within the hover
// radius and returns its reference, or "" when nothing is in reach. The
// previously hovered connector loses its highlight either way.
func (a *App) Hover(x, y, z float64) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	cands, err := snap.FindCandidates(&layout.Vec3{X: x, Y: y, Z: z}, a.settings.HoverRadius, a.pieces)
	if err != nil {
		a.logger.Warn("hover query failed", slog.String("error", err.Error()))
		return ""
	}
	c, ok := snap.Closest(cands)
	if !ok || !a.board.Hover(c.Ref()) {
		if a.board.Unhover() {
			a.emitLocked()
		}
		return ""
	}
	a.emitLocked()
	return c.Ref().String()
}

// ClearHighlighting removes every overlay and re-resolves the layout.
func (a *App) ClearHighlighting() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.board.ClearHighlighting(a.pieces)
	return a.viewLocked(emptyView())
}

// Indicators returns the current indicator board.
func (a *App) Indicators() []indicator.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.board.Entries()
}

// viewLocked fills v from the board and rebuilds the markers. a.mu must
// be held.
func (a *App) viewLocked(v ViewState) ViewState {
	v.Indicators = a.board.Entries()

	meshes, skips, err := markers.Build(a.pieces, a.board, a.kernel, a.style)
	if err != nil {
		a.logger.Error("marker build failed", slog.String("error", err.Error()))
		v.Errors = append(v.Errors, EvalErrorData{Message: "marker build failed: " + err.Error()})
		return v
	}
	for _, s := range skips {
		v.Warnings = append(v.Warnings, EvalErrorData{Message: fmt.Sprintf("%s: %s", s.Ref, s.Reason)})
	}
	a.logger.Debug("markers built",
		slog.Int("markers", len(meshes)),
		slog.Int("vertices", lo.SumBy(meshes, (*kernel.Mesh).VertexCount)),
		slog.Int("triangles", lo.SumBy(meshes, (*kernel.Mesh).TriangleCount)))
	v.Markers = lo.Map(meshes, func(m *kernel.Mesh, _ int) MarkerData {
		return MarkerData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Ref:      m.Ref,
			Color:    hexColor(m.Color),
			Opacity:  m.Color[3],
		}
	})

	a.emitLocked()
	return v
}

// emitLocked notifies the frontend. It is a no-op outside a Wails runtime.
func (a *App) emitLocked() {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, indicatorsChanged, a.board.Entries())
}

func emptyView() ViewState {
	return ViewState{
		Markers:    []MarkerData{},
		Indicators: []indicator.Entry{},
		Errors:     []EvalErrorData{},
		Warnings:   []EvalErrorData{},
	}
}

// hexColor formats the RGB part of c as #rrggbb.
func hexColor(c kernel.Color) string {
	to8 := func(f float32) int {
		return int(math.Round(math.Max(0, math.Min(1, float64(f))) * 255))
	}
	return fmt.Sprintf("#%02x%02x%02x", to8(c[0]), to8(c[1]), to8(c[2]))
}
