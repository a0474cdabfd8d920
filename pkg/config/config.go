// Package config loads Railyard settings from YAML. Every field has a
// default, so a missing file or a partial file is valid.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chazu/railyard/pkg/engine"
	"github.com/chazu/railyard/pkg/kernel/sdfx"
	"github.com/chazu/railyard/pkg/markers"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid settings")

// validate checks the struct tags on Settings.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := Settings{LogLevel: fl.Field().String()}.Level()
		return err == nil
	})
}

// Settings are the user-tunable values of the editor and CLI.
type Settings struct {
	// SnapRadius is the inclusive search radius in mm for snap candidates
	// while a piece is being placed.
	SnapRadius float64 `yaml:"snap_radius" validate:"finite,gte=0"`
	// HoverRadius is the pick radius in mm used to find the connector
	// under the pointer.
	HoverRadius float64 `yaml:"hover_radius" validate:"finite,gte=0"`
	// MarkerRadius is the size of connector marker spheres in mm.
	MarkerRadius float64 `yaml:"marker_radius" validate:"finite,gt=0"`
	// MeshCells is the marching cubes resolution for markers.
	MeshCells int `yaml:"mesh_cells" validate:"gte=0"`
	// Palette overrides marker colours by effective state name, as
	// "#rrggbb" or "#rrggbbaa".
	Palette map[string]string `yaml:"palette,omitempty"`
	// EvalTimeout bounds a single layout evaluation.
	EvalTimeout time.Duration `yaml:"eval_timeout" validate:"gte=0"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"loglevel"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		SnapRadius:   10,
		HoverRadius:  4,
		MarkerRadius: markers.DefaultRadius,
		MeshCells:    sdfx.DefaultMeshCells,
		EvalTimeout:  engine.DefaultTimeout,
		LogLevel:     "info",
	}
}

// Load reads settings from path on top of Default. An empty path returns
// the defaults.
func Load(path string) (Settings, error) {
	s := Default()
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return s, nil
}

// Write stores s as YAML at path, creating parent directories.
func Write(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// Validate rejects negative or non-finite radii, unknown log levels and
// malformed palette colours. A zero snap radius is valid and matches only
// connectors exactly at the probe.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := markers.ParsePalette(s.Palette); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", s.LogLevel, ErrInvalid)
	}
	return l, nil
}

// Style returns the marker style described by the settings.
func (s Settings) Style() (markers.Style, error) {
	pal, err := markers.ParsePalette(s.Palette)
	if err != nil {
		return markers.Style{}, err
	}
	return markers.Style{Radius: s.MarkerRadius, Palette: pal}, nil
}

// Logger returns a text logger writing to stderr at the configured level.
func (s Settings) Logger() *slog.Logger {
	level, err := s.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
