// Package project reads composite job manifests and loads their frames.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/mosaic/internal/backend"
	"github.com/samcharles93/mosaic/internal/warp"
)

var ErrInvalidManifest = errors.New("invalid manifest")

// Manifest describes one composite job.
//
//	frames:
//	  - path: left.png
//	  - path: right.png
//	    params: [0, 0, 0, 0, -412.5, 3.25]
//	    weight: 0.8
//	feather: true
//	output: pano.png
type Manifest struct {
	Frames []FrameSpec `yaml:"frames" json:"frames"`

	// Canvas fixes the output size. When nil the canvas is planned from the
	// maximum extent of all frames.
	Canvas *CanvasSpec `yaml:"canvas,omitempty" json:"canvas,omitempty"`

	Gray      bool    `yaml:"gray,omitempty" json:"gray,omitempty"`
	Feather   *bool   `yaml:"feather,omitempty" json:"feather,omitempty"`
	Downscale float64 `yaml:"downscale,omitempty" json:"downscale,omitempty"`

	Backend string        `yaml:"backend,omitempty" json:"backend,omitempty"`
	Tiles   backend.Tiles `yaml:"tiles,omitempty" json:"tiles,omitempty"`

	Output    string `yaml:"output,omitempty" json:"output,omitempty"`
	RawOutput string `yaml:"raw_output,omitempty" json:"raw_output,omitempty"`

	// Dir is the directory relative frame paths resolve against.
	Dir string `yaml:"-" json:"-"`
}

// FrameSpec describes one source frame. At most one of Matrix, Params and
// Corners may be set; a frame with none is placed with the identity.
type FrameSpec struct {
	Path string `yaml:"path" json:"path"`

	// Matrix is the 3×3 row-major mapping from canvas to frame pixels.
	Matrix []float32 `yaml:"matrix,omitempty" json:"matrix,omitempty"`
	// Params is the 2, 6 or 8 parameter form of the mapping.
	Params []float32 `yaml:"params,omitempty" json:"params,omitempty"`
	// Corners are where the frame's top-left, top-right, bottom-right and
	// bottom-left corners land on the canvas.
	Corners [][2]float64 `yaml:"corners,omitempty" json:"corners,omitempty"`

	// Weight scales the frame's weight channel. Defaults to 1.
	Weight *float32 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

type CanvasSpec struct {
	Rows int `yaml:"rows" json:"rows"`
	Cols int `yaml:"cols" json:"cols"`
	// Origin is the canvas top-left corner in the shared frame.
	Origin [2]float32 `yaml:"origin,omitempty" json:"origin,omitempty"`
}

// LoadManifest reads a manifest from path. Files ending in .json are parsed
// as JSON, anything else as YAML.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes and validates a manifest. Unknown fields are rejected.
func Parse(data []byte, format string) (*Manifest, error) {
	var m Manifest
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidManifest, format)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the manifest without touching the filesystem.
func (m *Manifest) Validate() error {
	if len(m.Frames) == 0 {
		return fmt.Errorf("%w: no frames", ErrInvalidManifest)
	}
	for i, f := range m.Frames {
		if f.Path == "" {
			return fmt.Errorf("%w: frame %d: missing path", ErrInvalidManifest, i)
		}
		if _, err := f.Mapping(1, 1); err != nil {
			return fmt.Errorf("%w: frame %d (%s): %v", ErrInvalidManifest, i, f.Path, err)
		}
		if f.Weight != nil && !(*f.Weight > 0) {
			return fmt.Errorf("%w: frame %d (%s): weight must be positive", ErrInvalidManifest, i, f.Path)
		}
	}
	if m.Canvas != nil && (m.Canvas.Rows <= 0 || m.Canvas.Cols <= 0) {
		return fmt.Errorf("%w: canvas must be at least 1x1, got %dx%d", ErrInvalidManifest, m.Canvas.Rows, m.Canvas.Cols)
	}
	if m.Downscale < 0 {
		return fmt.Errorf("%w: negative downscale", ErrInvalidManifest)
	}
	if _, err := backend.Normalize(m.Backend); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if err := m.Tiles.OrDefault().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return nil
}

// FeatherEnabled reports whether distance-to-border weights are used.
// Feathering is on unless explicitly disabled.
func (m *Manifest) FeatherEnabled() bool {
	return m.Feather == nil || *m.Feather
}

// Mapping returns the canvas-to-frame mapping of a w×h frame. The size is
// only used to resolve Corners.
func (f FrameSpec) Mapping(w, h int) (warp.Mapping, error) {
	set := 0
	for _, ok := range []bool{len(f.Matrix) > 0, len(f.Params) > 0, len(f.Corners) > 0} {
		if ok {
			set++
		}
	}
	if set > 1 {
		return warp.Mapping{}, errors.New("set only one of matrix, params and corners")
	}
	switch {
	case len(f.Matrix) > 0:
		if len(f.Matrix) != 9 {
			return warp.Mapping{}, fmt.Errorf("matrix needs 9 values, got %d", len(f.Matrix))
		}
		var m warp.Mapping
		copy(m[:], f.Matrix)
		return m, nil
	case len(f.Params) > 0:
		m, _, err := warp.FromParams(f.Params)
		return m, err
	case len(f.Corners) > 0:
		if len(f.Corners) != 4 {
			return warp.Mapping{}, fmt.Errorf("corners needs 4 points, got %d", len(f.Corners))
		}
		var dst [4]warp.Point
		for i, c := range f.Corners {
			dst[i] = warp.Point{X: c[0], Y: c[1]}
		}
		return warp.FromCorrespondences(dst, rect(w, h))
	default:
		return warp.Identity(), nil
	}
}

func rect(w, h int) [4]warp.Point {
	fw, fh := float64(w), float64(h)
	return [4]warp.Point{{X: 0, Y: 0}, {X: fw, Y: 0}, {X: fw, Y: fh}, {X: 0, Y: fh}}
}
