// Package api serves composites over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/mosaic/internal/backend"
	"github.com/samcharles93/mosaic/internal/composite"
	"github.com/samcharles93/mosaic/internal/logger"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

// MaxElements bounds the canvas and frame sizes a request may allocate.
const MaxElements = 1 << 26

type Server struct {
	store      *CompositeStore
	compositor *composite.Compositor
	log        logger.Logger
	clock      func() time.Time
}

func NewServer(store *CompositeStore, compositor *composite.Compositor, log logger.Logger) *Server {
	if store == nil {
		store = NewCompositeStore()
	}
	return &Server{
		store:      store,
		compositor: compositor,
		log:        logger.OrDiscard(log).With("component", "api"),
		clock:      time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/backends", s.handleBackends)

	e.POST("/v1/composites", s.handleCreateComposite)
	e.GET("/v1/composites/:id", s.handleGetComposite)
	e.DELETE("/v1/composites/:id", s.handleDeleteComposite)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBackends(c *echo.Context) error {
	active := ""
	if s.compositor != nil && s.compositor.Backend != nil {
		active = s.compositor.Backend.Name()
	}
	resp := BackendsResponse{Object: "list", Features: backend.Features()}
	for _, name := range []string{backend.CPU, backend.Serial} {
		resp.Data = append(resp.Data, BackendInfo{
			Name:    name,
			Active:  name == active,
			Default: name == backend.CPU,
		})
	}
	if resp.Features == nil {
		resp.Features = []string{}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateComposite(c *echo.Context) error {
	if s.compositor == nil || s.compositor.Backend == nil {
		return writeServerError(c, "compositor not configured")
	}
	req, err := decodeJSON[CompositeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err)
	}
	frames, canvas, err := buildJob(&req)
	if err != nil {
		return writeBadRequest(c, err)
	}
	acc, err := composite.NewAccumulator(canvas.Shape(frames[0].Image.Shape.Channels))
	if err != nil {
		return writeBadRequest(c, err)
	}

	start := s.clock()
	if err := s.compositor.Run(c.Request().Context(), canvas.Place(frames), acc); err != nil {
		if errors.Is(err, composite.ErrInvalidConfig) {
			return writeBadRequest(c, err)
		}
		s.log.Error("composite failed", "error", err)
		return writeServerError(c, err.Error())
	}
	if i := tensor.FirstNonFinite(acc.Data); i >= 0 {
		row, col, ch := acc.Shape.Unravel(i)
		return writeBadRequest(c, newInvalidRequestf("frames",
			"accumulator overflowed at (%d,%d,%d); frame values or weights are too large", row, col, ch))
	}
	if req.Normalize {
		if err := composite.NormalizeInPlace(acc); err != nil {
			return writeServerError(c, err.Error())
		}
	}
	now := s.clock()

	resp := &CompositeResponse{
		ID:         newCompositeID(),
		Object:     "composite",
		CreatedAt:  now.Unix(),
		Status:     "completed",
		Backend:    s.compositor.Backend.Name(),
		Frames:     len(frames),
		Shape:      acc.Shape.Words(),
		Offset:     canvas.Offset,
		Normalized: req.Normalize,
		ElapsedMS:  float64(now.Sub(start).Microseconds()) / 1000,
		Data:       acc.Data,
	}
	s.store.Save(resp)
	s.log.Info("composite stored", "id", resp.ID, "frames", resp.Frames, "shape", acc.Shape.String())
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetComposite(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "composite not found")
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDeleteComposite(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "composite not found")
	}
	return c.JSON(http.StatusOK, DeleteCompositeResp{
		ID:      id,
		Object:  "composite",
		Deleted: true,
	})
}

// buildJob turns a request into frames and a canvas. Shape and length
// errors are reported here; channel agreement is left to the compositor.
func buildJob(req *CompositeRequest) ([]composite.Frame, composite.Canvas, error) {
	if len(req.Frames) == 0 {
		return nil, composite.Canvas{}, newInvalidRequest("frames", "at least one frame is required")
	}
	frames := make([]composite.Frame, len(req.Frames))
	for i, in := range req.Frames {
		shape := tensor.ShapeFromWords(in.Shape)
		if err := shape.Validate(); err != nil {
			return nil, composite.Canvas{}, newInvalidRequestf(fmt.Sprintf("frames[%d].shape", i), "%v", err)
		}
		if shape.Len() > MaxElements {
			return nil, composite.Canvas{}, newInvalidRequestf(fmt.Sprintf("frames[%d].shape", i), "%s exceeds %d elements", shape, MaxElements)
		}
		img, err := tensor.NewBufferFromData(shape, in.Data)
		if err != nil {
			return nil, composite.Canvas{}, newInvalidRequestf(fmt.Sprintf("frames[%d].data", i), "%v", err)
		}
		m, err := frameMapping(in)
		if err != nil {
			return nil, composite.Canvas{}, newInvalidRequestf(fmt.Sprintf("frames[%d]", i), "%v", err)
		}
		frames[i] = composite.Frame{Name: in.Name, Mapping: m, Image: img}
	}

	var canvas composite.Canvas
	if req.Canvas != nil {
		canvas = composite.Canvas{Rows: int(req.Canvas.Rows), Cols: int(req.Canvas.Cols), Offset: warp.Identity()}
	} else {
		var err error
		canvas, err = composite.PlanCanvas(frames)
		if err != nil {
			return nil, composite.Canvas{}, newInvalidRequest("frames", err.Error())
		}
	}
	if !withinLimit(canvas.Rows, canvas.Cols, frames[0].Image.Shape.Channels) {
		return nil, composite.Canvas{}, newInvalidRequestf("canvas", "%dx%d is empty or exceeds %d elements", canvas.Rows, canvas.Cols, MaxElements)
	}
	return frames, canvas, nil
}

// withinLimit reports whether every dimension is positive and their product
// is at most MaxElements.
func withinLimit(dims ...int) bool {
	n := 1
	for _, d := range dims {
		if d <= 0 || d > MaxElements {
			return false
		}
		n *= d
		if n > MaxElements {
			return false
		}
	}
	return true
}

func frameMapping(in FrameInput) (warp.Mapping, error) {
	switch {
	case len(in.Mapping) > 0 && len(in.Params) > 0:
		return warp.Mapping{}, errors.New("set only one of mapping and params")
	case len(in.Mapping) > 0:
		if len(in.Mapping) != 9 {
			return warp.Mapping{}, fmt.Errorf("mapping needs 9 values, got %d", len(in.Mapping))
		}
		var m warp.Mapping
		copy(m[:], in.Mapping)
		return m, nil
	case len(in.Params) > 0:
		m, _, err := warp.FromParams(in.Params)
		return m, err
	default:
		return warp.Identity(), nil
	}
}
