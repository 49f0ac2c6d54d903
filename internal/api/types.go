package api

// FrameInput is one source frame of a composite request. Data holds
// rows*cols*channels samples, row-major and channel-minor; the trailing
// channel is the frame's weight.
type FrameInput struct {
	Name  string    `json:"name,omitempty"`
	Shape [3]uint32 `json:"shape"`
	Data  []float32 `json:"data"`

	// Mapping is the 3×3 row-major canvas-to-frame matrix. Params is the 2,
	// 6 or 8 parameter form. Neither set means identity.
	Mapping []float32 `json:"mapping,omitempty"`
	Params  []float32 `json:"params,omitempty"`
}

// CanvasSize fixes the output size. When omitted the canvas encloses every
// frame.
type CanvasSize struct {
	Rows uint32 `json:"rows"`
	Cols uint32 `json:"cols"`
}

type CompositeRequest struct {
	Frames    []FrameInput `json:"frames"`
	Canvas    *CanvasSize  `json:"canvas,omitempty"`
	Normalize bool         `json:"normalize,omitempty"`
}

type CompositeResponse struct {
	ID         string     `json:"id"`
	Object     string     `json:"object"`
	CreatedAt  int64      `json:"created_at"`
	Status     string     `json:"status"`
	Backend    string     `json:"backend"`
	Frames     int        `json:"frames"`
	Shape      [3]uint32  `json:"shape"`
	Offset     [9]float32 `json:"offset"`
	Normalized bool       `json:"normalized"`
	ElapsedMS  float64    `json:"elapsed_ms"`
	Data       []float32  `json:"data"`
}

type DeleteCompositeResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type BackendInfo struct {
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Default bool   `json:"default"`
}

type BackendsResponse struct {
	Object   string        `json:"object"`
	Data     []BackendInfo `json:"data"`
	Features []string      `json:"features"`
}

type ResponseError struct {
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Param   string `json:"param,omitempty"`
}
