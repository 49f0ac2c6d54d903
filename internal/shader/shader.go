// Package shader holds the WGSL rendition of the warp-sample-blend kernel
// and the host side of its buffer contract.
package shader

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/gogpu/naga"

	"github.com/samcharles93/mosaic/internal/backend"
	"github.com/samcharles93/mosaic/internal/tensor"
	"github.com/samcharles93/mosaic/internal/warp"
)

//go:embed shaders/warp_blend.wgsl
var warpBlendWGSL string

const EntryPoint = "warp_blend"

// Binding slots in group 0.
const (
	BindingMapping = iota
	BindingInput
	BindingOutput
	BindingInShape
	BindingOutShape
)

// MaxInvocations is the WebGPU default limit on invocations per workgroup.
const MaxInvocations = 256

var kernelTemplate = template.Must(template.New("warp_blend").Parse(warpBlendWGSL))

// Source returns the kernel with its workgroup size set from t.
func Source(t backend.Tiles) (string, error) {
	t = t.OrDefault()
	if err := t.Validate(); err != nil {
		return "", err
	}
	if n := t.X * t.Y * t.Z; n > MaxInvocations {
		return "", fmt.Errorf("workgroup %s has %d invocations, limit is %d", t, n, MaxInvocations)
	}
	var sb strings.Builder
	err := kernelTemplate.Execute(&sb, struct {
		backend.Tiles
		EntryPoint string
	}{t, EntryPoint})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Compile translates the kernel to a SPIR-V module: little-endian 32-bit
// words, ready to write to disk or hand to a device.
func Compile(t backend.Tiles) ([]byte, error) {
	src, err := Source(t)
	if err != nil {
		return nil, err
	}
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("failed to compile shader: %d bytes is not a whole number of words", len(spirv))
	}
	return spirv, nil
}

// DispatchSize returns the workgroup counts covering s.
func DispatchSize(s tensor.Shape, t backend.Tiles) [3]uint32 {
	g := backend.NewGrid(s, t.OrDefault())
	return [3]uint32{uint32(g.NX), uint32(g.NY), uint32(g.NZ)}
}

// Buffers is one invocation's bindings encoded as the kernel reads them.
type Buffers struct {
	Mapping  []byte
	Input    []byte
	Output   []byte
	InShape  []byte
	OutShape []byte
}

// Pack encodes a kernel invocation. Shapes are validated first, including the
// equal channel count the kernel relies on.
func Pack(m warp.Mapping, in, out *tensor.Buffer) (*Buffers, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("input: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("output: %w", err)
	}
	if in.Shape.Channels != out.Shape.Channels {
		return nil, fmt.Errorf("input has %d channels, output has %d", in.Shape.Channels, out.Shape.Channels)
	}
	mb := make([]byte, 36)
	for i, v := range m {
		binary.LittleEndian.PutUint32(mb[i*4:], math.Float32bits(v))
	}
	return &Buffers{
		Mapping:  mb,
		Input:    in.Raw(),
		Output:   out.Raw(),
		InShape:  shapeBytes(in.Shape),
		OutShape: shapeBytes(out.Shape),
	}, nil
}

// Slots returns the buffers indexed by binding slot.
func (b *Buffers) Slots() [5][]byte {
	var s [5][]byte
	s[BindingMapping] = b.Mapping
	s[BindingInput] = b.Input
	s[BindingOutput] = b.Output
	s[BindingInShape] = b.InShape
	s[BindingOutShape] = b.OutShape
	return s
}

// WriteDir writes each buffer to dir as binding<N>.bin, N being its slot.
func (b *Buffers) WriteDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for slot, data := range b.Slots() {
		path := filepath.Join(dir, fmt.Sprintf("binding%d.bin", slot))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

func shapeBytes(s tensor.Shape) []byte {
	b := make([]byte, 12)
	for i, w := range s.Words() {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}
