// Package geometry owns GPU-resident vertex and index data and the attribute
// layouts that map it onto shader inputs.
package geometry

import (
	"errors"
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/logger"
)

// Usage is the update frequency hint for a buffer.
type Usage int

const (
	Static Usage = iota
	Streamed
)

// LayoutError reports data or an attribute layout that does not match the
// buffer's byte layout. Nothing is drawn from a buffer that failed with it.
type LayoutError struct {
	Reason string
}

func (e *LayoutError) Error() string {
	return "buffer layout: " + e.Reason
}

func layoutErrorf(format string, args ...any) error {
	return &LayoutError{Reason: fmt.Sprintf(format, args...)}
}

var (
	// ErrNotBound is returned by draws issued while the buffer is not bound.
	ErrNotBound = errors.New("geometry: buffer not bound")
	// ErrNoLayout is returned by Bind before any attribute layout was bound.
	ErrNoLayout = errors.New("geometry: no attribute layout")
	// ErrDeleted is returned when a deleted buffer is used.
	ErrDeleted = errors.New("geometry: buffer deleted")
)

// Data describes geometry to upload. Positions and colours are packed into a
// single vertex buffer, colours after positions.
type Data struct {
	Positions   []float32
	PositionDim int
	Colors      []float32
	ColorDim    int
	Indices     []uint32
	// IndexType is the on-GPU width of Indices: gpu.Uint16 or gpu.Uint32.
	IndexType   gpu.ComponentType
	VertexCount int
	Usage       Usage
	// Primitive is the assembly mode used by draws; the zero value is
	// gpu.Triangles.
	Primitive gpu.Primitive
}

// Validate checks the invariants Upload relies on.
func (d *Data) Validate() error {
	if d.VertexCount <= 0 {
		return layoutErrorf("vertex count %d must be positive", d.VertexCount)
	}
	if !validDim(d.PositionDim) {
		return layoutErrorf("position dimension %d not in 2..4", d.PositionDim)
	}
	if want := d.VertexCount * d.PositionDim; len(d.Positions) != want {
		return layoutErrorf("%d position floats, want %d (%d vertices x %d)",
			len(d.Positions), want, d.VertexCount, d.PositionDim)
	}
	if len(d.Colors) > 0 {
		if !validDim(d.ColorDim) {
			return layoutErrorf("color dimension %d not in 2..4", d.ColorDim)
		}
		if want := d.VertexCount * d.ColorDim; len(d.Colors) != want {
			return layoutErrorf("%d color floats, want %d (%d vertices x %d)",
				len(d.Colors), want, d.VertexCount, d.ColorDim)
		}
	}
	if len(d.Indices) > 0 {
		if d.IndexType != gpu.Uint16 && d.IndexType != gpu.Uint32 {
			return layoutErrorf("index type %s is not an index type", d.IndexType)
		}
		for i, idx := range d.Indices {
			if int64(idx) >= int64(d.VertexCount) {
				return layoutErrorf("index %d at position %d out of range for %d vertices", idx, i, d.VertexCount)
			}
			if d.IndexType == gpu.Uint16 && idx > 0xFFFF {
				return layoutErrorf("index %d at position %d does not fit uint16", idx, i)
			}
		}
	}
	return nil
}

func validDim(n int) bool {
	return n >= 2 && n <= 4
}

// State is the binding state of a buffer.
type State int

const (
	Uninitialized State = iota
	Uploaded
	Bound
	Unbound
)

// Buffer is uploaded geometry: a vertex buffer, an optional index buffer and
// the vertex array object holding the bound attribute layout.
type Buffer struct {
	dev gpu.Device

	vbo uint32
	ebo uint32
	vao uint32

	vertexCount  int
	positionDim  int
	colorDim     int
	hasColors    bool
	positionSize int
	byteSize     int

	indexCount int
	indexType  gpu.ComponentType
	maxIndex   uint32

	usage     Usage
	primitive gpu.Primitive
	layout    []VertexAttribute
	state     State
}

// Upload validates data and copies it to the GPU. Positions and colours are
// written as 32-bit floats and indices at their declared width, so the byte
// layout never depends on Go's native numeric sizes.
func Upload(dev gpu.Device, data Data) (*Buffer, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	b := &Buffer{
		dev:          dev,
		vertexCount:  data.VertexCount,
		positionDim:  data.PositionDim,
		colorDim:     data.ColorDim,
		hasColors:    len(data.Colors) > 0,
		positionSize: len(data.Positions) * gpu.Float32.Size(),
		usage:        data.Usage,
		primitive:    data.Primitive,
	}

	vertices := make([]float32, 0, len(data.Positions)+len(data.Colors))
	vertices = append(vertices, data.Positions...)
	vertices = append(vertices, data.Colors...)
	raw := float32Bytes(vertices)
	b.byteSize = len(raw)

	b.vbo = dev.GenBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, b.vbo)
	dev.BufferData(gpu.ArrayBuffer, raw, gpuUsage(data.Usage))
	dev.BindBuffer(gpu.ArrayBuffer, 0)

	if len(data.Indices) > 0 {
		b.indexCount = len(data.Indices)
		b.indexType = data.IndexType
		for _, idx := range data.Indices {
			if idx > b.maxIndex {
				b.maxIndex = idx
			}
		}
		b.ebo = dev.GenBuffer()
		dev.BindBuffer(gpu.ElementArrayBuffer, b.ebo)
		dev.BufferData(gpu.ElementArrayBuffer, indexBytes(data.Indices, data.IndexType), gpu.StaticDraw)
		dev.BindBuffer(gpu.ElementArrayBuffer, 0)
	}

	b.vao = dev.GenVertexArray()
	b.state = Uploaded

	logger.Debug("geometry uploaded",
		zap.Uint32("vbo", b.vbo),
		zap.Uint32("ebo", b.ebo),
		zap.Int("vertices", b.vertexCount),
		zap.Int("indices", b.indexCount),
		zap.Int("bytes", b.byteSize),
		zap.Stringer("usage", gpuUsage(data.Usage)),
	)
	return b, nil
}

// VertexCount returns the number of vertices in the buffer.
func (b *Buffer) VertexCount() int { return b.vertexCount }

// IndexCount returns the number of indices, zero for non-indexed geometry.
func (b *Buffer) IndexCount() int { return b.indexCount }

// Indexed reports whether the buffer has an index buffer.
func (b *Buffer) Indexed() bool { return b.indexCount > 0 }

// ByteSize returns the size of the vertex buffer in bytes.
func (b *Buffer) ByteSize() int { return b.byteSize }

// State returns the current binding state.
func (b *Buffer) State() State { return b.state }

// UpdatePositions rewrites the position block of a streamed buffer.
func (b *Buffer) UpdatePositions(positions []float32) error {
	if b.state == Uninitialized {
		return ErrDeleted
	}
	if b.usage != Streamed {
		return layoutErrorf("positions of a static buffer cannot be updated")
	}
	if want := b.vertexCount * b.positionDim; len(positions) != want {
		return layoutErrorf("%d position floats, want %d", len(positions), want)
	}
	b.dev.BindBuffer(gpu.ArrayBuffer, b.vbo)
	b.dev.BufferSubData(gpu.ArrayBuffer, 0, float32Bytes(positions))
	b.dev.BindBuffer(gpu.ArrayBuffer, 0)
	return nil
}

// Delete releases the vertex array, index buffer and vertex buffer, in
// reverse order of creation. Safe to call more than once.
func (b *Buffer) Delete() {
	if b.state == Uninitialized {
		return
	}
	b.Unbind()
	b.dev.DeleteVertexArray(b.vao)
	if b.ebo != 0 {
		b.dev.DeleteBuffer(b.ebo)
	}
	b.dev.DeleteBuffer(b.vbo)
	b.vao, b.ebo, b.vbo = 0, 0, 0
	b.layout = nil
	b.state = Uninitialized
}

func gpuUsage(u Usage) gpu.Usage {
	if u == Streamed {
		return gpu.StreamDraw
	}
	return gpu.StaticDraw
}

// float32Bytes views v as its native-endian bytes, the layout GL reads.
func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// indexBytes narrows or copies indices to the declared index width.
func indexBytes(indices []uint32, t gpu.ComponentType) []byte {
	if t == gpu.Uint16 {
		narrow := make([]uint16, len(indices))
		for i, idx := range indices {
			narrow[i] = uint16(idx)
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&narrow[0])), len(narrow)*2)
	}
	wide := append([]uint32(nil), indices...)
	return unsafe.Slice((*byte)(unsafe.Pointer(&wide[0])), len(wide)*4)
}
