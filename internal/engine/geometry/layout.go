package geometry

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/logger"
)

// VertexAttribute maps a region of the vertex buffer to a shader input slot.
type VertexAttribute struct {
	Slot       uint32
	Components int
	Type       gpu.ComponentType
	// Stride is the byte distance between vertices; zero means tightly packed.
	Stride int
	Offset int
	// Alias allows this attribute to overlap others in the same layout.
	Alias bool
}

func (a VertexAttribute) size() int {
	return a.Components * a.Type.Size()
}

func (a VertexAttribute) stride() int {
	if a.Stride == 0 {
		return a.size()
	}
	return a.Stride
}

// extent returns the end of the last byte the attribute reads for n vertices.
func (a VertexAttribute) extent(n int) int {
	return a.Offset + (n-1)*a.stride() + a.size()
}

// PositionAttribute returns the tightly packed position block at slot.
func (b *Buffer) PositionAttribute(slot uint32) VertexAttribute {
	return VertexAttribute{Slot: slot, Components: b.positionDim, Type: gpu.Float32}
}

// ColorAttribute returns the colour block that follows the positions. The
// second result is false when the buffer carries no colours.
func (b *Buffer) ColorAttribute(slot uint32) (VertexAttribute, bool) {
	if !b.hasColors {
		return VertexAttribute{}, false
	}
	return VertexAttribute{
		Slot:       slot,
		Components: b.colorDim,
		Type:       gpu.Float32,
		Offset:     b.positionSize,
	}, true
}

// DefaultLayout is the position attribute at slot 0 plus, when present, the
// colour attribute at slot 1.
func (b *Buffer) DefaultLayout() []VertexAttribute {
	layout := []VertexAttribute{b.PositionAttribute(0)}
	if c, ok := b.ColorAttribute(1); ok {
		layout = append(layout, c)
	}
	return layout
}

// CheckLayout validates layout against the buffer's byte size without
// touching GPU state.
func (b *Buffer) CheckLayout(layout []VertexAttribute) error {
	if len(layout) == 0 {
		return layoutErrorf("empty attribute layout")
	}
	slots := make(map[uint32]bool, len(layout))
	for i, a := range layout {
		if slots[a.Slot] {
			return layoutErrorf("slot %d bound twice", a.Slot)
		}
		slots[a.Slot] = true

		if !validDim(a.Components) {
			return layoutErrorf("slot %d: %d components not in 2..4", a.Slot, a.Components)
		}
		if a.Type != gpu.Float32 {
			return layoutErrorf("slot %d: vertex data is float32, got %s", a.Slot, a.Type)
		}
		if a.Offset < 0 || a.Offset%a.Type.Size() != 0 {
			return layoutErrorf("slot %d: offset %d not aligned to %d bytes", a.Slot, a.Offset, a.Type.Size())
		}
		if a.Stride != 0 && a.Stride < a.size() {
			return layoutErrorf("slot %d: stride %d shorter than element size %d", a.Slot, a.Stride, a.size())
		}
		if end := a.extent(b.vertexCount); end > b.byteSize {
			return layoutErrorf("slot %d: reads to byte %d of a %d byte buffer", a.Slot, end, b.byteSize)
		}
		for _, other := range layout[:i] {
			if !a.Alias && !other.Alias && overlaps(a, other, b.vertexCount) {
				return layoutErrorf("slot %d overlaps slot %d", a.Slot, other.Slot)
			}
		}
	}
	return nil
}

// overlaps reports whether two attributes read shared bytes. Interleaved
// attributes with a common stride only overlap when their per-vertex
// windows intersect.
func overlaps(a, c VertexAttribute, n int) bool {
	if a.extent(n) <= c.Offset || c.extent(n) <= a.Offset {
		return false
	}
	s := a.stride()
	if s == c.stride() && s > a.size() && s > c.size() {
		ra, rc := a.Offset%s, c.Offset%s
		return ra < rc+c.size() && rc < ra+a.size()
	}
	return true
}

// BindAttributes records layout into the buffer's vertex array, replacing
// any previous layout, and attaches the index buffer.
func (b *Buffer) BindAttributes(layout []VertexAttribute) error {
	if b.state == Uninitialized {
		return ErrDeleted
	}
	if err := b.CheckLayout(layout); err != nil {
		return err
	}

	if b.layout != nil {
		// A fresh vertex array drops slots the old layout enabled.
		b.dev.DeleteVertexArray(b.vao)
		b.vao = b.dev.GenVertexArray()
	}

	b.dev.BindVertexArray(b.vao)
	b.dev.BindBuffer(gpu.ArrayBuffer, b.vbo)
	for _, a := range layout {
		b.dev.EnableVertexAttribArray(a.Slot)
		b.dev.VertexAttribPointer(a.Slot, int32(a.Components), a.Type, false, int32(a.Stride), uintptr(a.Offset))
	}
	if b.ebo != 0 {
		b.dev.BindBuffer(gpu.ElementArrayBuffer, b.ebo)
	}
	b.dev.BindVertexArray(0)
	b.dev.BindBuffer(gpu.ArrayBuffer, 0)

	b.layout = append([]VertexAttribute(nil), layout...)
	if b.state == Bound {
		b.state = Unbound
	}

	logger.Debug("attribute layout bound",
		zap.Uint32("vao", b.vao),
		zap.Int("attributes", len(layout)),
	)
	return nil
}

// Layout returns the currently bound attribute layout.
func (b *Buffer) Layout() []VertexAttribute {
	return b.layout
}

// Bind makes the buffer's vertex array current.
func (b *Buffer) Bind() error {
	switch {
	case b.state == Uninitialized:
		return ErrDeleted
	case b.layout == nil:
		return ErrNoLayout
	}
	b.dev.BindVertexArray(b.vao)
	b.state = Bound
	return nil
}

// Unbind clears the current vertex array.
func (b *Buffer) Unbind() {
	if b.state != Bound {
		return
	}
	b.dev.BindVertexArray(0)
	b.state = Unbound
}

// DrawArrays draws count vertices starting at first without indices.
func (b *Buffer) DrawArrays(first, count int) error {
	if b.state != Bound {
		return ErrNotBound
	}
	if first < 0 || count <= 0 || first+count > b.vertexCount {
		return layoutErrorf("draw of vertices [%d, %d) outside %d vertices", first, first+count, b.vertexCount)
	}
	b.dev.DrawArrays(b.primitive, int32(first), int32(count))
	return nil
}

// DrawIndexed draws the whole index buffer with every index shifted by
// baseVertex, so one index list can address repeated sub-meshes.
func (b *Buffer) DrawIndexed(baseVertex int) error {
	if b.state != Bound {
		return ErrNotBound
	}
	if b.indexCount == 0 {
		return layoutErrorf("indexed draw on a buffer without indices")
	}
	if baseVertex < 0 {
		return layoutErrorf("negative base vertex %d", baseVertex)
	}
	if int64(b.maxIndex)+int64(baseVertex) >= int64(b.vertexCount) {
		return layoutErrorf("index %d + base vertex %d out of range for %d vertices",
			b.maxIndex, baseVertex, b.vertexCount)
	}

	if baseVertex == 0 {
		b.dev.DrawElements(b.primitive, int32(b.indexCount), b.indexType, 0)
	} else {
		b.dev.DrawElementsBaseVertex(b.primitive, int32(b.indexCount), b.indexType, 0, int32(baseVertex))
	}
	return nil
}
