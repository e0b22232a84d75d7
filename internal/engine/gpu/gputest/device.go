// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"

	"github.com/Faultbox/gltut/internal/engine/gpu"
)

// Attrib is a vertex attribute pointer as recorded into a vertex array.
type Attrib struct {
	Components int32
	Type       gpu.ComponentType
	Normalized bool
	Stride     int32
	Offset     uintptr
	Buffer     uint32
	Enabled    bool
}

// VertexArray is the recorded state of a vertex array object.
type VertexArray struct {
	Attribs       map[uint32]Attrib
	ElementBuffer uint32
}

// Draw is one recorded draw call.
type Draw struct {
	Mode       gpu.Primitive
	Indexed    bool
	First      int32
	Count      int32
	Type       gpu.ComponentType
	Offset     uintptr
	BaseVertex int32
	Program    uint32
	VAO        uint32
}

// Device records every call and keeps enough state to assert on.
type Device struct {
	// CompileErrors makes compilation of the given kind fail with the log.
	CompileErrors map[gpu.ShaderType]string
	// LinkError makes LinkProgram fail with the log when non-empty.
	LinkError string
	// Uniforms maps active uniform names to locations.
	Uniforms map[string]int32

	Calls []string

	Shaders       map[uint32]gpu.ShaderType
	Programs      map[uint32][]uint32
	Buffers       map[uint32][]byte
	BufferUsage   map[uint32]gpu.Usage
	VertexArrays  map[uint32]*VertexArray
	Floats        map[int32][]float32
	Matrices      map[int32][16]float32
	Draws         []Draw
	Enabled       map[gpu.Capability]bool
	Culled        gpu.Face
	Front         gpu.Winding
	Depth         gpu.DepthFunc
	DepthWrite    bool
	DepthNear     float64
	DepthFar      float64
	ClearRGBA     [4]float32
	ClearDepthVal float64
	Clears        []gpu.ClearMask
	ViewportRect  [4]int32

	CurrentProgram uint32
	BoundVAO       uint32
	BoundArray     uint32
	BoundElement   uint32

	compiled map[uint32]bool
	linked   map[uint32]bool
	next     uint32
}

// New returns a device whose programs expose the given uniforms.
func New(uniforms ...string) *Device {
	d := &Device{
		CompileErrors: make(map[gpu.ShaderType]string),
		Uniforms:      make(map[string]int32),
		Shaders:       make(map[uint32]gpu.ShaderType),
		Programs:      make(map[uint32][]uint32),
		Buffers:       make(map[uint32][]byte),
		BufferUsage:   make(map[uint32]gpu.Usage),
		VertexArrays:  make(map[uint32]*VertexArray),
		Floats:        make(map[int32][]float32),
		Matrices:      make(map[int32][16]float32),
		Enabled:       make(map[gpu.Capability]bool),
		compiled:      make(map[uint32]bool),
		linked:        make(map[uint32]bool),
	}
	for i, name := range uniforms {
		d.Uniforms[name] = int32(i)
	}
	return d
}

// Live reports how many objects of each kind have not been deleted.
func (d *Device) Live() (shaders, programs, buffers, vaos int) {
	return len(d.Shaders), len(d.Programs), len(d.Buffers), len(d.VertexArrays)
}

// Location returns the location assigned to an active uniform, or -1.
func (d *Device) Location(name string) int32 {
	if loc, ok := d.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateShader(t gpu.ShaderType) uint32 {
	h := d.id()
	d.Shaders[h] = t
	d.record("CreateShader(%s)=%d", t, h)
	return h
}

func (d *Device) ShaderSource(shader uint32, source string) {
	d.record("ShaderSource(%d)", shader)
}

func (d *Device) CompileShader(shader uint32) {
	_, fail := d.CompileErrors[d.Shaders[shader]]
	d.compiled[shader] = !fail
	d.record("CompileShader(%d)", shader)
}

func (d *Device) ShaderCompiled(shader uint32) bool { return d.compiled[shader] }

func (d *Device) ShaderInfoLog(shader uint32) string {
	return d.CompileErrors[d.Shaders[shader]]
}

func (d *Device) DeleteShader(shader uint32) {
	delete(d.Shaders, shader)
	delete(d.compiled, shader)
	d.record("DeleteShader(%d)", shader)
}

func (d *Device) CreateProgram() uint32 {
	h := d.id()
	d.Programs[h] = nil
	d.record("CreateProgram()=%d", h)
	return h
}

func (d *Device) AttachShader(program, shader uint32) {
	d.Programs[program] = append(d.Programs[program], shader)
	d.record("AttachShader(%d,%d)", program, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	attached := d.Programs[program]
	for i, s := range attached {
		if s == shader {
			d.Programs[program] = append(attached[:i:i], attached[i+1:]...)
			break
		}
	}
	d.record("DetachShader(%d,%d)", program, shader)
}

func (d *Device) LinkProgram(program uint32) {
	ok := d.LinkError == ""
	for _, s := range d.Programs[program] {
		if !d.compiled[s] {
			ok = false
		}
	}
	d.linked[program] = ok
	d.record("LinkProgram(%d)", program)
}

func (d *Device) ProgramLinked(program uint32) bool { return d.linked[program] }

func (d *Device) ProgramInfoLog(program uint32) string {
	if d.linked[program] {
		return ""
	}
	return d.LinkError
}

func (d *Device) DeleteProgram(program uint32) {
	delete(d.Programs, program)
	delete(d.linked, program)
	d.record("DeleteProgram(%d)", program)
}

func (d *Device) UseProgram(program uint32) {
	d.CurrentProgram = program
	d.record("UseProgram(%d)", program)
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return d.Location(name)
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.Floats[location] = []float32{v}
	d.record("Uniform1f(%d)", location)
}

func (d *Device) Uniform2f(location int32, x, y float32) {
	d.Floats[location] = []float32{x, y}
	d.record("Uniform2f(%d)", location)
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.Floats[location] = []float32{x, y, z}
	d.record("Uniform3f(%d)", location)
}

func (d *Device) UniformMatrix4fv(location int32, m *[16]float32) {
	d.Matrices[location] = *m
	d.record("UniformMatrix4fv(%d)", location)
}

func (d *Device) GenBuffer() uint32 {
	h := d.id()
	d.Buffers[h] = nil
	d.record("GenBuffer()=%d", h)
	return h
}

func (d *Device) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	if target == gpu.ElementArrayBuffer {
		d.BoundElement = buffer
		if vao, ok := d.VertexArrays[d.BoundVAO]; ok {
			vao.ElementBuffer = buffer
		}
	} else {
		d.BoundArray = buffer
	}
	d.record("BindBuffer(%d,%d)", target, buffer)
}

func (d *Device) bound(target gpu.BufferTarget) uint32 {
	if target == gpu.ElementArrayBuffer {
		return d.BoundElement
	}
	return d.BoundArray
}

func (d *Device) BufferData(target gpu.BufferTarget, data []byte, usage gpu.Usage) {
	b := d.bound(target)
	d.Buffers[b] = append([]byte(nil), data...)
	d.BufferUsage[b] = usage
	d.record("BufferData(%d,%d bytes,%s)", target, len(data), usage)
}

func (d *Device) BufferSubData(target gpu.BufferTarget, offset int, data []byte) {
	b := d.bound(target)
	copy(d.Buffers[b][offset:], data)
	d.record("BufferSubData(%d,%d,%d bytes)", target, offset, len(data))
}

func (d *Device) DeleteBuffer(buffer uint32) {
	delete(d.Buffers, buffer)
	delete(d.BufferUsage, buffer)
	d.record("DeleteBuffer(%d)", buffer)
}

func (d *Device) GenVertexArray() uint32 {
	h := d.id()
	d.VertexArrays[h] = &VertexArray{Attribs: make(map[uint32]Attrib)}
	d.record("GenVertexArray()=%d", h)
	return h
}

func (d *Device) BindVertexArray(vao uint32) {
	d.BoundVAO = vao
	if va, ok := d.VertexArrays[vao]; ok {
		d.BoundElement = va.ElementBuffer
	}
	d.record("BindVertexArray(%d)", vao)
}

func (d *Device) DeleteVertexArray(vao uint32) {
	delete(d.VertexArrays, vao)
	d.record("DeleteVertexArray(%d)", vao)
}

func (d *Device) EnableVertexAttribArray(slot uint32) {
	if va, ok := d.VertexArrays[d.BoundVAO]; ok {
		a := va.Attribs[slot]
		a.Enabled = true
		va.Attribs[slot] = a
	}
	d.record("EnableVertexAttribArray(%d)", slot)
}

func (d *Device) VertexAttribPointer(slot uint32, components int32, t gpu.ComponentType, normalized bool, stride int32, offset uintptr) {
	if va, ok := d.VertexArrays[d.BoundVAO]; ok {
		a := va.Attribs[slot]
		a.Components = components
		a.Type = t
		a.Normalized = normalized
		a.Stride = stride
		a.Offset = offset
		a.Buffer = d.BoundArray
		va.Attribs[slot] = a
	}
	d.record("VertexAttribPointer(%d,%d,%s,%d,%d)", slot, components, t, stride, offset)
}

func (d *Device) Enable(c gpu.Capability) {
	d.Enabled[c] = true
	d.record("Enable(%d)", c)
}

func (d *Device) CullFace(f gpu.Face) {
	d.Culled = f
	d.record("CullFace(%d)", f)
}

func (d *Device) FrontFace(w gpu.Winding) {
	d.Front = w
	d.record("FrontFace(%d)", w)
}

func (d *Device) DepthFunc(f gpu.DepthFunc) {
	d.Depth = f
	d.record("DepthFunc(%d)", f)
}

func (d *Device) DepthMask(write bool) {
	d.DepthWrite = write
	d.record("DepthMask(%t)", write)
}

func (d *Device) DepthRange(near, far float64) {
	d.DepthNear, d.DepthFar = near, far
	d.record("DepthRange(%g,%g)", near, far)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.ClearRGBA = [4]float32{r, g, b, a}
	d.record("ClearColor")
}

func (d *Device) ClearDepth(v float64) {
	d.ClearDepthVal = v
	d.record("ClearDepth(%g)", v)
}

func (d *Device) Clear(mask gpu.ClearMask) {
	d.Clears = append(d.Clears, mask)
	d.record("Clear(%d)", mask)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.ViewportRect = [4]int32{x, y, width, height}
	d.record("Viewport(%d,%d,%d,%d)", x, y, width, height)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	d.Draws = append(d.Draws, Draw{
		Mode: mode, First: first, Count: count,
		Program: d.CurrentProgram, VAO: d.BoundVAO,
	})
	d.record("DrawArrays(%d,%d)", first, count)
}

func (d *Device) DrawElements(mode gpu.Primitive, count int32, t gpu.ComponentType, offset uintptr) {
	d.Draws = append(d.Draws, Draw{
		Mode: mode, Indexed: true, Count: count, Type: t, Offset: offset,
		Program: d.CurrentProgram, VAO: d.BoundVAO,
	})
	d.record("DrawElements(%d,%s)", count, t)
}

func (d *Device) DrawElementsBaseVertex(mode gpu.Primitive, count int32, t gpu.ComponentType, offset uintptr, baseVertex int32) {
	d.Draws = append(d.Draws, Draw{
		Mode: mode, Indexed: true, Count: count, Type: t, Offset: offset, BaseVertex: baseVertex,
		Program: d.CurrentProgram, VAO: d.BoundVAO,
	})
	d.record("DrawElementsBaseVertex(%d,%s,%d)", count, t, baseVertex)
}

var _ gpu.Device = (*Device)(nil)
