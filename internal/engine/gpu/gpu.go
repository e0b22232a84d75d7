// Package gpu defines the narrow slice of OpenGL the pipeline depends on.
//
// Everything above this package talks to a Device rather than to the gl
// bindings directly, so resource lifecycles and draw sequencing can be
// exercised without a live context.
package gpu

// ShaderType identifies a shader stage.
type ShaderType int

const (
	VertexShader ShaderType = iota
	FragmentShader
	GeometryShader
)

func (t ShaderType) String() string {
	switch t {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	case GeometryShader:
		return "geometry"
	default:
		return "unknown"
	}
}

// BufferTarget is the binding point of a buffer object.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Usage is the data store usage hint passed at upload.
type Usage int

const (
	StaticDraw Usage = iota
	StreamDraw
)

func (u Usage) String() string {
	if u == StreamDraw {
		return "stream"
	}
	return "static"
}

// ComponentType is the element type of vertex attribute or index data.
type ComponentType int

const (
	Float32 ComponentType = iota
	Uint16
	Uint32
)

// Size returns the width of one element in bytes.
func (c ComponentType) Size() int {
	switch c {
	case Uint16:
		return 2
	default:
		return 4
	}
}

func (c ComponentType) String() string {
	switch c {
	case Float32:
		return "float32"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	default:
		return "unknown"
	}
}

// Primitive is the assembly mode of a draw call.
type Primitive int

const (
	Triangles Primitive = iota
	TriangleStrip
	Lines
)

// Capability is a server-side toggle passed to Enable.
type Capability int

const (
	CullFace Capability = iota
	DepthTest
)

// Face selects which polygon faces are culled.
type Face int

const (
	Back Face = iota
	Front
)

// Winding is the vertex order that defines a front face.
type Winding int

const (
	CounterClockwise Winding = iota
	Clockwise
)

// DepthFunc is the depth comparison function.
type DepthFunc int

const (
	Less DepthFunc = iota
	LessEqual
	Always
)

// ClearMask selects the buffers cleared at frame start.
type ClearMask int

const (
	ColorBuffer ClearMask = 1 << iota
	DepthBuffer
)

// Device is the GL surface the pipeline is written against. All calls must
// happen on the thread that owns the context.
type Device interface {
	CreateShader(t ShaderType) uint32
	ShaderSource(shader uint32, source string)
	CompileShader(shader uint32)
	ShaderCompiled(shader uint32) bool
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramLinked(program uint32) bool
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	UniformLocation(program uint32, name string) int32

	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	// UniformMatrix4fv uploads a column-major matrix without transposing.
	UniformMatrix4fv(location int32, m *[16]float32)

	GenBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferData(target BufferTarget, data []byte, usage Usage)
	BufferSubData(target BufferTarget, offset int, data []byte)
	DeleteBuffer(buffer uint32)

	GenVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	EnableVertexAttribArray(slot uint32)
	VertexAttribPointer(slot uint32, components int32, t ComponentType, normalized bool, stride int32, offset uintptr)

	Enable(c Capability)
	CullFace(f Face)
	FrontFace(w Winding)
	DepthFunc(f DepthFunc)
	DepthMask(write bool)
	DepthRange(near, far float64)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float64)
	Clear(mask ClearMask)
	Viewport(x, y, width, height int32)

	DrawArrays(mode Primitive, first, count int32)
	DrawElements(mode Primitive, count int32, t ComponentType, offset uintptr)
	DrawElementsBaseVertex(mode Primitive, count int32, t ComponentType, offset uintptr, baseVertex int32)
}
