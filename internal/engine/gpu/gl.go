package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/logger"
)

// GL is the go-gl backed Device.
type GL struct{}

// NewGL loads the GL function pointers and logs driver information.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	logger.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.String("glsl", gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))),
	)
	return &GL{}, nil
}

func (GL) CreateShader(t ShaderType) uint32 {
	switch t {
	case FragmentShader:
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	case GeometryShader:
		return gl.CreateShader(gl.GEOMETRY_SHADER)
	default:
		return gl.CreateShader(gl.VERTEX_SHADER)
	}
}

func (GL) ShaderSource(shader uint32, source string) {
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
}

func (GL) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (GL) ShaderCompiled(shader uint32) bool {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status != gl.FALSE
}

func (GL) ShaderInfoLog(shader uint32) string {
	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (GL) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (GL) CreateProgram() uint32 { return gl.CreateProgram() }

func (GL) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (GL) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (GL) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (GL) ProgramLinked(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status != gl.FALSE
}

func (GL) ProgramInfoLog(program uint32) string {
	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(logLen+1))
	gl.GetProgramInfoLog(program, logLen, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (GL) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (GL) UseProgram(program uint32) { gl.UseProgram(program) }

func (GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (GL) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }

func (GL) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }

func (GL) Uniform3f(location int32, x, y, z float32) { gl.Uniform3f(location, x, y, z) }

func (GL) UniformMatrix4fv(location int32, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (GL) GenBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (GL) BindBuffer(target BufferTarget, buffer uint32) {
	gl.BindBuffer(glTarget(target), buffer)
}

func (GL) BufferData(target BufferTarget, data []byte, usage Usage) {
	gl.BufferData(glTarget(target), len(data), gl.Ptr(data), glUsage(usage))
}

func (GL) BufferSubData(target BufferTarget, offset int, data []byte) {
	gl.BufferSubData(glTarget(target), offset, len(data), gl.Ptr(data))
}

func (GL) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (GL) GenVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (GL) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (GL) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }

func (GL) EnableVertexAttribArray(slot uint32) { gl.EnableVertexAttribArray(slot) }

func (GL) VertexAttribPointer(slot uint32, components int32, t ComponentType, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(slot, components, glType(t), normalized, stride, offset)
}

func (GL) Enable(c Capability) {
	switch c {
	case CullFace:
		gl.Enable(gl.CULL_FACE)
	case DepthTest:
		gl.Enable(gl.DEPTH_TEST)
	}
}

func (GL) CullFace(f Face) {
	if f == Front {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (GL) FrontFace(w Winding) {
	if w == Clockwise {
		gl.FrontFace(gl.CW)
		return
	}
	gl.FrontFace(gl.CCW)
}

func (GL) DepthFunc(f DepthFunc) {
	switch f {
	case LessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case Always:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (GL) DepthMask(write bool) { gl.DepthMask(write) }

func (GL) DepthRange(near, far float64) { gl.DepthRange(near, far) }

func (GL) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }

func (GL) ClearDepth(d float64) { gl.ClearDepth(d) }

func (GL) Clear(mask ClearMask) {
	var bits uint32
	if mask&ColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&DepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (GL) Viewport(x, y, width, height int32) { gl.Viewport(x, y, width, height) }

func (GL) DrawArrays(mode Primitive, first, count int32) {
	gl.DrawArrays(glMode(mode), first, count)
}

func (GL) DrawElements(mode Primitive, count int32, t ComponentType, offset uintptr) {
	gl.DrawElementsWithOffset(glMode(mode), count, glType(t), offset)
}

func (GL) DrawElementsBaseVertex(mode Primitive, count int32, t ComponentType, offset uintptr, baseVertex int32) {
	gl.DrawElementsBaseVertex(glMode(mode), count, glType(t), gl.PtrOffset(int(offset)), baseVertex)
}

func glTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glUsage(u Usage) uint32 {
	if u == StreamDraw {
		return gl.STREAM_DRAW
	}
	return gl.STATIC_DRAW
}

func glType(t ComponentType) uint32 {
	switch t {
	case Uint16:
		return gl.UNSIGNED_SHORT
	case Uint32:
		return gl.UNSIGNED_INT
	default:
		return gl.FLOAT
	}
}

func glMode(p Primitive) uint32 {
	switch p {
	case TriangleStrip:
		return gl.TRIANGLE_STRIP
	case Lines:
		return gl.LINES
	default:
		return gl.TRIANGLES
	}
}
