// Package renderer owns the program, geometry and projection of a scene and
// draws it once per frame.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/geometry"
	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/engine/projection"
	"github.com/Faultbox/gltut/internal/engine/shader"
	"github.com/Faultbox/gltut/internal/engine/transform"
	"github.com/Faultbox/gltut/internal/logger"
	"github.com/Faultbox/gltut/pkg/math"
)

// ErrShutdown is returned by calls on a RenderState after Shutdown.
var ErrShutdown = errors.New("renderer: shut down")

// InitError reports the init step that failed. Err carries the typed cause
// (*shader.CompileError, *geometry.LayoutError, ...).
type InitError struct {
	Stage string
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("renderer init: %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// RenderState is the single owner of a scene's GPU resources.
type RenderState struct {
	dev   gpu.Device
	log   *zap.Logger
	scene Scene

	program  *shader.Program
	buffer   *geometry.Buffer
	bindings map[Role]UniformBinding
	locs     map[Role]int32

	projection    projection.Matrix
	hasProjection bool

	// positions is scratch space for streamed instances.
	positions []float32

	width, height int
	frames        uint64
	shutdown      bool
}

// Init compiles and links the scene's program, uploads its geometry,
// configures raster state and the projection for a width x height viewport.
// On failure everything acquired so far is released.
func Init(dev gpu.Device, scene Scene, width, height int) (*RenderState, error) {
	rs := &RenderState{
		dev:      dev,
		log:      logger.Named("renderer"),
		scene:    scene,
		bindings: make(map[Role]UniformBinding),
		locs:     make(map[Role]int32),
		width:    width,
		height:   height,
	}
	if err := rs.init(); err != nil {
		rs.release()
		rs.shutdown = true
		rs.log.Error("init failed", zap.String("scene", scene.Name), zap.Error(err))
		return nil, err
	}

	rs.log.Info("scene initialized",
		zap.String("scene", scene.Name),
		zap.Int("vertices", rs.buffer.VertexCount()),
		zap.Int("indices", rs.buffer.IndexCount()),
		zap.Int("instances", len(scene.Instances)),
		zap.Int("width", width),
		zap.Int("height", height),
	)
	return rs, nil
}

func (rs *RenderState) init() error {
	s := &rs.scene
	if err := s.Validate(); err != nil {
		return &InitError{Stage: "scene", Err: err}
	}

	stages := make([]*shader.Stage, 0, len(s.ShaderFiles))
	for _, name := range s.ShaderFiles {
		st, err := shader.Load(rs.dev, s.Shaders, name)
		if err != nil {
			shader.DeleteStages(rs.dev, stages)
			return &InitError{Stage: "compile", Err: err}
		}
		stages = append(stages, st)
	}

	prog, err := shader.Link(rs.dev, stages)
	if err != nil {
		return &InitError{Stage: "link", Err: err}
	}
	rs.program = prog

	if err := rs.resolveUniforms(); err != nil {
		return &InitError{Stage: "uniforms", Err: err}
	}

	// The projection is validated before anything is uploaded.
	if !s.Projection.IsZero() {
		if err := rs.buildProjection(); err != nil {
			return &InitError{Stage: "projection", Err: err}
		}
	}

	buf, err := geometry.Upload(rs.dev, s.Geometry)
	if err != nil {
		return &InitError{Stage: "geometry", Err: err}
	}
	rs.buffer = buf

	layout := buf.DefaultLayout()
	if s.Layout != nil {
		layout = s.Layout(buf)
	}
	if err := buf.BindAttributes(layout); err != nil {
		return &InitError{Stage: "layout", Err: err}
	}
	if s.StreamPositions {
		rs.positions = make([]float32, len(s.Geometry.Positions))
	}

	rs.configureRaster()

	if err := rs.program.Use(); err != nil {
		return &InitError{Stage: "uniforms", Err: err}
	}
	if loc, ok := rs.locs[RoleLoopDuration]; ok {
		rs.dev.Uniform1f(loc, s.LoopDuration)
	}
	rs.uploadProjection()
	rs.program.Unuse()

	rs.dev.Viewport(0, 0, int32(rs.width), int32(rs.height))
	return nil
}

func (rs *RenderState) resolveUniforms() error {
	for _, b := range rs.scene.Uniforms {
		err := rs.program.Resolve(b.Name)
		var nf *shader.UniformNotFoundError
		switch {
		case err == nil:
		case errors.As(err, &nf) && !b.Required:
			rs.log.Warn("optional uniform not found",
				zap.String("uniform", b.Name),
				zap.Stringer("role", b.Role),
			)
			continue
		default:
			return err
		}
		loc, _ := rs.program.Uniform(b.Name)
		rs.bindings[b.Role] = b
		rs.locs[b.Role] = loc
	}
	return nil
}

func (rs *RenderState) buildProjection() error {
	aspect, err := projection.Aspect(rs.width, rs.height)
	if err != nil {
		return err
	}
	p := rs.scene.Projection
	var m projection.Matrix
	if p.FOV != 0 {
		m, err = projection.Build(p.FOV, p.ZNear, p.ZFar, aspect)
	} else {
		m, err = projection.BuildScaled(p.FrustumScale, p.ZNear, p.ZFar, aspect)
	}
	if err != nil {
		return err
	}
	rs.projection = m
	rs.hasProjection = true
	return nil
}

func (rs *RenderState) configureRaster() {
	r := rs.scene.Raster
	rs.dev.ClearColor(r.ClearColor[0], r.ClearColor[1], r.ClearColor[2], r.ClearColor[3])
	if r.CullFace {
		rs.dev.Enable(gpu.CullFace)
		rs.dev.CullFace(r.Cull)
		rs.dev.FrontFace(r.FrontFace)
	}
	if r.DepthTest {
		rs.dev.Enable(gpu.DepthTest)
		rs.dev.DepthMask(r.DepthWrite)
		rs.dev.DepthFunc(r.Depth)
		rs.dev.DepthRange(r.DepthNear, r.DepthFar)
		rs.dev.ClearDepth(r.ClearDepth)
	}
}

// uploadProjection pushes the projection; the program must be in use.
func (rs *RenderState) uploadProjection() {
	loc, ok := rs.locs[RoleProjection]
	if !ok || !rs.hasProjection {
		return
	}
	m := rs.projection.ColumnMajor()
	rs.dev.UniformMatrix4fv(loc, (*[16]float32)(&m))
}

// RenderFrame draws every instance at elapsed seconds since start.
func (rs *RenderState) RenderFrame(elapsed float64) error {
	if rs.shutdown {
		return ErrShutdown
	}

	mask := gpu.ColorBuffer
	if rs.scene.Raster.DepthTest {
		mask |= gpu.DepthBuffer
	}
	rs.dev.Clear(mask)

	if err := rs.program.Use(); err != nil {
		return err
	}
	defer rs.program.Unuse()
	if err := rs.buffer.Bind(); err != nil {
		return err
	}
	defer rs.buffer.Unbind()

	if loc, ok := rs.locs[RoleTime]; ok {
		rs.dev.Uniform1f(loc, float32(elapsed))
	}

	for i, inst := range rs.scene.Instances {
		if err := rs.place(inst.Policy, elapsed); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		if err := rs.draw(inst.Draw); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
	}
	rs.frames++
	return nil
}

// place pushes the instance transform through the first available channel:
// the model-to-camera matrix, the offset vector, or the streamed positions.
func (rs *RenderState) place(p transform.Policy, elapsed float64) error {
	if loc, ok := rs.locs[RoleModelToCamera]; ok {
		m, err := transform.Compose(p, elapsed)
		if err != nil {
			return err
		}
		upload(rs.dev, loc, m)
		return nil
	}

	if loc, ok := rs.locs[RoleOffset]; ok {
		o, err := transform.Offset(p, elapsed)
		if err != nil {
			return err
		}
		if rs.bindings[RoleOffset].Components == 3 {
			rs.dev.Uniform3f(loc, o[0], o[1], o[2])
		} else {
			rs.dev.Uniform2f(loc, o[0], o[1])
		}
		return nil
	}

	if rs.positions != nil {
		o, err := transform.Offset(p, elapsed)
		if err != nil {
			return err
		}
		return rs.shiftPositions(o)
	}
	return nil
}

// shiftPositions rewrites the streamed position block as the uploaded
// positions moved by o. Homogeneous w is left alone.
func (rs *RenderState) shiftPositions(o [3]float32) error {
	dim := rs.scene.Geometry.PositionDim
	n := min(dim, 3)
	copy(rs.positions, rs.scene.Geometry.Positions)
	for v := 0; v < len(rs.positions); v += dim {
		for c := 0; c < n; c++ {
			rs.positions[v+c] += o[c]
		}
	}
	return rs.buffer.UpdatePositions(rs.positions)
}

func (rs *RenderState) draw(d Draw) error {
	if d.Kind == Indexed {
		return rs.buffer.DrawIndexed(d.BaseVertex)
	}
	count := d.Count
	if count == 0 {
		count = rs.buffer.VertexCount() - d.First
	}
	return rs.buffer.DrawArrays(d.First, count)
}

func upload(dev gpu.Device, loc int32, m math.Mat4) {
	c := m.ColumnMajor()
	dev.UniformMatrix4fv(loc, (*[16]float32)(&c))
}

// Resize sets the viewport and rescales the projection to the new aspect.
// It may be called before the first frame.
func (rs *RenderState) Resize(width, height int) error {
	if rs.shutdown {
		return ErrShutdown
	}
	if rs.hasProjection {
		aspect, err := projection.Aspect(width, height)
		if err != nil {
			return err
		}
		m, err := projection.Rescale(rs.projection, aspect)
		if err != nil {
			return err
		}
		rs.projection = m
		if err := rs.program.Use(); err != nil {
			return err
		}
		rs.uploadProjection()
		rs.program.Unuse()
	} else if width <= 0 || height <= 0 {
		return fmt.Errorf("renderer: invalid viewport %dx%d", width, height)
	}

	rs.width, rs.height = width, height
	rs.dev.Viewport(0, 0, int32(width), int32(height))
	rs.log.Debug("resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Projection returns the current projection and whether the scene has one.
func (rs *RenderState) Projection() (projection.Matrix, bool) {
	return rs.projection, rs.hasProjection
}

// Frames returns the number of frames drawn.
func (rs *RenderState) Frames() uint64 {
	return rs.frames
}

// Scene returns the scene name.
func (rs *RenderState) Scene() string {
	return rs.scene.Name
}

// Shutdown releases geometry then the program. Later calls are no-ops.
func (rs *RenderState) Shutdown() {
	if rs.shutdown {
		return
	}
	rs.release()
	rs.shutdown = true
	rs.log.Info("renderer shut down",
		zap.String("scene", rs.scene.Name),
		zap.Uint64("frames", rs.frames),
	)
}

func (rs *RenderState) release() {
	if rs.buffer != nil {
		rs.buffer.Delete()
	}
	if rs.program != nil {
		rs.program.Delete()
	}
}
