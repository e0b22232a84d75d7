package renderer

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/Faultbox/gltut/internal/engine/geometry"
	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/engine/transform"
)

// Scene is everything Init needs to build a RenderState.
type Scene struct {
	Name string

	// Shaders holds the stage sources named by ShaderFiles.
	Shaders     fs.FS
	ShaderFiles []string
	Uniforms    []UniformBinding

	Geometry geometry.Data
	// Layout picks the attribute layout; nil binds the buffer's default.
	Layout func(*geometry.Buffer) []geometry.VertexAttribute

	Projection Projection
	Raster     RasterState

	// LoopDuration is pushed once to the RoleLoopDuration uniform.
	LoopDuration float32

	// StreamPositions moves instances by rewriting the position block of a
	// Streamed buffer when no offset or model uniform is bound.
	StreamPositions bool

	Instances []Instance
}

// Projection selects how the camera-to-clip matrix is built. FOV takes
// precedence over FrustumScale. The zero value means no projection.
type Projection struct {
	FOV          float32
	FrustumScale float32
	ZNear        float32
	ZFar         float32
}

// IsZero reports whether no projection is configured.
func (p Projection) IsZero() bool {
	return p == Projection{}
}

// RasterState is configured once at init and never changed afterwards.
type RasterState struct {
	ClearColor [4]float32

	CullFace  bool
	Cull      gpu.Face
	FrontFace gpu.Winding

	DepthTest  bool
	Depth      gpu.DepthFunc
	DepthWrite bool
	DepthNear  float64
	DepthFar   float64
	ClearDepth float64
}

// DrawKind selects the draw call an instance issues.
type DrawKind int

const (
	// Arrays draws Count vertices from First.
	Arrays DrawKind = iota
	// Indexed draws the whole index buffer shifted by BaseVertex.
	Indexed
)

// Draw is one draw call.
type Draw struct {
	Kind  DrawKind
	First int
	// Count of zero draws every vertex.
	Count      int
	BaseVertex int
}

// Instance is one placement of the scene's geometry per frame.
type Instance struct {
	Policy transform.Policy
	Draw   Draw
}

// Validate checks the scene before any GPU object is created.
func (s *Scene) Validate() error {
	if s.Shaders == nil || len(s.ShaderFiles) == 0 {
		return errors.New("scene has no shader stages")
	}
	if len(s.Instances) == 0 {
		return errors.New("scene has no instances")
	}
	if err := checkBindings(s.Uniforms); err != nil {
		return err
	}
	for _, b := range s.Uniforms {
		if b.Role == RoleProjection && s.Projection.IsZero() {
			return fmt.Errorf("uniform %q needs a projection", b.Name)
		}
	}
	if s.StreamPositions && s.Geometry.Usage != geometry.Streamed {
		return errors.New("streamed positions need a streamed buffer")
	}
	for i, inst := range s.Instances {
		if err := inst.Policy.Validate(); err != nil {
			return fmt.Errorf("instance %d: %w", i, err)
		}
		if inst.Draw.Kind == Indexed && len(s.Geometry.Indices) == 0 {
			return fmt.Errorf("instance %d: indexed draw without indices", i)
		}
	}
	return nil
}
