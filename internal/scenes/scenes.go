// Package scenes holds the demo scenes the viewer can run.
package scenes

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltut/internal/engine/geometry"
	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/engine/renderer"
	"github.com/Faultbox/gltut/internal/engine/transform"
)

//go:embed shaders
var embedded embed.FS

// Shaders returns the embedded GLSL sources.
func Shaders() fs.FS {
	sub, err := fs.Sub(embedded, "shaders")
	if err != nil {
		panic(err)
	}
	return sub
}

// Overrides replace a scene's projection parameters when non-zero.
type Overrides struct {
	FOV   float32
	ZNear float32
	ZFar  float32
}

type entry struct {
	name  string
	about string
	build func() (renderer.Scene, error)
}

var registry = []entry{
	{"triangle", "a single white triangle", triangle},
	{"cpu-offset", "triangle moved by rewriting its vertex buffer", cpuOffset},
	{"position-offset", "triangle moved by an offset uniform", positionOffset},
	{"calc-offset", "triangle moved by the vertex shader from a time uniform", calcOffset},
	{"aspect-ratio", "perspective prism corrected for the window aspect", aspectRatio},
	{"depth-buffer", "two intersecting wedges drawn with a base vertex", depthBuffer},
	{"translation", "three cubes on stationary and orbiting paths", translation},
}

// Names lists the available scenes in display order.
func Names() []string {
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.name
	}
	return names
}

// Describe returns a one-line description of a scene.
func Describe(name string) string {
	for _, e := range registry {
		if e.name == name {
			return e.about
		}
	}
	return ""
}

// Lookup builds the named scene with its own defaults.
func Lookup(name string) (renderer.Scene, error) {
	return Build(name, Overrides{})
}

// Build builds the named scene and applies o to its projection. Overrides
// are ignored by scenes without a projection.
func Build(name string, o Overrides) (renderer.Scene, error) {
	for _, e := range registry {
		if e.name != name {
			continue
		}
		s, err := e.build()
		if err != nil {
			return renderer.Scene{}, fmt.Errorf("scene %s: %w", name, err)
		}
		s.Name = name
		s.Shaders = Shaders()
		if !s.Projection.IsZero() {
			if o.FOV != 0 {
				s.Projection.FOV = o.FOV
			}
			if o.ZNear != 0 {
				s.Projection.ZNear = o.ZNear
			}
			if o.ZFar != 0 {
				s.Projection.ZFar = o.ZFar
			}
		}
		return s, nil
	}
	return renderer.Scene{}, fmt.Errorf("unknown scene %q", name)
}

func smallTriangle() geometry.Data {
	return geometry.Data{
		Positions: []float32{
			0.25, 0.25, 0.0, 1.0,
			0.25, -0.25, 0.0, 1.0,
			-0.25, -0.25, 0.0, 1.0,
		},
		PositionDim: 4,
		VertexCount: 3,
	}
}

func circle(radius float32, loop float64) (transform.Policy, error) {
	return transform.NewOrbit(mgl32.Vec3{}, mgl32.Vec2{radius, radius}, loop)
}

func triangle() (renderer.Scene, error) {
	return renderer.Scene{
		ShaderFiles: []string{"passthrough.vert", "white.frag"},
		Geometry: geometry.Data{
			Positions: []float32{
				0.75, 0.75, 0.0, 1.0,
				0.75, -0.75, 0.0, 1.0,
				-0.75, -0.75, 0.0, 1.0,
			},
			PositionDim: 4,
			VertexCount: 3,
		},
		Instances: []renderer.Instance{{Policy: transform.Fixed(mgl32.Vec3{})}},
	}, nil
}

func cpuOffset() (renderer.Scene, error) {
	orbit, err := circle(0.5, 5)
	if err != nil {
		return renderer.Scene{}, err
	}
	data := smallTriangle()
	data.Usage = geometry.Streamed
	return renderer.Scene{
		ShaderFiles:     []string{"passthrough.vert", "white.frag"},
		Geometry:        data,
		StreamPositions: true,
		Instances:       []renderer.Instance{{Policy: orbit}},
	}, nil
}

func positionOffset() (renderer.Scene, error) {
	orbit, err := circle(0.5, 5)
	if err != nil {
		return renderer.Scene{}, err
	}
	uniforms, err := renderer.Uniforms("offset")
	if err != nil {
		return renderer.Scene{}, err
	}
	data := smallTriangle()
	data.Usage = geometry.Streamed
	return renderer.Scene{
		ShaderFiles: []string{"position-offset.vert", "white.frag"},
		Uniforms:    uniforms,
		Geometry:    data,
		Instances:   []renderer.Instance{{Policy: orbit}},
	}, nil
}

func calcOffset() (renderer.Scene, error) {
	uniforms, err := renderer.Uniforms("time", "loopDuration")
	if err != nil {
		return renderer.Scene{}, err
	}
	data := smallTriangle()
	data.Usage = geometry.Streamed
	return renderer.Scene{
		ShaderFiles:  []string{"calc-offset.vert", "white.frag"},
		Uniforms:     uniforms,
		LoopDuration: 5,
		Geometry:     data,
		Instances:    []renderer.Instance{{Policy: transform.Fixed(mgl32.Vec3{})}},
	}, nil
}

func aspectRatio() (renderer.Scene, error) {
	uniforms, err := renderer.Uniforms("offset", "perspectiveMatrix")
	if err != nil {
		return renderer.Scene{}, err
	}
	return renderer.Scene{
		ShaderFiles: []string{"matrix-perspective.vert", "color.frag"},
		Uniforms:    uniforms,
		Geometry: geometry.Data{
			Positions:   append([]float32(nil), prismPositions...),
			PositionDim: 4,
			Colors: colors(
				run{pureBlue, 6}, run{grey, 6}, run{pureGreen, 6},
				run{brown, 6}, run{red, 6}, run{cyan, 6},
			),
			ColorDim:    4,
			VertexCount: 36,
		},
		Projection: renderer.Projection{FrustumScale: 1, ZNear: 0.5, ZFar: 3},
		Raster: renderer.RasterState{
			CullFace:  true,
			Cull:      gpu.Back,
			FrontFace: gpu.Clockwise,
		},
		Instances: []renderer.Instance{
			{Policy: transform.Fixed(mgl32.Vec3{1.5, 0.5, 0})},
		},
	}, nil
}

func depthBuffer() (renderer.Scene, error) {
	uniforms := []renderer.UniformBinding{
		{Name: "offset", Role: renderer.RoleOffset, Components: 3, Required: true},
		{Name: "perspectiveMatrix", Role: renderer.RoleProjection, Required: true},
	}

	// The second wedge is the first turned a quarter turn about z, which
	// keeps the winding the shared index list relies on.
	positions := append([]float32(nil), wedgePositions...)
	for v := 0; v < len(wedgePositions); v += 3 {
		positions = append(positions, wedgePositions[v+1], -wedgePositions[v], wedgePositions[v+2])
	}
	vertexCount := len(positions) / 3

	return renderer.Scene{
		ShaderFiles: []string{"depth-offset.vert", "color.frag"},
		Uniforms:    uniforms,
		Geometry: geometry.Data{
			Positions:   positions,
			PositionDim: 3,
			Colors: colors(
				run{green, 4}, run{blue, 4}, run{red, 3}, run{grey, 3}, run{brown, 4},
				run{red, 4}, run{brown, 4}, run{blue, 3}, run{green, 3}, run{grey, 4},
			),
			ColorDim:    4,
			Indices:     []uint32{0, 2, 1, 3, 2, 0, 4, 5, 6, 6, 7, 4, 8, 9, 10, 11, 13, 12, 14, 16, 15, 17, 16, 14},
			IndexType:   gpu.Uint16,
			VertexCount: vertexCount,
		},
		Projection: renderer.Projection{FrustumScale: 1, ZNear: 1, ZFar: 3},
		Raster:     depthRaster(),
		Instances: []renderer.Instance{
			{Policy: transform.Fixed(mgl32.Vec3{}), Draw: renderer.Draw{Kind: renderer.Indexed}},
			{
				Policy: transform.Fixed(mgl32.Vec3{0, 0, -1}),
				// Integer division: an odd count would leave the extra
				// vertex with the first object.
				Draw: renderer.Draw{Kind: renderer.Indexed, BaseVertex: vertexCount / 2},
			},
		},
	}, nil
}

func translation() (renderer.Scene, error) {
	oval, err := transform.NewOrbit(mgl32.Vec3{0, 0, -20}, mgl32.Vec2{4, 6}, 3)
	if err != nil {
		return renderer.Scene{}, err
	}
	bottom, err := transform.NewGroundOrbit(mgl32.Vec3{0, -3.5, -20}, mgl32.Vec2{4, 5}, 12)
	if err != nil {
		return renderer.Scene{}, err
	}
	uniforms, err := renderer.Uniforms("modelToCameraMatrix", "cameraToClipMatrix")
	if err != nil {
		return renderer.Scene{}, err
	}

	draw := renderer.Draw{Kind: renderer.Indexed}
	return renderer.Scene{
		ShaderFiles: []string{"local-transform.vert", "color.frag"},
		Uniforms:    uniforms,
		Geometry: geometry.Data{
			Positions: []float32{
				+1, +1, +1,
				-1, -1, +1,
				-1, +1, -1,
				+1, -1, -1,
				-1, -1, -1,
				+1, +1, -1,
				+1, -1, +1,
				-1, +1, +1,
			},
			PositionDim: 3,
			Colors: colors(
				run{pureGreen, 1}, run{pureBlue, 1}, run{red, 1}, run{brown, 1},
				run{pureGreen, 1}, run{pureBlue, 1}, run{red, 1}, run{brown, 1},
			),
			ColorDim:    4,
			Indices:     []uint32{0, 1, 2, 1, 0, 3, 2, 3, 0, 3, 2, 1, 5, 4, 6, 4, 5, 7, 7, 6, 4, 6, 7, 5},
			IndexType:   gpu.Uint16,
			VertexCount: 8,
		},
		Projection: renderer.Projection{FOV: 45, ZNear: 1, ZFar: 45},
		Raster:     depthRaster(),
		Instances: []renderer.Instance{
			{Policy: transform.Fixed(mgl32.Vec3{0, 0, -20}), Draw: draw},
			{Policy: oval, Draw: draw},
			{Policy: bottom, Draw: draw},
		},
	}, nil
}

func depthRaster() renderer.RasterState {
	return renderer.RasterState{
		CullFace:   true,
		Cull:       gpu.Back,
		FrontFace:  gpu.Clockwise,
		DepthTest:  true,
		Depth:      gpu.LessEqual,
		DepthWrite: true,
		DepthNear:  0,
		DepthFar:   1,
		ClearDepth: 1,
	}
}
