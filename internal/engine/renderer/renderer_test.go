package renderer

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/gltut/internal/engine/geometry"
	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/engine/gpu/gputest"
	"github.com/Faultbox/gltut/internal/engine/projection"
	"github.com/Faultbox/gltut/internal/engine/shader"
	"github.com/Faultbox/gltut/internal/engine/transform"
)

var shaders = fstest.MapFS{
	"pass.vert":  {Data: []byte("#version 330\nvoid main() {}\n")},
	"color.frag": {Data: []byte("#version 330\nvoid main() {}\n")},
}

func box() geometry.Data {
	return geometry.Data{
		Positions: []float32{
			1, 1, 1, -1, -1, 1, -1, 1, -1, 1, -1, -1,
			-1, -1, -1, 1, 1, -1, 1, -1, 1, -1, 1, 1,
		},
		PositionDim: 3,
		Colors:      make([]float32, 8*4),
		ColorDim:    4,
		Indices:     []uint32{0, 1, 2, 1, 0, 3, 2, 3, 0, 3, 2, 1},
		IndexType:   gpu.Uint16,
		VertexCount: 8,
	}
}

// translationScene has a stationary, an orbiting and a ground-orbiting
// instance under a 45 degree projection.
func translationScene(t *testing.T) Scene {
	t.Helper()
	oval, err := transform.NewOrbit(mgl32.Vec3{0, 0, -20}, mgl32.Vec2{4, 6}, 3)
	if err != nil {
		t.Fatal(err)
	}
	ground, err := transform.NewGroundOrbit(mgl32.Vec3{0, -3.5, -20}, mgl32.Vec2{4, 5}, 12)
	if err != nil {
		t.Fatal(err)
	}
	uniforms, err := Uniforms("modelToCameraMatrix", "cameraToClipMatrix")
	if err != nil {
		t.Fatal(err)
	}
	return Scene{
		Name:        "translation",
		Shaders:     shaders,
		ShaderFiles: []string{"pass.vert", "color.frag"},
		Uniforms:    uniforms,
		Geometry:    box(),
		Projection:  Projection{FOV: 45, ZNear: 1, ZFar: 45},
		Raster: RasterState{
			CullFace:   true,
			Cull:       gpu.Back,
			FrontFace:  gpu.Clockwise,
			DepthTest:  true,
			Depth:      gpu.LessEqual,
			DepthWrite: true,
			DepthFar:   1,
			ClearDepth: 1,
		},
		Instances: []Instance{
			{Policy: transform.Fixed(mgl32.Vec3{0, 0, -20}), Draw: Draw{Kind: Indexed}},
			{Policy: oval, Draw: Draw{Kind: Indexed}},
			{Policy: ground, Draw: Draw{Kind: Indexed}},
		},
	}
}

func mustInit(t *testing.T, dev *gputest.Device, s Scene, w, h int) *RenderState {
	t.Helper()
	rs, err := Init(dev, s, w, h)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return rs
}

func TestInitConfiguresState(t *testing.T) {
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
	rs := mustInit(t, dev, translationScene(t), 500, 500)

	shaders, programs, buffers, vaos := dev.Live()
	if shaders != 0 || programs != 1 || buffers != 2 || vaos != 1 {
		t.Errorf("live objects = %d shaders, %d programs, %d buffers, %d vaos", shaders, programs, buffers, vaos)
	}
	if !dev.Enabled[gpu.CullFace] || dev.Culled != gpu.Back || dev.Front != gpu.Clockwise {
		t.Error("face culling not configured")
	}
	if !dev.Enabled[gpu.DepthTest] || dev.Depth != gpu.LessEqual || !dev.DepthWrite {
		t.Error("depth test not configured")
	}
	if dev.DepthNear != 0 || dev.DepthFar != 1 || dev.ClearDepthVal != 1 {
		t.Errorf("depth range %g..%g, clear %g", dev.DepthNear, dev.DepthFar, dev.ClearDepthVal)
	}
	if dev.ViewportRect != [4]int32{0, 0, 500, 500} {
		t.Errorf("viewport = %v", dev.ViewportRect)
	}
	if dev.CurrentProgram != 0 {
		t.Error("program left bound after init")
	}

	p, ok := rs.Projection()
	if !ok {
		t.Fatal("scene should have a projection")
	}
	want := mgl32.Perspective(mgl32.DegToRad(45), 1, 1, 45)
	got := mgl32.Mat4(dev.Matrices[dev.Location("cameraToClipMatrix")])
	if !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("uploaded projection\n got %v\nwant %v", got, want)
	}
	if math.Abs(float64(p.FrustumScale)-2.4142) > 1e-4 {
		t.Errorf("frustum scale = %f", p.FrustumScale)
	}
}

func TestRenderFrameTranslation(t *testing.T) {
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
	rs := mustInit(t, dev, translationScene(t), 500, 500)

	if err := rs.RenderFrame(3); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	if len(dev.Draws) != 3 {
		t.Fatalf("expected 3 draws, got %d", len(dev.Draws))
	}
	for i, d := range dev.Draws {
		if !d.Indexed || d.Count != 12 || d.Type != gpu.Uint16 || d.BaseVertex != 0 {
			t.Errorf("draw %d: %+v", i, d)
		}
		if d.Program == 0 || d.VAO == 0 {
			t.Errorf("draw %d issued without program or vertex array", i)
		}
	}
	if len(dev.Clears) != 1 || dev.Clears[0] != gpu.ColorBuffer|gpu.DepthBuffer {
		t.Errorf("clears = %v", dev.Clears)
	}

	// The last upload is the ground orbit at a quarter loop: (0, -3.5, -15),
	// stored in the translation slots of a column-major matrix.
	m := dev.Matrices[dev.Location("modelToCameraMatrix")]
	if math.Abs(float64(m[12])) > 1e-5 || m[13] != -3.5 || math.Abs(float64(m[14]+15)) > 1e-5 || m[15] != 1 {
		t.Errorf("model matrix translation = %v", m[12:])
	}
	if m[3] != 0 || m[7] != 0 || m[11] != 0 {
		t.Errorf("matrix uploaded untransposed: %v", m)
	}

	uploads := 0
	for _, c := range dev.Calls {
		if c == "UniformMatrix4fv(0)" {
			uploads++
		}
	}
	if uploads != 3 {
		t.Errorf("model matrix uploaded %d times, want 3", uploads)
	}
	if dev.CurrentProgram != 0 || dev.BoundVAO != 0 {
		t.Error("program or vertex array left bound after the frame")
	}
	if rs.Frames() != 1 {
		t.Errorf("frames = %d", rs.Frames())
	}
}

func TestResizeBeforeFirstFrame(t *testing.T) {
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
	rs := mustInit(t, dev, translationScene(t), 500, 500)

	if err := rs.Resize(1000, 500); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	p, _ := rs.Projection()
	if p.Aspect != 2 || p.M[0][0] != p.FrustumScale/2 {
		t.Errorf("projection after resize: aspect %f, [0][0] %f", p.Aspect, p.M[0][0])
	}
	uploaded := dev.Matrices[dev.Location("cameraToClipMatrix")]
	if uploaded[0] != p.M[0][0] {
		t.Errorf("uploaded [0][0] = %f, want %f", uploaded[0], p.M[0][0])
	}
	if dev.ViewportRect != [4]int32{0, 0, 1000, 500} {
		t.Errorf("viewport = %v", dev.ViewportRect)
	}
	if err := rs.RenderFrame(0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	var ip *projection.InvalidParametersError
	if err := rs.Resize(0, 500); !errors.As(err, &ip) {
		t.Errorf("Resize(0, 500) = %v, want *InvalidParametersError", err)
	}
	if dev.ViewportRect != [4]int32{0, 0, 1000, 500} {
		t.Error("failed resize changed the viewport")
	}
}

func TestDepthSceneBaseVertex(t *testing.T) {
	data := box()
	data.Positions = append(data.Positions, data.Positions...)
	data.Colors = append(data.Colors, data.Colors...)
	data.VertexCount = 16

	scene := Scene{
		Name:        "depth",
		Shaders:     shaders,
		ShaderFiles: []string{"pass.vert", "color.frag"},
		Uniforms: []UniformBinding{
			{Name: "offset", Role: RoleOffset, Components: 3, Required: true},
			{Name: "perspectiveMatrix", Role: RoleProjection, Required: true},
		},
		Geometry:   data,
		Projection: Projection{FrustumScale: 1, ZNear: 1, ZFar: 3},
		Raster:     RasterState{DepthTest: true, Depth: gpu.LessEqual, DepthWrite: true, DepthFar: 1, ClearDepth: 1},
		Instances: []Instance{
			{Policy: transform.Fixed(mgl32.Vec3{}), Draw: Draw{Kind: Indexed}},
			{Policy: transform.Fixed(mgl32.Vec3{0, 0, -1}), Draw: Draw{Kind: Indexed, BaseVertex: data.VertexCount / 2}},
		},
	}
	dev := gputest.New("offset", "perspectiveMatrix")
	rs := mustInit(t, dev, scene, 640, 480)

	if err := rs.RenderFrame(1.5); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if len(dev.Draws) != 2 {
		t.Fatalf("expected 2 draws, got %d", len(dev.Draws))
	}
	if dev.Draws[0].BaseVertex != 0 || dev.Draws[1].BaseVertex != 8 {
		t.Errorf("base vertices = %d, %d; want 0, 8", dev.Draws[0].BaseVertex, dev.Draws[1].BaseVertex)
	}
	got := dev.Floats[dev.Location("offset")]
	if len(got) != 3 || got[0] != 0 || got[1] != 0 || got[2] != -1 {
		t.Errorf("last offset = %v, want [0 0 -1]", got)
	}
}

func TestTimeUniforms(t *testing.T) {
	uniforms, err := Uniforms("time", "loopDuration")
	if err != nil {
		t.Fatal(err)
	}
	scene := Scene{
		Name:         "calc-offset",
		Shaders:      shaders,
		ShaderFiles:  []string{"pass.vert", "color.frag"},
		Uniforms:     uniforms,
		LoopDuration: 5,
		Geometry: geometry.Data{
			Positions:   []float32{0.25, 0.25, 0, 1, 0.25, -0.25, 0, 1, -0.25, -0.25, 0, 1},
			PositionDim: 4,
			VertexCount: 3,
		},
		Instances: []Instance{{Policy: transform.Fixed(mgl32.Vec3{})}},
	}
	dev := gputest.New("time", "loopDuration")
	rs := mustInit(t, dev, scene, 500, 500)

	if got := dev.Floats[dev.Location("loopDuration")]; len(got) != 1 || got[0] != 5 {
		t.Errorf("loopDuration = %v, want [5]", got)
	}
	for _, elapsed := range []float64{0.5, 2.5} {
		if err := rs.RenderFrame(elapsed); err != nil {
			t.Fatalf("RenderFrame: %v", err)
		}
		if got := dev.Floats[dev.Location("time")]; len(got) != 1 || got[0] != float32(elapsed) {
			t.Errorf("time = %v, want [%g]", got, elapsed)
		}
	}
	if d := dev.Draws[0]; d.Indexed || d.First != 0 || d.Count != 3 {
		t.Errorf("draw = %+v", d)
	}
	if len(dev.Clears) != 2 || dev.Clears[0] != gpu.ColorBuffer {
		t.Errorf("clears = %v, want color only", dev.Clears)
	}
}

func TestStreamedPositions(t *testing.T) {
	orbit, err := transform.NewOrbit(mgl32.Vec3{}, mgl32.Vec2{0.5, 0.5}, 5)
	if err != nil {
		t.Fatal(err)
	}
	positions := []float32{0.25, 0.25, 0, 1, 0.25, -0.25, 0, 1, -0.25, -0.25, 0, 1}
	scene := Scene{
		Name:        "position-offset",
		Shaders:     shaders,
		ShaderFiles: []string{"pass.vert", "color.frag"},
		Geometry: geometry.Data{
			Positions:   positions,
			PositionDim: 4,
			VertexCount: 3,
			Usage:       geometry.Streamed,
		},
		StreamPositions: true,
		Instances:       []Instance{{Policy: orbit}},
	}
	dev := gputest.New()
	rs := mustInit(t, dev, scene, 500, 500)

	readFloat := func(i int) float32 {
		for _, data := range dev.Buffers {
			return math.Float32frombits(binary.NativeEndian.Uint32(data[i*4:]))
		}
		return 0
	}

	if err := rs.RenderFrame(0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if x, w := readFloat(0), readFloat(3); x != 0.75 || w != 1 {
		t.Errorf("first vertex x = %f, w = %f; want 0.75, 1", x, w)
	}

	if err := rs.RenderFrame(1.25); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	if y := readFloat(1); math.Abs(float64(y)-0.75) > 1e-6 {
		t.Errorf("first vertex y at a quarter loop = %f, want 0.75", y)
	}
	if positions[0] != 0.25 {
		t.Error("scene positions were modified in place")
	}
}

func TestInitFailures(t *testing.T) {
	tests := []struct {
		name   string
		stage  string
		setup  func(*gputest.Device, *Scene)
		target any
	}{
		{"vertex compile", "compile", func(d *gputest.Device, s *Scene) {
			d.CompileErrors[gpu.VertexShader] = "0:1: syntax error"
		}, new(*shader.CompileError)},
		{"fragment compile", "compile", func(d *gputest.Device, s *Scene) {
			d.CompileErrors[gpu.FragmentShader] = "0:1: syntax error"
		}, new(*shader.CompileError)},
		{"link", "link", func(d *gputest.Device, s *Scene) {
			d.LinkError = "varying mismatch"
		}, new(*shader.LinkError)},
		{"missing uniform", "uniforms", func(d *gputest.Device, s *Scene) {
			delete(d.Uniforms, "cameraToClipMatrix")
		}, new(*shader.UniformNotFoundError)},
		{"bad projection", "projection", func(d *gputest.Device, s *Scene) {
			s.Projection.ZNear = 50
		}, new(*projection.InvalidParametersError)},
		{"bad geometry", "geometry", func(d *gputest.Device, s *Scene) {
			s.Geometry.Positions = s.Geometry.Positions[:23]
		}, new(*geometry.LayoutError)},
		{"bad layout", "layout", func(d *gputest.Device, s *Scene) {
			s.Layout = func(b *geometry.Buffer) []geometry.VertexAttribute {
				return []geometry.VertexAttribute{{Slot: 0, Components: 4, Type: gpu.Float32, Offset: 200}}
			}
		}, new(*geometry.LayoutError)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
			scene := translationScene(t)
			tt.setup(dev, &scene)

			rs, err := Init(dev, scene, 500, 500)
			if rs != nil {
				t.Error("no state may be returned on failure")
			}
			var ie *InitError
			if !errors.As(err, &ie) {
				t.Fatalf("expected *InitError, got %v", err)
			}
			if ie.Stage != tt.stage {
				t.Errorf("stage = %q, want %q", ie.Stage, tt.stage)
			}
			if !errors.As(err, tt.target) {
				t.Errorf("cause %v is not %T", ie.Err, tt.target)
			}
			shaders, programs, buffers, vaos := dev.Live()
			if shaders+programs+buffers+vaos != 0 {
				t.Errorf("leaked %d shaders, %d programs, %d buffers, %d vaos", shaders, programs, buffers, vaos)
			}
			if len(dev.Draws) != 0 || len(dev.Matrices) != 0 {
				t.Error("nothing may be drawn or uploaded after a failed init")
			}
		})
	}
}

func TestInitZeroViewport(t *testing.T) {
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
	_, err := Init(dev, translationScene(t), 0, 0)
	var ip *projection.InvalidParametersError
	if !errors.As(err, &ip) {
		t.Fatalf("expected *InvalidParametersError, got %v", err)
	}
}

func TestOptionalUniformMissing(t *testing.T) {
	scene := translationScene(t)
	scene.Uniforms = append(scene.Uniforms, UniformBinding{Name: "time", Role: RoleTime})
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")

	rs := mustInit(t, dev, scene, 500, 500)
	if err := rs.RenderFrame(1); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}
	for _, c := range dev.Calls {
		if strings.HasPrefix(c, "Uniform1f") {
			t.Errorf("skipped uniform was still written: %s", c)
		}
	}
}

func TestShutdown(t *testing.T) {
	dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
	rs := mustInit(t, dev, translationScene(t), 500, 500)
	if err := rs.RenderFrame(0); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	rs.Shutdown()
	rs.Shutdown()

	shaders, programs, buffers, vaos := dev.Live()
	if shaders+programs+buffers+vaos != 0 {
		t.Errorf("leaked %d shaders, %d programs, %d buffers, %d vaos", shaders, programs, buffers, vaos)
	}

	order := map[string]int{}
	for i, c := range dev.Calls {
		for _, prefix := range []string{"DeleteVertexArray", "DeleteBuffer", "DeleteProgram"} {
			if strings.HasPrefix(c, prefix) {
				order[prefix] = i
			}
		}
	}
	if !(order["DeleteVertexArray"] < order["DeleteBuffer"] && order["DeleteBuffer"] < order["DeleteProgram"]) {
		t.Errorf("release order = %v, want vertex array, buffers, program", order)
	}

	if err := rs.RenderFrame(1); !errors.Is(err, ErrShutdown) {
		t.Errorf("RenderFrame after Shutdown = %v", err)
	}
	if err := rs.Resize(10, 10); !errors.Is(err, ErrShutdown) {
		t.Errorf("Resize after Shutdown = %v", err)
	}
}

func TestUniformBindings(t *testing.T) {
	b, err := Uniforms("time", "offset", "perspectiveMatrix")
	if err != nil {
		t.Fatalf("Uniforms: %v", err)
	}
	if b[1].Role != RoleOffset || b[1].Components != 2 || !b[1].Required {
		t.Errorf("offset binding = %+v", b[1])
	}
	if _, err := Uniforms("perspectiveMatirx"); err == nil {
		t.Error("unknown name should fail")
	}

	tests := []struct {
		name     string
		bindings []UniformBinding
		ok       bool
	}{
		{"valid", b, true},
		{"duplicate name", []UniformBinding{{Name: "t", Role: RoleTime}, {Name: "t", Role: RoleLoopDuration}}, false},
		{"duplicate role", []UniformBinding{{Name: "a", Role: RoleTime}, {Name: "b", Role: RoleTime}}, false},
		{"unknown role", []UniformBinding{{Name: "a", Role: Role(42)}}, false},
		{"no name", []UniformBinding{{Role: RoleTime}}, false},
		{"vec4 offset", []UniformBinding{{Name: "offset", Role: RoleOffset, Components: 4}}, false},
	}
	for _, tt := range tests {
		if err := checkBindings(tt.bindings); (err == nil) != tt.ok {
			t.Errorf("%s: checkBindings = %v, want ok=%t", tt.name, err, tt.ok)
		}
	}
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
	}{
		{"no instances", func(s *Scene) { s.Instances = nil }},
		{"no shaders", func(s *Scene) { s.ShaderFiles = nil }},
		{"projection uniform without projection", func(s *Scene) { s.Projection = Projection{} }},
		{"indexed without indices", func(s *Scene) { s.Geometry.Indices = nil }},
		{"invalid policy", func(s *Scene) { s.Instances[1].Policy.Loop = 0 }},
		{"streaming a static buffer", func(s *Scene) { s.StreamPositions = true }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := translationScene(t)
			tt.mutate(&s)
			if err := s.Validate(); err == nil {
				t.Error("expected validation error")
			}

			dev := gputest.New("modelToCameraMatrix", "cameraToClipMatrix")
			_, err := Init(dev, s, 500, 500)
			var ie *InitError
			if !errors.As(err, &ie) || ie.Stage != "scene" {
				t.Errorf("Init error = %v, want scene stage", err)
			}
			if len(dev.Calls) != 0 {
				t.Errorf("GPU touched before validation: %v", dev.Calls)
			}
		})
	}
}
