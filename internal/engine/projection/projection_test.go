package projection

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestBuildKnownValues(t *testing.T) {
	p, err := Build(45, 1, 45, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	checks := []struct {
		name string
		got  float32
		want float32
	}{
		{"frustum scale", p.FrustumScale, 2.4142},
		{"[0][0]", p.M[0][0], 2.4142},
		{"[1][1]", p.M[1][1], 2.4142},
		{"[2][2]", p.M[2][2], -1.0455},
		{"[3][2]", p.M[3][2], -2.0455},
	}
	for _, c := range checks {
		if !near(c.got, c.want, 1e-4) {
			t.Errorf("%s = %f, want %f", c.name, c.got, c.want)
		}
	}
	if p.M[2][3] != -1 {
		t.Errorf("[2][3] = %f, want -1", p.M[2][3])
	}
	if p.M[0][0] != p.M[1][1] {
		t.Errorf("aspect 1 should give equal diagonal terms: %f vs %f", p.M[0][0], p.M[1][1])
	}
}

func TestBuildEntries(t *testing.T) {
	params := []struct {
		fov, zNear, zFar, aspect float32
	}{
		{45, 1, 45, 1},
		{90, 0.5, 3, 4.0 / 3},
		{30, 0.1, 1000, 16.0 / 9},
		{120, 2, 3, 0.25},
		{1, 0.01, 0.02, 7},
	}
	for _, tt := range params {
		p, err := Build(tt.fov, tt.zNear, tt.zFar, tt.aspect)
		if err != nil {
			t.Fatalf("Build(%v): %v", tt, err)
		}
		if p.M[2][3] != -1 {
			t.Errorf("%v: [2][3] = %f, want exactly -1", tt, p.M[2][3])
		}
		if !near(p.M[0][0]*tt.aspect, p.M[1][1], 1e-5*p.M[1][1]) {
			t.Errorf("%v: [0][0]*aspect = %f, [1][1] = %f", tt, p.M[0][0]*tt.aspect, p.M[1][1])
		}
		for row := 0; row < 4; row++ {
			for col := 0; col < 4; col++ {
				switch [2]int{row, col} {
				case [2]int{0, 0}, [2]int{1, 1}, [2]int{2, 2}, [2]int{2, 3}, [2]int{3, 2}:
					continue
				}
				if p.M[row][col] != 0 {
					t.Errorf("%v: [%d][%d] = %f, want 0", tt, row, col, p.M[row][col])
				}
			}
		}
	}
}

func TestBuildMatchesMathGL(t *testing.T) {
	p, err := Build(45, 1, 45, 1.5)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := mgl32.Perspective(mgl32.DegToRad(45), 1.5, 1, 45)
	if got := p.ColumnMajor(); !got.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("column-major upload\n got %v\nwant %v", got, want)
	}

	// A camera-space point on the near plane maps to depth -1.
	clip := mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -1}, p.ColumnMajor())
	if !near(clip[2], -1, 1e-4) {
		t.Errorf("near plane depth = %f, want -1", clip[2])
	}
	clip = mgl32.TransformCoordinate(mgl32.Vec3{0, 0, -45}, p.ColumnMajor())
	if !near(clip[2], 1, 1e-4) {
		t.Errorf("far plane depth = %f, want 1", clip[2])
	}
}

func TestRescale(t *testing.T) {
	p, err := Build(45, 1, 45, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r, err := Rescale(p, 2)
	if err != nil {
		t.Fatalf("Rescale: %v", err)
	}
	if !near(r.M[0][0], p.FrustumScale/2, 1e-6) {
		t.Errorf("[0][0] = %f, want %f", r.M[0][0], p.FrustumScale/2)
	}
	if r.Aspect != 2 {
		t.Errorf("aspect = %f, want 2", r.Aspect)
	}

	r.M[0][0] = p.M[0][0]
	if r.M != p.M {
		t.Error("rescale must only touch the [0][0] term")
	}
	if p.Aspect != 1 {
		t.Error("rescale must not modify its input")
	}
}

func TestRescaleNoDrift(t *testing.T) {
	p, err := Build(60, 0.5, 30, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want, err := Build(60, 0.5, 30, 0.75)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	r := p
	for _, a := range []float32{1.7, 0.3, 2.2, 1.1, 0.75} {
		if r, err = Rescale(r, a); err != nil {
			t.Fatalf("Rescale(%f): %v", a, err)
		}
	}
	if r.M[0][0] != want.M[0][0] {
		t.Errorf("[0][0] after repeated resize = %f, want %f", r.M[0][0], want.M[0][0])
	}
	if r.M != want.M {
		t.Error("repeated resize should equal a fresh build")
	}
}

func TestBuildScaled(t *testing.T) {
	p, err := BuildScaled(1, 0.5, 3, 1)
	if err != nil {
		t.Fatalf("BuildScaled: %v", err)
	}
	if p.M[0][0] != 1 || p.M[1][1] != 1 {
		t.Errorf("diagonal = %f, %f; want 1, 1", p.M[0][0], p.M[1][1])
	}
	if !near(p.M[2][2], -1.4, 1e-6) || !near(p.M[3][2], -1.2, 1e-6) {
		t.Errorf("depth terms = %f, %f; want -1.4, -1.2", p.M[2][2], p.M[3][2])
	}
}

func TestInvalidParameters(t *testing.T) {
	inf := float32(math.Inf(1))
	tests := []struct {
		name                     string
		fov, zNear, zFar, aspect float32
	}{
		{"near equals far", 45, 1, 1, 1},
		{"near beyond far", 45, 5, 1, 1},
		{"zero near", 45, 0, 10, 1},
		{"negative near", 45, -1, 10, 1},
		{"zero aspect", 45, 1, 10, 0},
		{"negative aspect", 45, 1, 10, -1},
		{"infinite far", 45, 1, inf, 1},
		{"zero fov", 0, 1, 10, 1},
		{"straight angle", 180, 1, 10, 1},
		{"nan aspect", 45, 1, 10, float32(math.NaN())},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.fov, tt.zNear, tt.zFar, tt.aspect)
			var ip *InvalidParametersError
			if !errors.As(err, &ip) {
				t.Fatalf("expected *InvalidParametersError, got %v", err)
			}
		})
	}

	p, err := Build(45, 1, 10, 1)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, a := range []float32{0, -2} {
		var ip *InvalidParametersError
		if _, err := Rescale(p, a); !errors.As(err, &ip) {
			t.Errorf("Rescale(%f) = %v, want *InvalidParametersError", a, err)
		}
	}
	if _, err := Rescale(Matrix{}, 1); err == nil {
		t.Error("rescaling a zero matrix should fail")
	}
}

func TestAspect(t *testing.T) {
	if a, err := Aspect(800, 600); err != nil || !near(a, 4.0/3, 1e-6) {
		t.Errorf("Aspect(800, 600) = %f, %v", a, err)
	}
	for _, wh := range [][2]int{{0, 600}, {800, 0}, {-1, 5}} {
		if _, err := Aspect(wh[0], wh[1]); err == nil {
			t.Errorf("Aspect(%d, %d) should fail", wh[0], wh[1])
		}
	}
}
