// Package projection builds perspective camera-to-clip matrices.
package projection

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/logger"
	gmath "github.com/Faultbox/gltut/pkg/math"
)

// InvalidParametersError reports projection parameters that would give a
// degenerate or inverted frustum.
type InvalidParametersError struct {
	Reason string
}

func (e *InvalidParametersError) Error() string {
	return "invalid projection parameters: " + e.Reason
}

func invalidf(format string, args ...any) error {
	return &InvalidParametersError{Reason: fmt.Sprintf(format, args...)}
}

// Matrix is a perspective projection together with the values it was built
// from. Only the aspect term changes after construction.
//
// M is held in the row-vector layout (clip = v * M): the w divisor comes from
// M[2][3] = -1 and the depth offset sits in M[3][2]. Clip returns the
// column-vector form that composes with model transforms.
type Matrix struct {
	M            gmath.Mat4
	FrustumScale float32
	Aspect       float32
	ZNear        float32
	ZFar         float32
}

// FrustumScale converts a vertical field of view in degrees to 1/tan(fov/2).
func FrustumScale(fovDegrees float32) float32 {
	rad := float64(mgl32.DegToRad(fovDegrees))
	return float32(1 / math.Tan(rad/2))
}

// Build returns the projection for fovDegrees in (0, 180).
func Build(fovDegrees, zNear, zFar, aspect float32) (Matrix, error) {
	if !(fovDegrees > 0 && fovDegrees < 180) {
		return Matrix{}, invalidf("field of view %g not in (0, 180)", fovDegrees)
	}
	return BuildScaled(FrustumScale(fovDegrees), zNear, zFar, aspect)
}

// BuildScaled returns the projection for a frustum scale given directly.
func BuildScaled(scale, zNear, zFar, aspect float32) (Matrix, error) {
	if err := check(zNear, zFar, aspect); err != nil {
		return Matrix{}, err
	}
	if !(scale > 0) || math.IsInf(float64(scale), 0) {
		return Matrix{}, invalidf("frustum scale %g must be positive and finite", scale)
	}

	n, f := float64(zNear), float64(zFar)
	var m gmath.Mat4
	m[0][0] = scale / aspect
	m[1][1] = scale
	m[2][2] = float32((f + n) / (n - f))
	m[2][3] = -1
	m[3][2] = float32(2 * f * n / (n - f))

	return Matrix{M: m, FrustumScale: scale, Aspect: aspect, ZNear: zNear, ZFar: zFar}, nil
}

// Rescale returns existing with the [0][0] term recomputed for newAspect
// from the stored frustum scale. Depth terms are left untouched.
func Rescale(existing Matrix, newAspect float32) (Matrix, error) {
	if !(newAspect > 0) || math.IsInf(float64(newAspect), 0) {
		return Matrix{}, invalidf("aspect %g must be positive and finite", newAspect)
	}
	if !(existing.FrustumScale > 0) {
		return Matrix{}, invalidf("matrix has no frustum scale")
	}
	existing.M[0][0] = existing.FrustumScale / newAspect
	existing.Aspect = newAspect

	logger.Debug("projection rescaled",
		zap.Float32("aspect", newAspect),
		zap.Float32("m00", existing.M[0][0]),
	)
	return existing, nil
}

// Aspect returns width/height for a viewport.
func Aspect(width, height int) (float32, error) {
	if width <= 0 || height <= 0 {
		return 0, invalidf("viewport %dx%d must have positive dimensions", width, height)
	}
	return float32(width) / float32(height), nil
}

// clip returns the camera-to-clip matrix in column-vector form, the
// convention of gmath.Mat4.
func (p Matrix) clip() gmath.Mat4 {
	return p.M.Transpose()
}

// ColumnMajor returns the matrix in the order the GPU consumes it for
// `clip = cameraToClip * position`.
func (p Matrix) ColumnMajor() mgl32.Mat4 {
	return p.clip().ColumnMajor()
}

func check(zNear, zFar, aspect float32) error {
	switch {
	case !(zNear > 0):
		return invalidf("near plane %g must be positive", zNear)
	case !(zNear < zFar):
		return invalidf("near plane %g must be closer than far plane %g", zNear, zFar)
	case math.IsInf(float64(zFar), 0):
		return invalidf("far plane must be finite")
	case !(aspect > 0) || math.IsInf(float64(aspect), 0):
		return invalidf("aspect %g must be positive and finite", aspect)
	}
	return nil
}
