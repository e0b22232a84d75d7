// Package transform computes per-instance model transforms from elapsed time.
//
// Every policy is a pure function of absolute time modulo its loop, so seeking
// or restarting the clock reproduces the same frame.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	gmath "github.com/Faultbox/gltut/pkg/math"
)

// Kind selects an animation policy.
type Kind int

const (
	// Stationary holds the instance at Center.
	Stationary Kind = iota
	// Orbit moves on an ellipse in the XY plane around Center.
	Orbit
	// GroundOrbit moves on an ellipse in the XZ plane around Center.
	GroundOrbit
)

func (k Kind) String() string {
	switch k {
	case Stationary:
		return "stationary"
	case Orbit:
		return "orbit"
	case GroundOrbit:
		return "ground-orbit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrUnknownKind  = errors.New("unknown transform policy")
	ErrInvalidLoop  = errors.New("loop duration must be positive")
	ErrInvalidTime  = errors.New("elapsed time must be finite and non-negative")
	ErrInvalidShape = errors.New("policy parameters must be finite")
)

// Policy describes how one instance moves.
type Policy struct {
	Kind Kind
	// Center is the fixed offset every kind adds to its motion.
	Center mgl32.Vec3
	// Radius holds the two ellipse radii of the orbit plane: (x, y) for
	// Orbit, (x, z) for GroundOrbit.
	Radius mgl32.Vec2
	// Loop is the period in seconds.
	Loop float64
	// SpinAxis and SpinTurns add a rotation of SpinTurns full turns per loop.
	SpinAxis  mgl32.Vec3
	SpinTurns int
}

// Fixed returns a Stationary policy at center.
func Fixed(center mgl32.Vec3) Policy {
	return Policy{Kind: Stationary, Center: center}
}

// NewOrbit returns an Orbit policy around center.
func NewOrbit(center mgl32.Vec3, radius mgl32.Vec2, loop float64) (Policy, error) {
	p := Policy{Kind: Orbit, Center: center, Radius: radius, Loop: loop}
	return p, p.Validate()
}

// NewGroundOrbit returns a GroundOrbit policy around center.
func NewGroundOrbit(center mgl32.Vec3, radius mgl32.Vec2, loop float64) (Policy, error) {
	p := Policy{Kind: GroundOrbit, Center: center, Radius: radius, Loop: loop}
	return p, p.Validate()
}

// WithSpin returns p rotating turns times per loop about axis.
func (p Policy) WithSpin(axis mgl32.Vec3, turns int) Policy {
	p.SpinAxis = axis
	p.SpinTurns = turns
	return p
}

func (p Policy) animated() bool {
	return p.Kind != Stationary || p.SpinTurns != 0
}

// Validate checks the policy can be evaluated.
func (p Policy) Validate() error {
	switch p.Kind {
	case Stationary, Orbit, GroundOrbit:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, p.Kind)
	}
	for _, v := range []float32{p.Center[0], p.Center[1], p.Center[2], p.Radius[0], p.Radius[1]} {
		if !finite(float64(v)) {
			return fmt.Errorf("%s: %w", p.Kind, ErrInvalidShape)
		}
	}
	if p.animated() && !(p.Loop > 0 && finite(p.Loop)) {
		return fmt.Errorf("%s: %w, got %g", p.Kind, ErrInvalidLoop, p.Loop)
	}
	return nil
}

// Angle returns θ = (t mod Loop)·2π/Loop, or zero for unanimated policies.
func Angle(p Policy, elapsed float64) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if !(elapsed >= 0) || !finite(elapsed) {
		return 0, fmt.Errorf("%w, got %g", ErrInvalidTime, elapsed)
	}
	if !p.animated() {
		return 0, nil
	}
	return math.Mod(elapsed, p.Loop) * (2 * math.Pi / p.Loop), nil
}

// Offset returns only the translation of the policy at elapsed seconds.
func Offset(p Policy, elapsed float64) (mgl32.Vec3, error) {
	theta, err := Angle(p, elapsed)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return offsetAt(p, theta), nil
}

func offsetAt(p Policy, theta float64) mgl32.Vec3 {
	c, s := math.Cos(theta), math.Sin(theta)
	rx, r2 := float64(p.Radius[0]), float64(p.Radius[1])

	var motion [3]float64
	switch p.Kind {
	case Orbit:
		motion = [3]float64{c * rx, s * r2, 0}
	case GroundOrbit:
		motion = [3]float64{c * rx, 0, s * r2}
	}
	return mgl32.Vec3{
		float32(motion[0] + float64(p.Center[0])),
		float32(motion[1] + float64(p.Center[1])),
		float32(motion[2] + float64(p.Center[2])),
	}
}

// Compose returns the model-to-camera matrix translation ∘ rotation for the
// policy at elapsed seconds.
func Compose(p Policy, elapsed float64) (gmath.Mat4, error) {
	theta, err := Angle(p, elapsed)
	if err != nil {
		return gmath.Mat4{}, err
	}
	o := offsetAt(p, theta)
	m := gmath.Translate(o[0], o[1], o[2])
	if p.SpinTurns != 0 {
		m = m.Mul(gmath.Rotate(p.SpinAxis, theta*float64(p.SpinTurns)))
	}
	return m, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
