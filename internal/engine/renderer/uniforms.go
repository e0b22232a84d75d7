package renderer

import (
	"fmt"
)

// Role is what a uniform means to the renderer.
type Role int

const (
	// RoleTime receives the elapsed seconds every frame.
	RoleTime Role = iota + 1
	// RoleLoopDuration receives Scene.LoopDuration once at init.
	RoleLoopDuration
	// RoleOffset receives each instance's translation as a vec2 or vec3.
	RoleOffset
	// RoleProjection receives the camera-to-clip matrix at init and on resize.
	RoleProjection
	// RoleModelToCamera receives each instance's model transform.
	RoleModelToCamera
)

func (r Role) String() string {
	switch r {
	case RoleTime:
		return "time"
	case RoleLoopDuration:
		return "loop-duration"
	case RoleOffset:
		return "offset"
	case RoleProjection:
		return "projection"
	case RoleModelToCamera:
		return "model-to-camera"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// UniformBinding ties a uniform name to its role. A Required binding the
// program does not expose fails Init; an optional one is skipped with a
// warning.
type UniformBinding struct {
	Name string
	Role Role
	// Components is the vector width for RoleOffset (2 or 3).
	Components int
	Required   bool
}

// DefaultUniforms returns the conventional uniform names and their roles.
func DefaultUniforms() map[string]Role {
	return map[string]Role{
		"time":                RoleTime,
		"loopDuration":        RoleLoopDuration,
		"offset":              RoleOffset,
		"perspectiveMatrix":   RoleProjection,
		"cameraToClipMatrix":  RoleProjection,
		"modelToCameraMatrix": RoleModelToCamera,
	}
}

// Uniforms returns required bindings for conventional names. Offsets default
// to vec2. Unknown names are an error.
func Uniforms(names ...string) ([]UniformBinding, error) {
	roles := DefaultUniforms()
	out := make([]UniformBinding, 0, len(names))
	for _, name := range names {
		role, ok := roles[name]
		if !ok {
			return nil, fmt.Errorf("no default role for uniform %q", name)
		}
		b := UniformBinding{Name: name, Role: role, Required: true}
		if role == RoleOffset {
			b.Components = 2
		}
		out = append(out, b)
	}
	return out, nil
}

func checkBindings(bindings []UniformBinding) error {
	names := make(map[string]bool, len(bindings))
	roles := make(map[Role]bool, len(bindings))
	for _, b := range bindings {
		if b.Name == "" {
			return fmt.Errorf("uniform binding for %s has no name", b.Role)
		}
		if b.Role < RoleTime || b.Role > RoleModelToCamera {
			return fmt.Errorf("uniform %q: unknown role %s", b.Name, b.Role)
		}
		if names[b.Name] {
			return fmt.Errorf("uniform %q bound twice", b.Name)
		}
		if roles[b.Role] {
			return fmt.Errorf("role %s bound twice", b.Role)
		}
		if b.Role == RoleOffset && b.Components != 2 && b.Components != 3 {
			return fmt.Errorf("offset uniform %q: %d components, want 2 or 3", b.Name, b.Components)
		}
		names[b.Name] = true
		roles[b.Role] = true
	}
	return nil
}
