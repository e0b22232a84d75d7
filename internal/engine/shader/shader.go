// Package shader compiles shader stages and links them into programs.
package shader

import (
	"fmt"
	"io/fs"
	"path"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/logger"
)

// CompileError is returned when a stage fails to compile. Log holds the full
// compiler diagnostics.
type CompileError struct {
	Kind gpu.ShaderType
	Log  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader: compile failed: %s", e.Kind, e.Log)
}

// Stage is one compiled shader object. It only exists between Compile and
// Link; Link deletes it.
type Stage struct {
	Kind   gpu.ShaderType
	Source string
	Handle uint32
	Log    string
}

// Compile compiles a single stage of the given kind. On failure the shader
// object is deleted and a *CompileError is returned; a handle to an
// uncompiled stage is never handed out.
func Compile(dev gpu.Device, kind gpu.ShaderType, source string) (*Stage, error) {
	handle := dev.CreateShader(kind)
	dev.ShaderSource(handle, source)
	dev.CompileShader(handle)

	log := dev.ShaderInfoLog(handle)
	if !dev.ShaderCompiled(handle) {
		dev.DeleteShader(handle)
		return nil, &CompileError{Kind: kind, Log: log}
	}

	logger.Debug("shader compiled",
		zap.Stringer("kind", kind),
		zap.Uint32("handle", handle),
	)
	return &Stage{Kind: kind, Source: source, Handle: handle, Log: log}, nil
}

// KindFromPath infers the stage kind from a file extension.
func KindFromPath(name string) (gpu.ShaderType, error) {
	switch path.Ext(name) {
	case ".vert":
		return gpu.VertexShader, nil
	case ".frag":
		return gpu.FragmentShader, nil
	case ".geom":
		return gpu.GeometryShader, nil
	default:
		return 0, fmt.Errorf("shader %s: unknown stage extension %q", name, path.Ext(name))
	}
}

// Load reads a stage source from fsys and compiles it.
func Load(dev gpu.Device, fsys fs.FS, name string) (*Stage, error) {
	kind, err := KindFromPath(name)
	if err != nil {
		return nil, err
	}
	src, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	stage, err := Compile(dev, kind, string(src))
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", name, err)
	}
	return stage, nil
}

// DeleteStages releases stages that were compiled but never linked.
func DeleteStages(dev gpu.Device, stages []*Stage) {
	for _, s := range stages {
		if s != nil && s.Handle != 0 {
			dev.DeleteShader(s.Handle)
			s.Handle = 0
		}
	}
}
