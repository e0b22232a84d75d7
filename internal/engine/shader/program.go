package shader

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/gltut/internal/engine/gpu"
	"github.com/Faultbox/gltut/internal/logger"
)

// LinkError is returned when a program fails to link.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return "link failed: " + e.Log
}

// UniformNotFoundError reports a uniform the program does not expose, either
// because it is misspelled or because the compiler optimized it out.
type UniformNotFoundError struct {
	Name string
}

func (e *UniformNotFoundError) Error() string {
	return fmt.Sprintf("uniform %q not found", e.Name)
}

// ErrDeleted is returned when a deleted program is used.
var ErrDeleted = errors.New("program deleted")

// State is the lifecycle position of a program.
type State int

const (
	Uninitialized State = iota
	Linked
	Bound
	Unbound
)

func (s State) String() string {
	switch s {
	case Linked:
		return "linked"
	case Bound:
		return "bound"
	case Unbound:
		return "unbound"
	default:
		return "uninitialized"
	}
}

// Program is a linked shader program with its resolved uniform locations.
type Program struct {
	dev      gpu.Device
	Handle   uint32
	Log      string
	uniforms map[string]int32
	state    State
}

// Link attaches all stages, links them and deletes the stages whatever the
// outcome. A failed link deletes the program object and returns *LinkError.
func Link(dev gpu.Device, stages []*Stage) (*Program, error) {
	if len(stages) == 0 {
		return nil, &LinkError{Log: "no shader stages"}
	}

	handle := dev.CreateProgram()
	for _, s := range stages {
		dev.AttachShader(handle, s.Handle)
	}
	dev.LinkProgram(handle)

	linked := dev.ProgramLinked(handle)
	log := dev.ProgramInfoLog(handle)

	for _, s := range stages {
		dev.DetachShader(handle, s.Handle)
	}
	DeleteStages(dev, stages)

	if !linked {
		dev.DeleteProgram(handle)
		return nil, &LinkError{Log: log}
	}

	logger.Debug("program linked",
		zap.Uint32("program", handle),
		zap.Int("stages", len(stages)),
	)
	return &Program{
		dev:      dev,
		Handle:   handle,
		Log:      log,
		uniforms: make(map[string]int32),
		state:    Linked,
	}, nil
}

// Resolve looks up and caches the locations of names. It stops at the first
// name the program does not expose and returns *UniformNotFoundError; names
// resolved before it stay cached.
func (p *Program) Resolve(names ...string) error {
	if p.state == Uninitialized {
		return ErrDeleted
	}
	for _, name := range names {
		if _, ok := p.uniforms[name]; ok {
			continue
		}
		loc := p.dev.UniformLocation(p.Handle, name)
		if loc < 0 {
			return &UniformNotFoundError{Name: name}
		}
		p.uniforms[name] = loc
	}
	return nil
}

// Uniform returns a location cached by Resolve.
func (p *Program) Uniform(name string) (int32, bool) {
	loc, ok := p.uniforms[name]
	return loc, ok
}

// State returns the current lifecycle state.
func (p *Program) State() State {
	return p.state
}

// Use makes the program current.
func (p *Program) Use() error {
	if p.state == Uninitialized {
		return ErrDeleted
	}
	p.dev.UseProgram(p.Handle)
	p.state = Bound
	return nil
}

// Unuse clears the current program.
func (p *Program) Unuse() {
	if p.state != Bound {
		return
	}
	p.dev.UseProgram(0)
	p.state = Unbound
}

// Delete releases the program. Safe to call more than once.
func (p *Program) Delete() {
	if p.state == Uninitialized {
		return
	}
	p.Unuse()
	p.dev.DeleteProgram(p.Handle)
	p.Handle = 0
	p.uniforms = nil
	p.state = Uninitialized
}
