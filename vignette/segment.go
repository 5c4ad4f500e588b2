package vignette

import (
	"fmt"

	"github.com/lixenwraith/vignettes/scene"
)

// Vignette is one scripted segment
type Vignette interface {
	Name() string
	Scene() *scene.Graph
	Setup(ctx *Context) error
	Update(ctx *Context)
	Done() bool
	Teardown(ctx *Context)
}

// Factory builds a fresh vignette each time its slot comes up
type Factory func(ctx *Context) (Vignette, error)

// Spec declares a segment with typed state S
// Scene names an asset sub-scene; empty creates an empty graph named after the segment
type Spec[S any] struct {
	Name     string
	Scene    string
	Setup    func(ctx *Context, s *S) error
	Update   func(ctx *Context, s *S) (done bool)
	Teardown func(ctx *Context, s *S)
}

// Segment is a Vignette holding its state as an explicit value
type Segment[S any] struct {
	spec  Spec[S]
	graph *scene.Graph
	state S
	done  bool
}

// New returns a factory producing segments from spec
func New[S any](spec Spec[S]) Factory {
	return func(ctx *Context) (Vignette, error) {
		var g *scene.Graph
		if spec.Scene == "" {
			g = scene.NewGraph(spec.Name)
		} else {
			if ctx == nil || ctx.Assets == nil {
				return nil, fmt.Errorf("vignette %q needs scene %q without an asset store", spec.Name, spec.Scene)
			}
			var err error
			g, err = ctx.Assets.Scene(spec.Scene)
			if err != nil {
				return nil, fmt.Errorf("vignette %q: %w", spec.Name, err)
			}
		}
		return &Segment[S]{spec: spec, graph: g}, nil
	}
}

func (s *Segment[S]) Name() string        { return s.spec.Name }
func (s *Segment[S]) Scene() *scene.Graph { return s.graph }
func (s *Segment[S]) Done() bool          { return s.done }

// State exposes the segment state, mainly for tests
func (s *Segment[S]) State() *S {
	return &s.state
}

func (s *Segment[S]) Setup(ctx *Context) error {
	if s.spec.Setup == nil {
		return nil
	}
	return s.spec.Setup(ctx, &s.state)
}

func (s *Segment[S]) Update(ctx *Context) {
	if s.done || s.spec.Update == nil {
		return
	}
	s.done = s.spec.Update(ctx, &s.state)
}

func (s *Segment[S]) Teardown(ctx *Context) {
	if s.spec.Teardown != nil {
		s.spec.Teardown(ctx, &s.state)
	}
}
