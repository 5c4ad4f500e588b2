// Package asset decodes named sub-scenes and signals readiness once loading completes
package asset

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/core"
	"github.com/lixenwraith/vignettes/engine"
	"github.com/lixenwraith/vignettes/scene"
)

// Store is the asset collaborator vignettes read from
type Store interface {
	Loaded() *engine.Future[error]
	Scene(name string) (*scene.Graph, error)
}

// nodeDoc is the JSON form of a scene node
type nodeDoc struct {
	Name      string     `json:"name"`
	Kind      string     `json:"kind,omitempty"`
	Position  []float64  `json:"position,omitempty"`
	Rotation  []float64  `json:"rotation,omitempty"`
	Scale     []float64  `json:"scale,omitempty"`
	Intensity float64    `json:"intensity,omitempty"`
	Color     []float64  `json:"color,omitempty"`
	Hidden    bool       `json:"hidden,omitempty"`
	Children  []*nodeDoc `json:"children,omitempty"`
}

// Library holds decoded sub-scenes keyed by top-level child name
type Library struct {
	mu     sync.RWMutex
	scenes map[string]*scene.Node
	loaded *engine.Future[error]
}

// NewLibrary creates an empty, unloaded library
func NewLibrary() *Library {
	return &Library{
		scenes: make(map[string]*scene.Node),
		loaded: engine.NewFuture[error](),
	}
}

// Load decodes doc on a background goroutine and resolves Loaded with the outcome
// Only the first load resolves the future
func (l *Library) Load(doc []byte) *engine.Future[error] {
	core.Go(func() {
		l.loaded.Resolve(l.LoadSync(doc))
	})
	return l.loaded
}

// LoadDefault loads the built-in room
func (l *Library) LoadDefault() *engine.Future[error] {
	return l.Load([]byte(DefaultRoomDocument))
}

// LoadSync decodes doc on the caller's goroutine without touching the future
func (l *Library) LoadSync(doc []byte) error {
	scenes, err := Decode(doc)
	if err != nil {
		return err
	}
	l.mu.Lock()
	for name, n := range scenes {
		l.scenes[name] = n
	}
	l.mu.Unlock()
	return nil
}

// Loaded resolves once loading finishes, carrying the decode error if any
func (l *Library) Loaded() *engine.Future[error] {
	return l.loaded
}

// OnAllLoaded runs fn once after a successful load, immediately when already loaded
func (l *Library) OnAllLoaded(fn func()) {
	l.loaded.Then(func(err error) {
		if err == nil {
			fn()
		}
	})
}

// Ready reports whether loading finished without error
func (l *Library) Ready() bool {
	err, ok := l.loaded.Value()
	return ok && err == nil
}

// Names returns the available scene names, sorted
func (l *Library) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	names := make([]string, 0, len(l.scenes))
	for name := range l.scenes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Scene returns a private deep copy of the named sub-scene
func (l *Library) Scene(name string) (*scene.Graph, error) {
	l.mu.RLock()
	root, ok := l.scenes[name]
	l.mu.RUnlock()
	if !ok {
		if !l.Ready() {
			return nil, fmt.Errorf("scene %q: %w", name, core.ErrNotReady)
		}
		return nil, fmt.Errorf("scene %q: %w", name, core.ErrUnknownName)
	}
	return &scene.Graph{Name: name, Root: root.Clone()}, nil
}

// Decode parses a room document into its top-level sub-scenes
func Decode(doc []byte) (map[string]*scene.Node, error) {
	var root nodeDoc
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	out := make(map[string]*scene.Node, len(root.Children))
	for _, child := range root.Children {
		if child.Name == "" {
			return nil, fmt.Errorf("decode room: unnamed top-level node: %w", core.ErrInvalidParams)
		}
		n, err := buildNode(child)
		if err != nil {
			return nil, err
		}
		out[child.Name] = n
	}
	return out, nil
}

func buildNode(d *nodeDoc) (*scene.Node, error) {
	n := scene.NewNode(d.Name)
	if d.Kind != "" {
		n.Kind = scene.NodeKind(d.Kind)
	}
	n.Visible = !d.Hidden
	n.Intensity = d.Intensity

	if d.Position != nil {
		v, err := vec3(d.Name, "position", d.Position)
		if err != nil {
			return nil, err
		}
		n.Local.Position = v
	}
	if d.Rotation != nil {
		if len(d.Rotation) != 4 {
			return nil, fmt.Errorf("node %q rotation needs 4 values: %w", d.Name, core.ErrInvalidParams)
		}
		n.Local.Rotation = mgl64.Quat{W: d.Rotation[3], V: mgl64.Vec3{d.Rotation[0], d.Rotation[1], d.Rotation[2]}}
		n.Local = n.Local.Normalized()
	}
	if d.Scale != nil {
		v, err := vec3(d.Name, "scale", d.Scale)
		if err != nil {
			return nil, err
		}
		n.Scale = v
	}
	if d.Color != nil {
		v, err := vec3(d.Name, "color", d.Color)
		if err != nil {
			return nil, err
		}
		n.Color = v
	}

	for _, c := range d.Children {
		child, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func vec3(node, field string, v []float64) (mgl64.Vec3, error) {
	if len(v) != 3 {
		return mgl64.Vec3{}, fmt.Errorf("node %q %s needs 3 values: %w", node, field, core.ErrInvalidParams)
	}
	return mgl64.Vec3{v[0], v[1], v[2]}, nil
}
