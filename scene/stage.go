package scene

import "sync"

// Graph is a named sub-scene owned by one vignette while attached
type Graph struct {
	Name string
	Root *Node
}

// NewGraph creates a graph with an empty root named after it
func NewGraph(name string) *Graph {
	return &Graph{Name: name, Root: NewNode(name)}
}

// Find looks up a node by name
func (g *Graph) Find(name string) *Node {
	return g.Root.Find(name)
}

// Clone deep copies the graph
func (g *Graph) Clone() *Graph {
	return &Graph{Name: g.Name, Root: g.Root.Clone()}
}

// StageEventKind is Attached or Detached
type StageEventKind uint8

const (
	Attached StageEventKind = iota
	Detached
)

// StageEvent notifies subscribers of sub-scene changes
type StageEvent struct {
	Kind  StageEventKind
	Graph *Graph
}

// Stage holds the attached sub-scenes the renderer draws
type Stage struct {
	mu     sync.RWMutex
	graphs []*Graph
	subs   map[int]func(StageEvent)
	nextID int
}

// NewStage creates an empty stage
func NewStage() *Stage {
	return &Stage{subs: make(map[int]func(StageEvent))}
}

// Subscribe registers fn for attach and detach events and returns its cancel func
func (s *Stage) Subscribe(fn func(StageEvent)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Attach adds g, attaching twice is a no-op
func (s *Stage) Attach(g *Graph) {
	s.mu.Lock()
	for _, existing := range s.graphs {
		if existing == g {
			s.mu.Unlock()
			return
		}
	}
	s.graphs = append(s.graphs, g)
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(StageEvent{Kind: Attached, Graph: g})
	}
}

// Detach removes g, false when it was not attached
func (s *Stage) Detach(g *Graph) bool {
	s.mu.Lock()
	idx := -1
	for i, existing := range s.graphs {
		if existing == g {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.graphs = append(s.graphs[:idx], s.graphs[idx+1:]...)
	subs := s.subscribers()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(StageEvent{Kind: Detached, Graph: g})
	}
	return true
}

// Graphs returns the attached graphs in attach order
func (s *Stage) Graphs() []*Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Graph, len(s.graphs))
	copy(out, s.graphs)
	return out
}

// subscribers copies callbacks in registration order, caller holds mu
func (s *Stage) subscribers() []func(StageEvent) {
	out := make([]func(StageEvent), 0, len(s.subs))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}
