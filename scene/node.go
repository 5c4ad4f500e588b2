// Package scene is the render-side node graph vignettes attach and animate
package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/vignettes/vmath"
)

// NodeKind is a rendering hint
type NodeKind string

const (
	KindGroup NodeKind = "group"
	KindMesh  NodeKind = "mesh"
	KindLight NodeKind = "light"
	KindText  NodeKind = "text"
)

// Node is a named transform with optional light and visibility state
type Node struct {
	Name      string
	Kind      NodeKind
	Local     vmath.Pose
	Scale     mgl64.Vec3
	Visible   bool
	Intensity float64
	Color     mgl64.Vec3
	Children  []*Node

	parent *Node
}

// NewNode creates a visible group node at the origin with unit scale
func NewNode(name string) *Node {
	return &Node{
		Name:    name,
		Kind:    KindGroup,
		Local:   vmath.IdentityPose(),
		Scale:   mgl64.Vec3{1, 1, 1},
		Visible: true,
		Color:   mgl64.Vec3{1, 1, 1},
	}
}

// Parent returns the owning node, nil for roots
func (n *Node) Parent() *Node {
	return n.parent
}

// Add reparents child under n
func (n *Node) Add(child *Node) {
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child, false when child is not a direct child
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Walk visits n and its descendants depth first until fn returns false
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Find returns the first node named name, depth first
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// FindPrefix returns every node whose name starts with prefix, depth first
func (n *Node) FindPrefix(prefix string) []*Node {
	var out []*Node
	n.Walk(func(c *Node) bool {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
		return true
	})
	return out
}

// WorldPose composes local poses from the root down, scale excluded
func (n *Node) WorldPose() vmath.Pose {
	p := n.Local.Normalized()
	for a := n.parent; a != nil; a = a.parent {
		p = a.Local.Normalized().Mul(p)
	}
	return p
}

// WorldPosition returns the world-space origin of n
func (n *Node) WorldPosition() mgl64.Vec3 {
	return n.WorldPose().Position
}

// SetPose places n at a world pose regardless of its parent chain
func (n *Node) SetPose(world vmath.Pose) {
	if n.parent == nil {
		n.Local = world.Normalized()
		return
	}
	n.Local = n.parent.WorldPose().Inverse().Mul(world.Normalized())
}

// SetLocalPose replaces the pose relative to the parent
func (n *Node) SetLocalPose(p vmath.Pose) {
	n.Local = p.Normalized()
}

// SetScalar sets a uniform scale
func (n *Node) SetScalar(s float64) {
	n.Scale = mgl64.Vec3{s, s, s}
}

// Clone deep copies n and its subtree, the copy has no parent
func (n *Node) Clone() *Node {
	c := *n
	c.parent = nil
	c.Children = make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		cc := child.Clone()
		cc.parent = &c
		c.Children = append(c.Children, cc)
	}
	return &c
}

// EffectiveVisible reports whether n and all its ancestors are visible
func (n *Node) EffectiveVisible() bool {
	for a := n; a != nil; a = a.parent {
		if !a.Visible {
			return false
		}
	}
	return true
}
