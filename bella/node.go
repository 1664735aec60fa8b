// Package bella holds the in-memory target scene: a typed node graph that
// the composer fills in and the writer serializes into a .bsz archive.
package bella

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// Attribute value types. Matrices use the mathgl types directly; their flat
// storage order is the order the writer emits.
type (
	Vec2 struct{ X, Y float64 }
	Rgba struct{ R, G, B, A float64 }
)

// Node is one scene-graph node: a type tag, a unique name, ordered
// attributes and child links. A node may be linked under several parents
// (instancing), so the graph is a DAG rather than a tree.
type Node struct {
	Type string
	Name string

	attrs    map[string]any
	attrKeys []string
	children []*Node

	scene *Scene
}

// Valid reports whether the node exists (find misses return a zero Node).
func (n *Node) Valid() bool {
	return n != nil && n.Name != ""
}

// Set assigns an attribute. Keys are dotted paths the way the engine
// addresses them, e.g. "steps.0.xform" or "overrides.background".
// Accepted values: float64, int, bool, string, Vec2, Rgba, mgl64.Mat4,
// []mgl32.Mat4 and *Node (a link).
func (n *Node) Set(key string, value any) {
	if n == nil {
		return
	}
	if _, ok := n.attrs[key]; !ok {
		n.attrKeys = append(n.attrKeys, key)
	}
	n.attrs[key] = value
	if n.scene != nil {
		n.scene.emit(Event{Kind: EventAttrSet, Node: n, Attr: key})
	}
}

// Get returns an attribute value, or nil when unset.
func (n *Node) Get(key string) any {
	if n == nil {
		return nil
	}
	return n.attrs[key]
}

// SetXform assigns the node's local transform, "steps.0.xform".
func (n *Node) SetXform(m mgl64.Mat4) {
	n.Set("steps.0.xform", m)
}

// SetInstances assigns the flat per-voxel translation array of an
// instancer node, "steps.0.instances".
func (n *Node) SetInstances(ms []mgl32.Mat4) {
	n.Set("steps.0.instances", ms)
}

// ParentTo links n under parent. Linking the same pair twice is a no-op.
func (n *Node) ParentTo(parent *Node) {
	if n == nil || parent == nil {
		return
	}
	for _, c := range parent.children {
		if c == n {
			return
		}
	}
	parent.children = append(parent.children, n)
	if parent.scene != nil {
		parent.scene.emit(Event{Kind: EventParented, Node: n, Parent: parent})
	}
}

// Children returns the node's child links in insertion order.
func (n *Node) Children() []*Node {
	return n.children
}
