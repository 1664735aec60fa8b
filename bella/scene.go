package bella

import "fmt"

// EventKind classifies scene mutations published to subscribers.
type EventKind int

const (
	EventNodeCreated EventKind = iota
	EventAttrSet
	EventParented
)

// Event is one scene mutation. During a batch scope events are coalesced
// and delivered only when the outermost scope closes, so observers never
// see a half-built scene.
type Event struct {
	Kind   EventKind
	Node   *Node
	Parent *Node
	Attr   string
}

// Scene owns the node graph: a world root, a settings node and every node
// created through it, keyed by name.
type Scene struct {
	nodes     map[string]*Node
	nodeOrder []string
	world     *Node
	settings  *Node

	subscribers []func(Event)
	batchDepth  int
	pending     []Event
}

func NewScene() *Scene {
	s := &Scene{nodes: make(map[string]*Node)}
	s.world = s.CreateNode("world", "world")
	s.settings = s.CreateNode("settings", "settings")
	return s
}

// World returns the scene root every visible subgraph hangs from.
func (s *Scene) World() *Node { return s.world }

// Settings returns the global settings node.
func (s *Scene) Settings() *Node { return s.settings }

// CreateNode makes (or returns, if the name is taken) a node of the given
// type. Names are unique scene-wide, matching the engine's node namespace.
func (s *Scene) CreateNode(nodeType, name string) *Node {
	if existing, ok := s.nodes[name]; ok {
		return existing
	}
	n := &Node{
		Type:  nodeType,
		Name:  name,
		attrs: make(map[string]any),
		scene: s,
	}
	s.nodes[name] = n
	s.nodeOrder = append(s.nodeOrder, name)
	s.emit(Event{Kind: EventNodeCreated, Node: n})
	return n
}

// FindNode looks a node up by name; the result may be invalid.
func (s *Scene) FindNode(name string) *Node {
	return s.nodes[name]
}

// Nodes returns all nodes in creation order.
func (s *Scene) Nodes() []*Node {
	out := make([]*Node, 0, len(s.nodeOrder))
	for _, name := range s.nodeOrder {
		out = append(out, s.nodes[name])
	}
	return out
}

// Subscribe registers a mutation observer.
func (s *Scene) Subscribe(fn func(Event)) {
	s.subscribers = append(s.subscribers, fn)
}

// Batch opens an event scope: mutations made until the returned close
// function runs are published as one burst. Scopes nest.
//
//	defer scene.Batch()()
func (s *Scene) Batch() func() {
	s.batchDepth++
	return func() {
		s.batchDepth--
		if s.batchDepth > 0 {
			return
		}
		events := s.pending
		s.pending = nil
		for _, ev := range events {
			for _, fn := range s.subscribers {
				fn(ev)
			}
		}
	}
}

func (s *Scene) emit(ev Event) {
	if len(s.subscribers) == 0 {
		return
	}
	if s.batchDepth > 0 {
		s.pending = append(s.pending, ev)
		return
	}
	for _, fn := range s.subscribers {
		fn(ev)
	}
}

// Stats summarizes the graph for logging.
func (s *Scene) Stats() string {
	types := make(map[string]int)
	for _, n := range s.nodes {
		types[n.Type]++
	}
	return fmt.Sprintf("%d nodes (%d xforms, %d instancers, %d materials)",
		len(s.nodes), types["xform"], types["instancer"], types["quickMaterial"])
}
