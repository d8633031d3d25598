package host

import (
	"github.com/DoumanAsh/vn/ecs"
	"github.com/kamstrup/intmap"
	"github.com/phanxgames/willow"
)

// EntityNodes are the scene nodes mirroring one entity. Root carries the position; Image
// and Text are optional children.
type EntityNodes struct {
	Id    ecs.EntityId
	Root  *willow.Node
	Image *willow.Node
	Text  *willow.Node

	text textKey
	seen uint64
}

// Dispose removes every node of the entity from the scene.
func (n *EntityNodes) Dispose() {
	n.Root.Dispose()
	n.Image, n.Text = nil, nil
}

// NodeRegistry maps entities to their scene nodes. Willow tags nodes with 32 bits, so the
// registry keys entries by entity slot and keeps the full id to resolve events and to
// notice a reused slot. It is not safe for concurrent use.
type NodeRegistry struct {
	entries *intmap.Map[uint32, *EntityNodes]
	frame   uint64
}

func NewNodeRegistry() *NodeRegistry {
	return &NodeRegistry{entries: intmap.New[uint32, *EntityNodes](64)}
}

// slot is the value willow carries in Node.EntityID.
func slot(id ecs.EntityId) uint32 {
	return id.Index()
}

// Begin starts a sync pass. Entries not touched by Ensure before Sweep are disposed.
func (r *NodeRegistry) Begin() {
	r.frame++
}

// Ensure returns the nodes of id, creating a root container under parent when the entity
// has none or its slot was reused by a new entity.
func (r *NodeRegistry) Ensure(id ecs.EntityId, parent *willow.Node, name string) *EntityNodes {
	key := slot(id)
	n, ok := r.entries.Get(key)
	if ok && n.Id != id {
		n.Dispose()
		ok = false
	}
	if !ok {
		n = &EntityNodes{Id: id, Root: willow.NewContainer(name)}
		n.Root.Interactable = true
		parent.AddChild(n.Root)
		r.entries.Put(key, n)
	}
	n.seen = r.frame
	return n
}

// Sweep disposes the nodes of entities not seen since Begin.
func (r *NodeRegistry) Sweep() {
	var stale []uint32
	r.entries.ForEach(func(key uint32, n *EntityNodes) bool {
		if n.seen != r.frame {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		if n, ok := r.entries.Get(key); ok {
			n.Dispose()
		}
		r.entries.Del(key)
	}
}

// Lookup returns the nodes of id, if any.
func (r *NodeRegistry) Lookup(id ecs.EntityId) (*EntityNodes, bool) {
	n, ok := r.entries.Get(slot(id))
	if !ok || n.Id != id {
		return nil, false
	}
	return n, true
}

// Resolve maps the EntityID of a willow node back to the entity.
func (r *NodeRegistry) Resolve(nodeEntity uint32) (ecs.EntityId, bool) {
	n, ok := r.entries.Get(nodeEntity)
	if !ok {
		return 0, false
	}
	return n.Id, true
}

func (r *NodeRegistry) Len() int {
	return r.entries.Len()
}
