package strategy

import (
	"github.com/aretw0/espalier/pkg/module"
)

// ContID is a hash-consed continuation: a stack of strategies still to run.
// Equal stacks have equal IDs, so configurations compare in O(1).
type ContID int32

// Done is the empty continuation.
const Done ContID = 0

type contNode struct {
	head *module.Strategy
	tail ContID
}

type contTable struct {
	nodes []contNode
	index map[contNode]ContID
}

func newContTable() *contTable {
	return &contTable{
		nodes: []contNode{{}},
		index: make(map[contNode]ContID),
	}
}

func (c *contTable) push(s *module.Strategy, k ContID) ContID {
	n := contNode{head: s, tail: k}
	if id, ok := c.index[n]; ok {
		return id
	}
	id := ContID(len(c.nodes))
	c.nodes = append(c.nodes, n)
	c.index[n] = id
	return id
}

func (c *contTable) pop(k ContID) (*module.Strategy, ContID) {
	n := c.nodes[k]
	return n.head, n.tail
}

func (c *contTable) frames(k ContID) []*module.Strategy {
	var out []*module.Strategy
	for k != Done {
		n := c.nodes[k]
		out = append(out, n.head)
		k = n.tail
	}
	return out
}

// expression rebuilds the continuation as one strategy expression.
func (c *contTable) expression(k ContID) *module.Strategy {
	frames := c.frames(k)
	switch len(frames) {
	case 0:
		return module.Idle()
	case 1:
		return frames[0]
	}
	return module.Seq(frames[0], frames[1], frames[2:]...)
}
