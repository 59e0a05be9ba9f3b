package searcher

import (
	"errors"
	"math"

	"golang.org/x/exp/rand"
)

// nodeID addresses a node inside the tree's arena.
type nodeID int32

const noNode nodeID = -1

var errNoSuchChild = errors.New("node does not have the given child")

// node is one arena entry. The parent and the children are arena indices
// rather than pointers, so ancestor walks stay O(1) per hop without a cyclic
// parent/child pointer graph.
type node struct {
	state    State
	parent   nodeID
	children map[Action]nodeID
	untried  []Action
	rewards  float64
	visits   int
}

// isExpanded holds once every possible action has been tried.
func (n *node) isExpanded() bool { return len(n.untried) == 0 }

type tree struct {
	nodes []node
	rng   *rand.Rand
}

func newTree(initial State, rng *rand.Rand) *tree {
	t := &tree{rng: rng}
	t.grow(initial, noNode)
	return t
}

// grow appends a fresh node wrapping state and returns its index.
func (t *tree) grow(state State, parent nodeID) nodeID {
	id := nodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{
		state:    state,
		parent:   parent,
		children: make(map[Action]nodeID),
		untried:  state.PossibleActions(),
	})
	return id
}

func (t *tree) at(id nodeID) *node { return &t.nodes[id] }

// depth is the number of parent hops to the parentless root, inclusive.
func (t *tree) depth(id nodeID) int {
	depth := 0
	for id != noNode {
		depth++
		id = t.at(id).parent
	}
	return depth
}

// addChild materializes the child reached by action, removing the action
// from the parent's untried set.
func (t *tree) addChild(parent nodeID, action Action) nodeID {
	child := t.grow(t.at(parent).state.ExecuteAction(action), parent)
	p := t.at(parent) // grow may have reallocated the arena
	for i, a := range p.untried {
		if a == action {
			p.untried = append(p.untried[:i], p.untried[i+1:]...)
			break
		}
	}
	p.children[action] = child
	return child
}

// expand tries one untried action, picked uniformly at random.
func (t *tree) expand(id nodeID) nodeID {
	n := t.at(id)
	action := n.untried[t.rng.Intn(len(n.untried))]
	return t.addChild(id, action)
}

// removeChild detaches child from parent. Detaching a node that is not a
// child of parent is API misuse and is rejected.
func (t *tree) removeChild(parent, child nodeID) error {
	p := t.at(parent)
	for action, id := range p.children {
		if id == child {
			delete(p.children, action)
			t.at(child).parent = noNode
			return nil
		}
	}
	return errNoSuchChild
}

// selectChild descends to the child with the maximal UCB1 score
// w/n + c*sqrt(2*ln(N)/n), breaking ties uniformly at random. Selection is
// only ever invoked on fully expanded nodes, whose children have each been
// visited during their own expansion round; the n=0 denominator is therefore
// unreachable by construction of the select/expand loop.
func (t *tree) selectChild(id nodeID, exploration float64) nodeID {
	n := t.at(id)
	normalizer := 2.0 * math.Log(float64(n.visits))
	best := math.Inf(-1)
	var winners []nodeID
	for _, child := range n.children {
		c := t.at(child)
		score := c.rewards/float64(c.visits) +
			exploration*math.Sqrt(normalizer/float64(c.visits))
		if score > best {
			best = score
			winners = winners[:0]
		}
		if score == best {
			winners = append(winners, child)
		}
	}
	return winners[t.rng.Intn(len(winners))]
}

// bestChild picks the child with the highest average reward w/n - pure
// exploitation, ties broken uniformly at random. Reports false when the node
// has no children.
func (t *tree) bestChild(id nodeID) (Action, nodeID, bool) {
	n := t.at(id)
	if len(n.children) == 0 {
		return nil, noNode, false
	}
	best := math.Inf(-1)
	var actions []Action
	var winners []nodeID
	for action, child := range n.children {
		c := t.at(child)
		avg := c.rewards / float64(c.visits)
		if avg > best {
			best = avg
			actions = actions[:0]
			winners = winners[:0]
		}
		if avg == best {
			actions = append(actions, action)
			winners = append(winners, child)
		}
	}
	i := t.rng.Intn(len(winners))
	return actions[i], winners[i], true
}

// backpropagate adds the rollout reward, unchanged, to every node from id up
// to the root, incrementing each visit count.
func (t *tree) backpropagate(id nodeID, reward float64) {
	for id != noNode {
		n := t.at(id)
		n.visits++
		n.rewards += reward
		id = n.parent
	}
}
