package searcher

import (
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type Option func(mcts *MCTS)

// MCTS drives repeated select/expand/rollout/backpropagate rounds over a
// tree of state snapshots and persists the tree across real actions via
// UpdateRoot. A Search call runs its entire sample budget synchronously;
// there is no parallel sampling and no cancellation mid-search.
type MCTS struct {
	tree        *tree
	root        nodeID
	samples     int
	maxDepth    int
	exploration float64
	rng         *rand.Rand
	metrics     MetricsCollector
	lastSearch  SearchMetrics
}

func WithExploration(c float64) Option {
	return func(m *MCTS) {
		if c > 0 {
			m.exploration = c
		}
	}
}

func WithSeed(seed uint64) Option {
	return func(m *MCTS) {
		m.rng = rand.New(rand.NewSource(seed))
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(m *MCTS) {
		if rng != nil {
			m.rng = rng
		}
	}
}

func WithMetrics(collector MetricsCollector) Option {
	return func(m *MCTS) {
		if collector != nil {
			m.metrics = collector
		}
	}
}

// NewMCTS builds a search tree rooted at initial. It panics when the sample
// budget is not positive or when maxDepth does not allow at least one level
// of children below the root.
func NewMCTS(initial State, samples, maxDepth int, options ...Option) *MCTS {
	if samples <= 0 {
		panic("searcher: sample budget must be positive")
	}
	if maxDepth <= 1 {
		panic("searcher: max tree depth must exceed 1")
	}
	m := &MCTS{
		samples:     samples,
		maxDepth:    maxDepth,
		exploration: DefaultExploration,
		rng:         rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics:     NewNoMetricsCollector(),
	}
	for _, option := range options {
		option(m)
	}
	m.tree = newTree(initial, m.rng)
	m.root = 0
	return m
}

// RootState returns the state snapshot at the current search root.
func (m *MCTS) RootState() State {
	return m.tree.at(m.root).state
}

// LastSearchMetrics reports the metrics of the most recent Search call.
func (m *MCTS) LastSearchMetrics() SearchMetrics {
	return m.lastSearch
}

// Search runs the configured number of sampling rounds from the current root,
// then extracts up to lookahead actions by following, level by level, the
// child with the highest average reward. The sequence is shorter than
// lookahead (possibly empty) when a node at the required depth has no
// children; callers must tolerate fewer actions than requested.
func (m *MCTS) Search(lookahead int) []Action {
	m.metrics.Start()
	for i := 0; i < m.samples; i++ {
		m.round()
		m.metrics.AddSample()
	}
	m.lastSearch = m.metrics.Complete()

	var actions []Action
	cur := m.root
	for len(actions) < lookahead {
		action, child, ok := m.tree.bestChild(cur)
		if !ok {
			break
		}
		actions = append(actions, action)
		cur = child
	}
	return actions
}

// round performs one select/expand/rollout/backpropagate cycle. Descent
// stops at the first node that still has untried actions, at the depth
// limit, or at a childless (terminal) node, so expansion always precedes a
// child's first selection.
func (m *MCTS) round() {
	cur := m.root
	for m.tree.at(cur).isExpanded() &&
		len(m.tree.at(cur).children) > 0 &&
		m.tree.depth(cur) < m.maxDepth {
		cur = m.tree.selectChild(cur, m.exploration)
	}
	if !m.tree.at(cur).isExpanded() && m.tree.depth(cur) < m.maxDepth {
		cur = m.tree.expand(cur)
	}
	reward := m.rollout(m.tree.at(cur).state)
	m.tree.backpropagate(cur, reward)
}

// rollout plays uniformly random legal actions until a terminal state and
// returns its reward. No value estimate, no discounting.
func (m *MCTS) rollout(state State) float64 {
	steps := 0
	for !state.IsTerminal() {
		actions := state.PossibleActions()
		state = state.ExecuteAction(actions[m.rng.Intn(len(actions))])
		steps++
	}
	m.metrics.AddRolloutSteps(steps)
	return state.Reward()
}

// UpdateRoot advances the persisted root to the child reached by action,
// materializing the child first if the action was never tried. Sibling
// subtrees of the old root become unreachable and are discarded with the old
// root reference; statistics along the chosen path are kept and reused by
// future Search calls.
func (m *MCTS) UpdateRoot(action Action) {
	child, ok := m.tree.at(m.root).children[action]
	if !ok {
		log.Debug().Stringer("action", action).Msg("advancing root to untried child")
		child = m.tree.addChild(m.root, action)
	}
	m.root = child
}

// RevertToTopRoot walks parent links from the current root back to the
// tree's original root and returns the state that was current before the
// walk - the most recent resumption point.
func (m *MCTS) RevertToTopRoot() State {
	prev := m.root
	for m.tree.at(m.root).parent != noNode {
		m.root = m.tree.at(m.root).parent
	}
	return m.tree.at(prev).state
}
