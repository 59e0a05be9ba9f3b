package mission

import (
	"math"

	"expedition/searcher"
)

// Status describes one agent's motion as (From, To, Remaining): the agent
// left From and reaches To after Remaining more time units. From == To with
// Remaining == 0 means the agent is parked at that location. Deploy marks an
// in-flight deploy action.
type Status struct {
	From      int
	To        int
	Remaining float64
	Deploy    bool
}

// ExplorationState is the flat realization of the searcher contract: agents
// move along graph paths under one shared, depleting time budget, and
// exactly one scheduled event completes per executed action. Between events
// exactly one agent is pending (must choose its next path); all others are
// mid-transit or parked.
type ExplorationState struct {
	graph       *Graph
	histories   [][]int
	statuses    []Status
	terminals   map[int]bool
	timeRemains float64
	pending     int
}

// NewExplorationState creates a state over graph with the given time budget.
// It panics on a negative budget.
func NewExplorationState(graph *Graph, timeRemains float64) *ExplorationState {
	if timeRemains < 0 {
		panic("mission: the remaining time cannot be negative")
	}
	return &ExplorationState{
		graph:       graph,
		terminals:   make(map[int]bool),
		timeRemains: timeRemains,
	}
}

// AddAgent places an agent at a location. Agents are indexed in the order
// they are added; the first agent added is the first to act.
func (s *ExplorationState) AddAgent(location int) {
	s.histories = append(s.histories, []int{location})
	s.statuses = append(s.statuses, Status{From: location, To: location})
}

// MarkTerminal requires agents to finish at location for the mission reward
// to count; an agent parked at a terminal location can no longer move.
func (s *ExplorationState) MarkTerminal(location int) {
	s.terminals[location] = true
}

func (s *ExplorationState) clone() *ExplorationState {
	histories := make([][]int, len(s.histories))
	for i, history := range s.histories {
		histories[i] = append([]int(nil), history...)
	}
	terminals := make(map[int]bool, len(s.terminals))
	for location := range s.terminals {
		terminals[location] = true
	}
	return &ExplorationState{
		graph:       s.graph,
		histories:   histories,
		statuses:    append([]Status(nil), s.statuses...),
		terminals:   terminals,
		timeRemains: s.timeRemains,
		pending:     s.pending,
	}
}

// eligibleAgents lists the agents that can still act: none once the clock is
// exhausted, and never an agent parked at a terminal location.
func (s *ExplorationState) eligibleAgents() []int {
	if s.timeRemains <= 0 {
		return nil
	}
	var eligible []int
	for i := range s.statuses {
		if !s.terminals[s.statuses[i].From] {
			eligible = append(eligible, i)
		}
	}
	return eligible
}

// evolve completes exactly one scheduled event: the eligible agent with the
// minimum in-transit remaining time (ties broken by lowest agent index, a
// deterministic part of the contract) arrives at its destination, every
// other in-transit agent advances by the same amount, and the global clock
// decreases by it. The arrival is recorded in the agent's history only when
// nonzero time elapsed, so a zero-duration self action is not double
// recorded. Returns the completed event, or done=false on a terminal state.
func (s *ExplorationState) evolve() (agent, destination int, elapsed float64, deploy bool, done bool) {
	eligible := s.eligibleAgents()
	if len(eligible) == 0 {
		return 0, 0, 0, false, false
	}
	selected := eligible[0]
	for _, i := range eligible[1:] {
		if s.statuses[i].Remaining < s.statuses[selected].Remaining {
			selected = i
		}
	}
	elapsed = math.Min(s.timeRemains, s.statuses[selected].Remaining)
	destination = s.statuses[selected].To
	deploy = s.statuses[selected].Deploy
	for i := range s.statuses {
		if i != selected {
			s.statuses[i].Remaining -= elapsed
			continue
		}
		s.statuses[i] = Status{From: destination, To: destination}
		if elapsed != 0 {
			s.histories[i] = append(s.histories[i], destination)
		}
	}
	s.pending = selected
	s.timeRemains -= elapsed
	return selected, destination, elapsed, deploy, true
}

// Visited is the set of locations any agent has visited.
func (s *ExplorationState) Visited() map[int]bool {
	visited := make(map[int]bool)
	for _, history := range s.histories {
		for _, location := range history {
			visited[location] = true
		}
	}
	return visited
}

// IsRecovered reports whether every agent is at a terminal location, or true
// when the mission requires no recovery (no terminal locations).
func (s *ExplorationState) IsRecovered() bool {
	if len(s.terminals) == 0 {
		return true
	}
	for i := range s.statuses {
		if !s.terminals[s.statuses[i].From] {
			return false
		}
	}
	return true
}

// IsTerminal reports whether no agent is eligible to act.
func (s *ExplorationState) IsTerminal() bool {
	return len(s.eligibleAgents()) == 0
}

// Reward is 0 for a non-terminal or non-recovered state; otherwise it is the
// sum of rewards over distinct visited locations, each counted at most once
// no matter how many agents or visits touched it.
func (s *ExplorationState) Reward() float64 {
	if !s.IsTerminal() || !s.IsRecovered() {
		return 0
	}
	total := 0.0
	for location := range s.Visited() {
		total += s.graph.Reward(location)
	}
	return total
}

// PossibleActions lists one action per path leaving the pending agent's
// location, each with duration equal to the path cost. Empty iff terminal.
func (s *ExplorationState) PossibleActions() []searcher.Action {
	if s.IsTerminal() {
		return nil
	}
	from := s.statuses[s.pending].From
	paths := s.graph.OutgoingPaths(from)
	actions := make([]searcher.Action, 0, len(paths))
	for _, path := range paths {
		actions = append(actions, Action{
			Agent:    s.pending,
			From:     from,
			To:       path.To,
			Duration: path.Cost,
		})
	}
	return actions
}

// ExecuteAction applies action to a clone of the state and completes one
// event; the receiver is never mutated.
func (s *ExplorationState) ExecuteAction(action searcher.Action) searcher.State {
	a := action.(Action)
	next := s.clone()
	next.statuses[a.Agent] = Status{From: a.From, To: a.To, Remaining: a.Duration, Deploy: a.Deploy}
	next.evolve()
	return next
}

// Graph exposes the mission map for external renderers.
func (s *ExplorationState) Graph() *Graph { return s.graph }

// TimeRemains is the global clock: the shared time budget left.
func (s *ExplorationState) TimeRemains() float64 { return s.timeRemains }

// NumAgents reports how many agents the mission tracks.
func (s *ExplorationState) NumAgents() int { return len(s.statuses) }

// Histories returns each agent's ordered sequence of visited locations.
func (s *ExplorationState) Histories() [][]int {
	histories := make([][]int, len(s.histories))
	for i, history := range s.histories {
		histories[i] = append([]int(nil), history...)
	}
	return histories
}

// Statuses returns each agent's in-transit status.
func (s *ExplorationState) Statuses() []Status {
	return append([]Status(nil), s.statuses...)
}
