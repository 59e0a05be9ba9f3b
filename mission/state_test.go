package mission

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"expedition/searcher"
)

// twoNodeGraph is a bidirectional pair of locations with rewards 3 and 10
// joined by a unit-cost path in each direction.
func twoNodeGraph() *Graph {
	g := NewGraph()
	g.AddLocation(0, 3, Coord{})
	g.AddLocation(1, 10, Coord{X: 1})
	g.AddPath(0, 1, 1)
	g.AddPath(1, 0, 1)
	return g
}

func TestNewExplorationState(t *testing.T) {
	t.Run("rejecting a negative time budget", func(t *testing.T) {
		require.Panics(t, func() {
			NewExplorationState(twoNodeGraph(), -1)
		}, "Negative time budget should be rejected")
	})

	t.Run("zero budget is terminal immediately", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 0)
		state.AddAgent(0)

		require.True(t, state.IsTerminal(), "No time left should leave no agent eligible")
		require.Nil(t, state.PossibleActions(), "Terminal state should offer no actions")
	})
}

func TestPossibleActions(t *testing.T) {
	t.Run("one action per outgoing path with the path cost as duration", func(t *testing.T) {
		g := twoNodeGraph()
		g.AddPath(0, 0, 2.5) // self loop with its own cost
		state := NewExplorationState(g, 12)
		state.AddAgent(0)

		actions := state.PossibleActions()

		require.Len(t, actions, 2, "Pending agent at location 0 has two outgoing paths")
		require.Contains(t, actions, searcher.Action(Action{Agent: 0, From: 0, To: 1, Duration: 1}),
			"Move to the neighbor should cost the path cost")
		require.Contains(t, actions, searcher.Action(Action{Agent: 0, From: 0, To: 0, Duration: 2.5}),
			"Self loop should keep its own cost")
	})
}

func TestExecuteAction(t *testing.T) {
	t.Run("the receiver is never mutated", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 12)
		state.AddAgent(0)

		state.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 1})

		require.Equal(t, 12.0, state.TimeRemains(), "Executing should not advance the original clock")
		require.Equal(t, [][]int{{0}}, state.Histories(), "Executing should not touch the original history")
	})

	t.Run("the moving agent snaps to its destination", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 12)
		state.AddAgent(0)

		next := state.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 1}).(*ExplorationState)

		require.Equal(t, 11.0, next.TimeRemains(), "The clock should shrink by the elapsed time")
		require.Equal(t, [][]int{{0, 1}}, next.Histories(), "The arrival should be recorded")
		require.Equal(t, Status{From: 1, To: 1}, next.Statuses()[0], "The agent should be parked at 1")
	})

	t.Run("the clock caps the elapsed time but the agent still arrives", func(t *testing.T) {
		g := twoNodeGraph()
		g.AddPath(0, 1, 5)
		state := NewExplorationState(g, 2)
		state.AddAgent(0)

		next := state.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 5}).(*ExplorationState)

		require.Equal(t, 0.0, next.TimeRemains(), "Elapsed time should be capped by the clock")
		require.Equal(t, [][]int{{0, 1}}, next.Histories(),
			"The agent should arrive even when the clock ran out en route")
		require.True(t, next.IsTerminal(), "Exhausted clock should end the mission")
	})

	t.Run("ties on remaining time go to the lowest agent index", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 12)
		state.AddAgent(0)
		state.AddAgent(0)

		// Agent 0 departs; the parked agent 1 completes a zero-length event
		// first and becomes the pending chooser.
		mid := state.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 1}).(*ExplorationState)
		require.Equal(t, [][]int{{0}, {0}}, mid.Histories(),
			"A zero-duration event should not be recorded in the history")
		require.Equal(t, 12.0, mid.TimeRemains(), "A zero-duration event should not advance the clock")

		// Both agents now need one unit to reach location 1; the tie must
		// resolve to agent 0.
		next := mid.ExecuteAction(Action{Agent: 1, From: 0, To: 1, Duration: 1}).(*ExplorationState)

		require.Equal(t, [][]int{{0, 1}, {0}}, next.Histories(),
			"The tied event should complete for the lowest agent index")
		require.Equal(t, 11.0, next.TimeRemains(), "The shared clock should shrink once for the tied pair")
		require.Equal(t, Status{From: 0, To: 1}, next.Statuses()[1],
			"The losing agent should still be in transit with zero remaining")
	})
}

func TestReward(t *testing.T) {
	t.Run("revisited locations count once", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 3)
		state.AddAgent(0)

		var cur searcher.State = state
		for _, to := range []int{1, 0, 1} {
			from := 1 - to
			cur = cur.ExecuteAction(Action{Agent: 0, From: from, To: to, Duration: 1})
		}

		require.True(t, cur.IsTerminal(), "Three unit moves should exhaust a budget of 3")
		require.Equal(t, 13.0, cur.Reward(),
			"Locations 0 and 1 should each count once despite the back-and-forth")
	})

	t.Run("locations shared between agents count once", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 0)
		state.AddAgent(0)
		state.AddAgent(0)

		require.Equal(t, 3.0, state.Reward(),
			"Both agents start at location 0 but its reward should count once")
	})

	t.Run("non-terminal state has no reward", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 12)
		state.AddAgent(0)

		require.Equal(t, 0.0, state.Reward(), "Reward should be withheld until the mission ends")
	})

	t.Run("missing the required terminal location forfeits the reward", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 0)
		state.AddAgent(0)
		state.MarkTerminal(1)

		require.True(t, state.IsTerminal(), "Exhausted clock should end the mission")
		require.False(t, state.IsRecovered(), "Agent stranded at 0 is not recovered")
		require.Equal(t, 0.0, state.Reward(), "Unrecovered mission should forfeit the whole reward")
	})

	t.Run("parking at the terminal location locks the agent and pays out", func(t *testing.T) {
		state := NewExplorationState(twoNodeGraph(), 5)
		state.AddAgent(0)
		state.MarkTerminal(1)

		next := state.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 1}).(*ExplorationState)

		require.True(t, next.IsTerminal(),
			"An agent parked at a terminal location can no longer move, even with time left")
		require.True(t, next.IsRecovered(), "Every agent is at a terminal location")
		require.Equal(t, 13.0, next.Reward(), "Recovered mission should pay the distinct-visit sum")
	})
}

func TestStateInvariants(t *testing.T) {
	t.Run("random walks keep the clock and bookkeeping consistent", func(t *testing.T) {
		g := GridGraph(4, 4, 1, func(x, y int) float64 { return float64(x + y) })
		state := NewExplorationState(g, 9)
		state.AddAgent(0)
		state.AddAgent(15)

		rng := rand.New(rand.NewSource(7))
		var cur searcher.State = state
		for !cur.IsTerminal() {
			actions := cur.PossibleActions()
			require.NotEmpty(t, actions, "Non-terminal state should offer actions")
			cur = cur.ExecuteAction(actions[rng.Intn(len(actions))])

			s := cur.(*ExplorationState)
			require.GreaterOrEqual(t, s.TimeRemains(), 0.0, "The clock should never go negative")
			require.Len(t, s.Histories(), 2, "Agent count should be stable")
			for _, history := range s.Histories() {
				for _, location := range history {
					_, ok := g.Location(location)
					require.True(t, ok, "Histories should only mention defined locations")
				}
			}
		}
		require.Equal(t, 0.0, cur.(*ExplorationState).TimeRemains(),
			"Without terminal locations the walk only ends when the clock is spent")
	})
}
