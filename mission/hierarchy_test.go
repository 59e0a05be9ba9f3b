package mission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"expedition/searcher"
)

// ventMission is a deterministic nested mission: one agent, two locations
// with rewards 0 and 5, one unit of time. The only legal move reaches the
// rewarded location and exhausts the clock, so every resumption pays 5.
func ventMission() searcher.State {
	g := NewGraph()
	g.AddLocation(0, 0, Coord{})
	g.AddLocation(1, 5, Coord{X: 1})
	g.AddPath(0, 1, 1)
	g.AddPath(1, 0, 1)
	state := NewExplorationState(g, 1)
	state.AddAgent(0)
	return state
}

func newSurvey(timeRemains float64, options ...RegistryOption) *SurveyState {
	g := NewGraph()
	g.AddLocation(0, 0, Coord{})
	g.AddLocation(1, 0, Coord{X: 1})
	g.AddPath(0, 1, 1)
	g.AddPath(1, 0, 1)
	registry := NewRegistry(map[string]searcher.State{"vent": ventMission()}, options...)
	survey := NewSurveyState(g, timeRemains, map[int]string{0: "vent", 1: "vent"}, registry)
	survey.AddAgent(0)
	return survey
}

func deployAt(agent, location int) Action {
	return Action{Agent: agent, From: location, To: location, Duration: DeployDuration, Deploy: true}
}

func TestSurveyPossibleActions(t *testing.T) {
	t.Run("a deploy self loop is appended to the movement actions", func(t *testing.T) {
		survey := newSurvey(40)

		actions := survey.PossibleActions()

		require.Len(t, actions, 2, "One movement action plus the deploy")
		require.Equal(t, searcher.Action(deployAt(0, 0)), actions[len(actions)-1],
			"Deploy should be a self loop with the fixed nominal duration")
	})
}

func TestSurveyDeploy(t *testing.T) {
	t.Run("completing a deploy runs the nested mission and banks its reward", func(t *testing.T) {
		survey := newSurvey(40)

		next := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.Equal(t, 5.0, next.DeployReward(), "Nested terminal reward should be banked")
		require.Equal(t, [][]int{{0}}, next.DeployHistories(), "The deploy location should be recorded")
		require.Equal(t, 30.0, next.TimeRemains(), "Deploying should cost its nominal duration")
		require.Equal(t, [][]int{{0, 0}}, next.Histories(),
			"A completed deploy is a self-loop arrival and should appear in the movement history")
	})

	t.Run("deploying twice at the same location banks the reward once", func(t *testing.T) {
		survey := newSurvey(40)

		once := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)
		twice := once.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.Equal(t, 5.0, twice.DeployReward(), "A repeat deploy should not double-count")
		require.Equal(t, [][]int{{0, 0}}, twice.DeployHistories(),
			"Both deploys should still be recorded in the history")
	})

	t.Run("deploys at distinct locations accumulate", func(t *testing.T) {
		survey := newSurvey(40)

		var cur searcher.State = survey
		cur = cur.ExecuteAction(deployAt(0, 0))
		cur = cur.ExecuteAction(Action{Agent: 0, From: 0, To: 1, Duration: 1})
		cur = cur.ExecuteAction(deployAt(0, 1))

		require.Equal(t, 10.0, cur.(*SurveyState).DeployReward(),
			"Each distinct deploy location should bank the nested reward")
	})
}

func TestSurveyReward(t *testing.T) {
	t.Run("the banked reward is withheld until the mission ends", func(t *testing.T) {
		survey := newSurvey(40)

		next := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.Equal(t, 5.0, next.DeployReward(), "The accumulator should already hold the reward")
		require.Equal(t, 0.0, next.Reward(), "Reward should be withheld while the mission runs")
	})

	t.Run("an exhausting deploy ends the mission and pays out", func(t *testing.T) {
		survey := newSurvey(10)

		next := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.True(t, next.IsTerminal(), "A deploy consuming the whole budget should end the mission")
		require.Equal(t, 5.0, next.Reward(), "The terminal recovered state should pay the banked reward")
	})
}

func TestRegistrySharing(t *testing.T) {
	t.Run("clones share the registry and its persisted planners by default", func(t *testing.T) {
		survey := newSurvey(40)

		once := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)
		planner := once.Registry().planners["vent"]
		require.NotNil(t, planner, "The first deploy should create the region's planner")

		twice := once.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.Same(t, survey.Registry(), twice.Registry(),
			"Every clone should hold the same registry handle")
		require.Same(t, planner, twice.Registry().planners["vent"],
			"Later deploys should reuse the persisted planner, never rebuild it")
	})

	t.Run("isolated clones get fresh planners", func(t *testing.T) {
		survey := newSurvey(40, WithIsolatedClones())

		next := survey.ExecuteAction(deployAt(0, 0)).(*SurveyState)

		require.NotSame(t, survey.Registry(), next.Registry(),
			"Isolation should give each clone its own registry")
		require.Empty(t, survey.Registry().planners,
			"The original registry should be untouched by the clone's deploy")
		require.Equal(t, 5.0, next.DeployReward(),
			"An isolated planner should still complete the nested mission")
	})

	t.Run("deploying in an unmapped region is a configuration fault", func(t *testing.T) {
		registry := NewRegistry(map[string]searcher.State{})
		g := NewGraph()
		g.AddLocation(0, 0, Coord{})
		g.AddPath(0, 0, 1)
		survey := NewSurveyState(g, 40, map[int]string{0: "abyss"}, registry)
		survey.AddAgent(0)

		require.Panics(t, func() {
			survey.ExecuteAction(deployAt(0, 0))
		}, "A region type without a nested mission should be rejected loudly")
	})
}
