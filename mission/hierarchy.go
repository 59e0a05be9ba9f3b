package mission

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"expedition/searcher"
)

// Subplanner defaults, matching the nested search budget of the original
// mission configuration.
const (
	DefaultSubplannerSamples  = 100
	DefaultSubplannerMaxDepth = 1000
)

// Registry holds one persisted sub-planner per region type, created lazily
// on the first deploy of that type and reused - never rebuilt - across every
// subsequent deploy for the life of the mission.
//
// The registry is shared by reference across every outer state clone by
// default: a sub-planner's visit/reward statistics mutate in place no matter
// which outer search branch triggered the resumption. This deliberately
// trades per-branch independence for amortized nested-search cost.
// WithIsolatedClones switches the policy, giving each outer clone a registry
// whose planners start fresh.
type Registry struct {
	missions map[string]searcher.State
	samples  int
	maxDepth int
	options  []searcher.Option
	isolate  bool
	planners map[string]*searcher.MCTS
}

type RegistryOption func(r *Registry)

// WithSubplannerBudget overrides the sample budget and maximum tree depth of
// every nested planner.
func WithSubplannerBudget(samples, maxDepth int) RegistryOption {
	return func(r *Registry) {
		if samples > 0 {
			r.samples = samples
		}
		if maxDepth > 1 {
			r.maxDepth = maxDepth
		}
	}
}

// WithSubplannerOptions forwards searcher options (seed, exploration,
// metrics) to every nested planner.
func WithSubplannerOptions(options ...searcher.Option) RegistryOption {
	return func(r *Registry) {
		r.options = append(r.options, options...)
	}
}

// WithIsolatedClones gives every outer state clone its own registry with
// fresh planners, restoring per-branch independence at the cost of
// re-planning each nested mission from scratch.
func WithIsolatedClones() RegistryOption {
	return func(r *Registry) {
		r.isolate = true
	}
}

// NewRegistry creates a registry over the initial nested mission state of
// each region type.
func NewRegistry(missions map[string]searcher.State, options ...RegistryOption) *Registry {
	r := &Registry{
		missions: missions,
		samples:  DefaultSubplannerSamples,
		maxDepth: DefaultSubplannerMaxDepth,
		planners: make(map[string]*searcher.MCTS),
	}
	for _, option := range options {
		option(r)
	}
	return r
}

func (r *Registry) clone() *Registry {
	if !r.isolate {
		return r
	}
	return &Registry{
		missions: r.missions,
		samples:  r.samples,
		maxDepth: r.maxDepth,
		options:  r.options,
		isolate:  true,
		planners: make(map[string]*searcher.MCTS),
	}
}

// Resume drives the region's persisted sub-planner forward one decision at a
// time - best action at lookahead depth 1, applied to the nested state the
// planner tracks at its root - until the nested mission terminates, then
// reverts the planner to its top root for the next resumption and returns
// the nested terminal reward. Statistics accumulated by earlier resumptions
// persist and bias this one.
func (r *Registry) Resume(region string) float64 {
	planner, ok := r.planners[region]
	if !ok {
		initial, exists := r.missions[region]
		if !exists {
			panic(fmt.Sprintf("mission: no nested mission for region type %q", region))
		}
		planner = searcher.NewMCTS(initial, r.samples, r.maxDepth, r.options...)
		r.planners[region] = planner
	}

	steps := 0
	state := planner.RootState()
	for !state.IsTerminal() {
		actions := planner.Search(1)
		if len(actions) == 0 {
			break
		}
		planner.UpdateRoot(actions[0])
		state = planner.RootState()
		steps++
	}
	resumed := planner.RevertToTopRoot()
	reward := resumed.Reward()
	log.Debug().
		Str("region", region).
		Int("steps", steps).
		Float64("reward", reward).
		Msg("nested mission resumed")
	return reward
}

// SurveyState extends the flat exploration state with a region-typed deploy
// action. Completing a deploy resumes the region's persisted sub-planner and
// accumulates the nested terminal reward exactly once per distinct location.
type SurveyState struct {
	ExplorationState
	regionTypes     map[int]string
	registry        *Registry
	deployHistories [][]int
	deployReward    float64
}

// NewSurveyState creates a hierarchical state over graph. regionTypes maps
// each location to the region type whose nested mission a deploy there runs;
// registry holds the persisted sub-planners.
func NewSurveyState(graph *Graph, timeRemains float64, regionTypes map[int]string, registry *Registry) *SurveyState {
	return &SurveyState{
		ExplorationState: *NewExplorationState(graph, timeRemains),
		regionTypes:      regionTypes,
		registry:         registry,
	}
}

// AddAgent places an agent at a location with an empty deploy history.
func (s *SurveyState) AddAgent(location int) {
	s.ExplorationState.AddAgent(location)
	s.deployHistories = append(s.deployHistories, nil)
}

func (s *SurveyState) clone() *SurveyState {
	deployHistories := make([][]int, len(s.deployHistories))
	for i, history := range s.deployHistories {
		deployHistories[i] = append([]int(nil), history...)
	}
	return &SurveyState{
		ExplorationState: *s.ExplorationState.clone(),
		regionTypes:      s.regionTypes,
		registry:         s.registry.clone(),
		deployHistories:  deployHistories,
		deployReward:     s.deployReward,
	}
}

// PossibleActions appends exactly one self-loop deploy action, with the
// fixed nominal duration, to the pending agent's movement actions.
func (s *SurveyState) PossibleActions() []searcher.Action {
	if s.IsTerminal() {
		return nil
	}
	actions := s.ExplorationState.PossibleActions()
	from := s.statuses[s.pending].From
	return append(actions, Action{
		Agent:    s.pending,
		From:     from,
		To:       from,
		Duration: DeployDuration,
		Deploy:   true,
	})
}

// ExecuteAction applies action to a clone and completes one event. When the
// completed action is a deploy, the region's persisted sub-planner is
// resumed and its terminal reward added to the deploy accumulator - once per
// distinct location, so deploying twice at the same place never
// double-counts.
func (s *SurveyState) ExecuteAction(action searcher.Action) searcher.State {
	a := action.(Action)
	next := s.clone()
	next.statuses[a.Agent] = Status{From: a.From, To: a.To, Remaining: a.Duration, Deploy: a.Deploy}
	agent, destination, elapsed, deploy, done := next.evolve()
	if done && deploy && elapsed != 0 {
		reward := next.registry.Resume(next.regionTypes[destination])
		if !next.Deployed()[destination] {
			next.deployReward += reward
		}
		next.deployHistories[agent] = append(next.deployHistories[agent], destination)
	}
	return next
}

// Reward is 0 for a non-terminal or non-recovered state; otherwise it is the
// accumulated deploy reward.
func (s *SurveyState) Reward() float64 {
	if !s.IsTerminal() || !s.IsRecovered() {
		return 0
	}
	return s.deployReward
}

// Deployed is the set of locations any agent has deployed at.
func (s *SurveyState) Deployed() map[int]bool {
	deployed := make(map[int]bool)
	for _, history := range s.deployHistories {
		for _, location := range history {
			deployed[location] = true
		}
	}
	return deployed
}

// DeployHistories returns each agent's ordered sequence of deploy locations.
func (s *SurveyState) DeployHistories() [][]int {
	histories := make([][]int, len(s.deployHistories))
	for i, history := range s.deployHistories {
		histories[i] = append([]int(nil), history...)
	}
	return histories
}

// DeployReward is the accumulated nested-mission reward so far.
func (s *SurveyState) DeployReward() float64 { return s.deployReward }

// RegionTypes exposes the location-to-region-type map.
func (s *SurveyState) RegionTypes() map[int]string { return s.regionTypes }

// Registry exposes the persisted sub-planner registry handle. Cloning a
// survey state clones the handle, not the planners it points to, unless the
// registry was built with WithIsolatedClones.
func (s *SurveyState) Registry() *Registry { return s.registry }
