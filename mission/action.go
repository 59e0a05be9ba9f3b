package mission

import "fmt"

// DeployDuration is the fixed nominal duration of a deploy action.
const DeployDuration = 10.0

// Action is one agent decision: move along a path, or (for hierarchical
// missions) deploy in place. Actions are comparable values so the searcher
// can key tree children by them.
type Action struct {
	Agent    int
	From     int
	To       int
	Duration float64
	Deploy   bool
}

func (a Action) String() string {
	if a.Deploy {
		return fmt.Sprintf("agent %d deploys at location %d for time %v",
			a.Agent, a.From, a.Duration)
	}
	return fmt.Sprintf("agent %d moves from location %d to location %d in time %v",
		a.Agent, a.From, a.To, a.Duration)
}
