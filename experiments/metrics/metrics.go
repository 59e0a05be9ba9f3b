package metrics

import "time"

// PlannerConfig identifies one searcher configuration under test.
type PlannerConfig struct {
	ID        int
	Samples   int
	MaxDepth  int
	Lookahead int
	Seed      uint64
}

// MissionRecord summarizes one completed mission run.
type MissionRecord struct {
	ID       int
	Config   int // PlannerConfig.ID
	Reward   float64
	Steps    int
	Duration time.Duration
}

// StepRecord captures the search metrics behind one executed action.
type StepRecord struct {
	Mission      int // MissionRecord.ID
	Step         int
	Duration     time.Duration
	Samples      int64
	RolloutSteps int64
}
