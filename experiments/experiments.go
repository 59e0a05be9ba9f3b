// Package experiments runs planner benchmarks over generated grid missions
// and stores the results as CSV.
package experiments

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"expedition/engine"
	"expedition/experiments/metrics"
	"expedition/mission"
	"expedition/searcher"
)

const (
	NumMissions = 10 // Per planner config
	GridWidth   = 6
	GridHeight  = 6
	TimeBudget  = 12.0
)

var budgetConfigs = []metrics.PlannerConfig{
	{ID: 1, Samples: 100, MaxDepth: 15, Lookahead: 3},
	{ID: 2, Samples: 300, MaxDepth: 15, Lookahead: 3},
	{ID: 3, Samples: 1000, MaxDepth: 15, Lookahead: 3},
	{ID: 4, Samples: 3000, MaxDepth: 15, Lookahead: 3},
}

// RunSampleBudgetExperiment measures how the terminal mission reward scales
// with the per-search sample budget on a fixed grid mission.
func RunSampleBudgetExperiment() {
	runExperiment("sample_budget", budgetConfigs)
}

func runExperiment(name string, configs []metrics.PlannerConfig) {
	log.Info().Msgf("starting %s experiment...", name)

	count := 0
	missionRecords := []metrics.MissionRecord{}
	stepRecords := []metrics.StepRecord{}
	for ci, config := range configs {
		log.Info().Msgf("starting config %d of %d: %+v...", ci+1, len(configs), config)

		for i := 0; i < NumMissions; i++ {
			seed := config.Seed + uint64(i) + 1
			start := time.Now()
			reward, steps := runMission(config, seed)
			count++
			missionRecords = append(missionRecords, metrics.MissionRecord{
				ID:       count,
				Config:   config.ID,
				Reward:   reward,
				Steps:    len(steps),
				Duration: time.Since(start),
			})
			for _, step := range steps {
				stepRecords = append(stepRecords, metrics.StepRecord{
					Mission:      count,
					Step:         step.Step,
					Duration:     step.Search.Duration,
					Samples:      step.Search.Samples,
					RolloutSteps: step.Search.RolloutSteps,
				})
			}

			log.Info().Msgf("completed config %d of %d mission %d of %d with reward %.1f",
				ci+1, len(configs), i+1, NumMissions, reward)
		}
	}

	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(name)
	if err != nil {
		panic(fmt.Sprintf("failed to create experiment writer: %v", err))
	}

	err = writer.WritePlannerConfigs(configs)
	if err != nil {
		panic(fmt.Sprintf("failed to store planner configs: %v", err))
	}
	log.Info().Msg("stored planner configs")

	err = writer.WriteMissionRecords(missionRecords)
	if err != nil {
		panic(fmt.Sprintf("failed to store mission records: %v", err))
	}
	log.Info().Msg("stored mission records")

	err = writer.WriteStepRecords(stepRecords)
	if err != nil {
		panic(fmt.Sprintf("failed to store step records: %v", err))
	}
	log.Info().Msg("stored step records")
}

// runMission plans a single grid mission to completion and returns the
// terminal reward with per-step records.
func runMission(config metrics.PlannerConfig, seed uint64) (float64, []engine.StepRecord) {
	state := newGridMission()
	mcts := searcher.NewMCTS(state, config.Samples, config.MaxDepth,
		searcher.WithSeed(seed),
		searcher.WithMetrics(searcher.NewMetricsCollector()),
	)
	e := engine.LocalEngine(state, mcts, config.Lookahead)

	final, steps := e.Run()
	return final.Reward(), steps
}

// newGridMission builds the benchmark scenario: a grid with a high-value
// ridge along the diagonal and one agent starting in a corner.
func newGridMission() *mission.ExplorationState {
	graph := mission.GridGraph(GridWidth, GridHeight, 1.0, func(x, y int) float64 {
		if x == y {
			return float64(x + 1)
		}
		return 0
	})
	state := mission.NewExplorationState(graph, TimeBudget)
	state.AddAgent(0)
	return state
}
