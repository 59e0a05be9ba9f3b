package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"expedition/engine"
	"expedition/experiments"
	"expedition/mission"
	"expedition/observability"
	"expedition/searcher"
)

type planFlags struct {
	missionFile string
	timeBudget  float64
	samples     int
	maxDepth    int
	lookahead   int
	seed        uint64
	exploration float64
	terminals   []int
	metricsAddr string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	root := &cobra.Command{
		Use:   "expedition",
		Short: "MCTS mission planner for multi-agent graph exploration",
	}

	var debug bool
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if debug {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}
	}

	root.AddCommand(newPlanCommand(), newExperimentCommand())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newPlanCommand() *cobra.Command {
	flags := planFlags{}
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a mission to completion and report the terminal reward",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(flags)
		},
	}
	cmd.Flags().StringVar(&flags.missionFile, "mission", "", "mission file (.json, .yaml); a demo grid mission when omitted")
	cmd.Flags().Float64Var(&flags.timeBudget, "time", 12.0, "shared mission time budget")
	cmd.Flags().IntVar(&flags.samples, "samples", 1000, "sampling rounds per search")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", 15, "maximum search tree depth")
	cmd.Flags().IntVar(&flags.lookahead, "lookahead", 3, "actions requested per search")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (time-based when 0)")
	cmd.Flags().Float64Var(&flags.exploration, "exploration", searcher.DefaultExploration, "UCB1 exploration constant")
	cmd.Flags().IntSliceVar(&flags.terminals, "terminal", nil, "locations every agent must end at for reward to count")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled when empty)")
	return cmd
}

func newExperimentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "experiment",
		Short: "Run the sample-budget benchmark and store CSV results",
		Run: func(cmd *cobra.Command, args []string) {
			experiments.RunSampleBudgetExperiment()
		},
	}
}

func runPlan(flags planFlags) error {
	state, err := loadState(flags)
	if err != nil {
		return err
	}

	options := []searcher.Option{searcher.WithExploration(flags.exploration)}
	if flags.seed != 0 {
		options = append(options, searcher.WithSeed(flags.seed))
	}
	if flags.metricsAddr != "" {
		collector, err := observability.NewSearchCollector(nil)
		if err != nil {
			return err
		}
		options = append(options, searcher.WithMetrics(collector))
		go func() {
			if err := http.ListenAndServe(flags.metricsAddr, collector.Handler()); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		log.Info().Str("addr", flags.metricsAddr).Msg("serving Prometheus metrics")
	} else {
		options = append(options, searcher.WithMetrics(searcher.NewMetricsCollector()))
	}

	mcts := searcher.NewMCTS(state, flags.samples, flags.maxDepth, options...)
	e := engine.LocalEngine(state, mcts, flags.lookahead)
	final, steps := e.Run()

	fmt.Printf("mission complete: %d steps, terminal reward %.2f\n", len(steps), final.Reward())
	if s, ok := final.(*mission.ExplorationState); ok {
		for i, history := range s.Histories() {
			fmt.Printf("agent %d history: %v\n", i, history)
		}
		fmt.Printf("time remaining: %.2f\n", s.TimeRemains())
	}
	return nil
}

func loadState(flags planFlags) (*mission.ExplorationState, error) {
	if flags.missionFile == "" {
		graph := mission.GridGraph(6, 6, 1.0, func(x, y int) float64 {
			if x == y {
				return float64(x + 1)
			}
			return 0
		})
		state := mission.NewExplorationState(graph, flags.timeBudget)
		state.AddAgent(0)
		return state, nil
	}

	f, err := os.Open(flags.missionFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open mission file: %w", err)
	}
	defer f.Close()

	var graph *mission.Graph
	var agents []int
	switch strings.ToLower(filepath.Ext(flags.missionFile)) {
	case ".yaml", ".yml":
		graph, agents, err = mission.DecodeYAMLMission(f)
	default:
		graph, agents, err = mission.DecodeJSONMission(f)
	}
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, fmt.Errorf("mission %s places no agents", flags.missionFile)
	}

	state := mission.NewExplorationState(graph, flags.timeBudget)
	for _, location := range agents {
		state.AddAgent(location)
	}
	for _, location := range flags.terminals {
		if _, ok := graph.Location(location); !ok {
			return nil, fmt.Errorf("terminal location %d is not in the mission", location)
		}
		state.MarkTerminal(location)
	}
	return state, nil
}
