package engine

import (
	"github.com/rs/zerolog/log"

	"expedition/searcher"
)

// StepRecord captures one decision of the outer plan/act loop.
type StepRecord struct {
	Step   int
	Action searcher.Action
	Search searcher.SearchMetrics
}

// Engine owns the outer mission loop: ask the searcher for a best sequence,
// execute the first action, advance the persisted root, repeat until the
// state is terminal.
type Engine struct {
	State     searcher.State
	Searcher  *searcher.MCTS
	Lookahead int
}

// LocalEngine wires an initial state to its searcher. It panics on a missing
// collaborator or a lookahead below 1.
func LocalEngine(initial searcher.State, mcts *searcher.MCTS, lookahead int) *Engine {
	if initial == nil {
		panic("engine: initial state is required")
	}
	if mcts == nil {
		panic("engine: searcher is required")
	}
	if lookahead < 1 {
		panic("engine: lookahead must be at least 1")
	}
	return &Engine{
		State:     initial,
		Searcher:  mcts,
		Lookahead: lookahead,
	}
}

// Run executes the mission to completion and returns the terminal state
// together with per-step records. A search that returns no actions ends the
// run early; callers read the outcome off the returned state.
func (e *Engine) Run() (searcher.State, []StepRecord) {
	var records []StepRecord
	step := 1
	for !e.State.IsTerminal() {
		sequence := e.Searcher.Search(e.Lookahead)
		if len(sequence) == 0 {
			log.Warn().Int("step", step).Msg("search returned no actions, stopping early")
			break
		}
		action := sequence[0]
		e.State = e.State.ExecuteAction(action)
		e.Searcher.UpdateRoot(action)
		records = append(records, StepRecord{
			Step:   step,
			Action: action,
			Search: e.Searcher.LastSearchMetrics(),
		})
		log.Info().
			Int("step", step).
			Stringer("action", action).
			Msg("executed action")
		step++
	}
	return e.State, records
}
