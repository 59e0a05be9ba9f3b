package searcher

import "fmt"

// DefaultExploration is the exploration constant c in the UCB1 score.
const DefaultExploration = 1.0

// Action is one agent decision. Implementations must be comparable values:
// the search tree keys children by the action that produced them.
type Action interface {
	fmt.Stringer
}

// State is one planning snapshot. States are immutable by contract -
// ExecuteAction never mutates the receiver, it returns the successor state.
// PossibleActions must be non-empty unless the state is terminal.
type State interface {
	Reward() float64
	IsTerminal() bool
	PossibleActions() []Action
	ExecuteAction(Action) State
}
