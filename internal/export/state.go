package export

import "fmt"

// State is the orchestrator's position in one export run. Transitions only
// move forward; Failed is reachable from anywhere on a configuration-class
// error.
type State string

const (
	StateIdle                 State = "idle"
	StateValidatingParams     State = "validating_params"
	StatePreparingOutput      State = "preparing_output"
	StateRenderingStaticPages State = "rendering_static_pages"
	StateProcessingGroups     State = "processing_groups"
	StateDone                 State = "done"
	StateFailed               State = "failed"
)

// order assigns each forward state its position; Failed sits outside.
var order = map[State]int{
	StateIdle:                 0,
	StateValidatingParams:     1,
	StatePreparingOutput:      2,
	StateRenderingStaticPages: 3,
	StateProcessingGroups:     4,
	StateDone:                 5,
}

// advance moves the orchestrator to next, rejecting backwards transitions.
func (o *Orchestrator) advance(next State) error {
	if next == StateFailed {
		o.state = StateFailed
		return nil
	}
	from, okFrom := order[o.state]
	to, okTo := order[next]
	if !okFrom || !okTo || to < from {
		return fmt.Errorf("invalid state transition %s -> %s", o.state, next)
	}
	o.state = next
	return nil
}

// State returns the orchestrator's current state.
func (o *Orchestrator) State() State {
	return o.state
}
