package lifecycle

import "fmt"

// State is the lifecycle state of the server subprocess.
type State int

const (
	NotStarted State = iota
	Building
	Built
	Starting
	Live
	Unreachable
	Stopping
	Stopped
	Failed
)

var stateNames = map[State]string{
	NotStarted:  "NotStarted",
	Building:    "Building",
	Built:       "Built",
	Starting:    "Starting",
	Live:        "Live",
	Unreachable: "Unreachable",
	Stopping:    "Stopping",
	Stopped:     "Stopped",
	Failed:      "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Stopped || s == Failed
}

// transitions lists the forward moves. Failed is additionally reachable from every
// non-terminal state.
var transitions = map[State][]State{
	NotStarted:  {Building},
	Building:    {Built},
	Built:       {Starting},
	Starting:    {Live, Unreachable, Stopping},
	Live:        {Stopping},
	Unreachable: {Stopping},
	Stopping:    {Stopped},
}

// CanTransition reports whether the state machine allows moving from one state to another.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == Failed {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ProcessHandle identifies the server subprocess and its current state. ID is zero until the
// process has been launched.
type ProcessHandle struct {
	ID    int
	State State
}

func (h ProcessHandle) String() string {
	if h.ID == 0 {
		return h.State.String()
	}
	return fmt.Sprintf("pid %d (%s)", h.ID, h.State)
}
