package bridge

// Transition is a host lifecycle transition.
type Transition int

const (
	Create Transition = iota
	Start
	Resume
	Pause
	Stop
	Destroy
	SaveState
	RestoreState
)

// MakeUISymbol is the build-UI callback name.
const MakeUISymbol = "makeUi"

var transitionSymbols = [...]string{
	Create:       "onCreate",
	Start:        "onStart",
	Resume:       "onResume",
	Pause:        "onPause",
	Stop:         "onStop",
	Destroy:      "onDestroy",
	SaveState:    "onSaveInstanceState",
	RestoreState: "onRestoreInstanceState",
}

var transitionNames = [...]string{
	Create:       "create",
	Start:        "start",
	Resume:       "resume",
	Pause:        "pause",
	Stop:         "stop",
	Destroy:      "destroy",
	SaveState:    "save-state",
	RestoreState: "restore-state",
}

// Symbol returns the callback name bound to the transition.
func (t Transition) Symbol() string {
	if t < 0 || int(t) >= len(transitionSymbols) {
		return ""
	}
	return transitionSymbols[t]
}

// String returns the string representation of the transition
func (t Transition) String() string {
	if t < 0 || int(t) >= len(transitionNames) {
		return "unknown"
	}
	return transitionNames[t]
}

// carriesState reports whether the callback receives the state container.
func (t Transition) carriesState() bool {
	return t == Create || t == SaveState || t == RestoreState
}
