package engine

// Phase is one state of world generation.
type Phase uint8

const (
	PhaseSeedPlates Phase = iota
	PhaseGenPlates
	PhaseFinishedPlates
	PhaseAssignPlateBoundaries
	PhaseFinishedPlateBoundaries
	PhaseGenContinents
	PhaseFinishedContinents
	PhaseGenPlateVelocities
	PhaseJustChill
	PhaseFinished
)

var phaseNames = [...]string{
	PhaseSeedPlates:              "SeedPlates",
	PhaseGenPlates:               "GenPlates",
	PhaseFinishedPlates:          "FinishedPlates",
	PhaseAssignPlateBoundaries:   "AssignPlateBoundaries",
	PhaseFinishedPlateBoundaries: "FinishedPlateBoundaries",
	PhaseGenContinents:           "GenContinents",
	PhaseFinishedContinents:      "FinishedContinents",
	PhaseGenPlateVelocities:      "GenPlateVelocities",
	PhaseJustChill:               "JustChill",
	PhaseFinished:                "Finished",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// AwaitsConfirm reports whether the phase holds until a confirm signal.
func (p Phase) AwaitsConfirm() bool {
	switch p {
	case PhaseFinishedPlates, PhaseFinishedPlateBoundaries, PhaseFinishedContinents, PhaseJustChill:
		return true
	}
	return false
}

// AcceptsReset reports whether a reset signal is honoured in this phase.
func (p Phase) AcceptsReset() bool {
	return p == PhaseFinishedContinents
}

// Prompt is the on-screen hint for the phase.
func (p Phase) Prompt() string {
	switch p {
	case PhaseSeedPlates, PhaseGenPlates:
		return "Growing plates..."
	case PhaseFinishedPlates:
		return "Press space to continue to plate boundaries"
	case PhaseAssignPlateBoundaries:
		return "Tracing plate boundaries..."
	case PhaseFinishedPlateBoundaries:
		return "Press space to continue to generating continents"
	case PhaseGenContinents:
		return "Generating continents..."
	case PhaseFinishedContinents:
		return "Press space to continue to generating plate velocities\nPress R to re-generate continents"
	case PhaseGenPlateVelocities:
		return "Generating plate velocities..."
	case PhaseJustChill:
		return "Press space to finish world generation"
	default:
		return "World generation finished"
	}
}
