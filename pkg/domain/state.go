package domain

// Stage is the position of a single solve in the pipeline.
type Stage string

const (
	StageReceived   Stage = "received"
	StageAnalyzing  Stage = "analyzing"
	StageFallback   Stage = "fallback"  // Analysis failed, minimal prompt in flight
	StageComputing  Stage = "computing" // Symbolic math service in flight
	StageExplaining Stage = "explaining"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error" // Absorbing
)

// Terminal reports whether no further transitions leave the stage.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// Transition is an edge of the pipeline.
type Transition struct {
	From  Stage
	To    Stage
	Label string
}

// Transitions lists every edge a solve may take, in pipeline order.
func Transitions() []Transition {
	return []Transition{
		{From: StageReceived, To: StageAnalyzing},
		{From: StageReceived, To: StageError, Label: "empty problem"},
		{From: StageAnalyzing, To: StageComputing, Label: "symbolic math"},
		{From: StageAnalyzing, To: StageExplaining},
		{From: StageAnalyzing, To: StageFallback, Label: "provider or validation error"},
		{From: StageComputing, To: StageExplaining},
		{From: StageExplaining, To: StageCompleted},
		{From: StageFallback, To: StageCompleted},
		{From: StageFallback, To: StageError, Label: "fallback failed"},
	}
}
