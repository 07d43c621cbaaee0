package trace

import "github.com/google/uuid"

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every dispatch and page-access decision.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// Enabled reports whether level records anything.
func (l TraceLevel) Enabled() bool {
	return l == TraceLevelDecisions
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects decision records during one kernel run.
// RunID distinguishes traces taken across kernel re-initialisations.
type SimulationTrace struct {
	RunID      string
	Config     TraceConfig
	Dispatches []DispatchRecord
	Accesses   []AccessRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		RunID:      uuid.New().String(),
		Config:     config,
		Dispatches: make([]DispatchRecord, 0),
		Accesses:   make([]AccessRecord, 0),
	}
}

// RecordDispatch appends a scheduler state-change record.
func (st *SimulationTrace) RecordDispatch(record DispatchRecord) {
	st.Dispatches = append(st.Dispatches, record)
}

// RecordAccess appends a page-access record.
func (st *SimulationTrace) RecordAccess(record AccessRecord) {
	st.Accesses = append(st.Accesses, record)
}
