package events

import (
	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// StepResults is the payload broadcast to subscribers after each evolution
// step: the step number, the spaces the step produced, and any extra events
// emitted while it ran.
type StepResults struct {
	Step           uint64   `json:"step"`
	Spaces         []string `json:"spaces"`
	Inert          bool     `json:"inert"`
	CausalDistance int      `json:"causalDistance"`
	Events         [][]byte `json:"events"`
}

func NewStepResults(initialStep uint64) *StepResults {
	return &StepResults{
		Step:   initialStep,
		Spaces: []string{},
		Events: [][]byte{},
	}
}

func (sr *StepResults) AddEvent(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return eris.Errorf("must use a json serializable type for emitting events: %v", err)
	}
	sr.Events = append(sr.Events, data)
	return nil
}

func (sr *StepResults) SetSpaces(spaces []string) {
	sr.Spaces = spaces
}

func (sr *StepResults) SetStep(step uint64) {
	sr.Step = step
}

func (sr *StepResults) Clear() {
	sr.Step = 0
	sr.Spaces = nil
	sr.Inert = false
	sr.CausalDistance = 0
	sr.Events = nil
}
