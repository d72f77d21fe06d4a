package httpx

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestIDHeader is the header used to correlate a request across logs
const RequestIDHeader = "X-Request-ID"

// Stage is one named step of a Pipeline. A non-nil error rejects the request;
// the stage is responsible for writing the rejection response first.
type Stage struct {
	Name string
	Run  func(x Exchange) error
}

// StageError reports which stage rejected a request
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Pipeline is an immutable ordered list of stages
type Pipeline struct {
	stages []Stage
}

// NewPipeline builds a pipeline running stages in the given order
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

// Then returns a new pipeline with extra stages appended
func (p *Pipeline) Then(stages ...Stage) *Pipeline {
	next := make([]Stage, 0, len(p.stages)+len(stages))
	next = append(next, p.stages...)
	next = append(next, stages...)
	return &Pipeline{stages: next}
}

// Names lists stage names in execution order
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Run executes the stages in order and stops at the first rejection
func (p *Pipeline) Run(x Exchange) error {
	for _, s := range p.stages {
		if err := s.Run(x); err != nil {
			return &StageError{Stage: s.Name, Err: err}
		}
	}
	return nil
}

// RequestID returns a stage that stores the caller's X-Request-ID, or a fresh
// uuid, in the request context.
func RequestID() Stage {
	return Stage{
		Name: "request-id",
		Run: func(x Exchange) error {
			if _, ok := GetRequestID(x.Context()); ok {
				return nil
			}
			id := x.Header(RequestIDHeader)
			if id == "" {
				id = uuid.New().String()
			}
			x.SetContext(WithRequestID(x.Context(), id))
			return nil
		},
	}
}
