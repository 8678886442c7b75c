package runs

import (
	"github.com/google/uuid"
)

type State string

const (
	Queued  State = "Queued"
	Running State = "Running"
	Done    State = "Done"
	Error   State = "Error"
)

// PipelineRequest tracks one requested pipeline run from queueing
// through completion.
type PipelineRequest struct {
	Id          uuid.UUID `json:"id"`
	Source      string    `json:"source"` // input directory or explicit file list tag
	State       State     `json:"state"`
	Message     string    `json:"message"`
	SampleCount int       `json:"sampleCount"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}
