package domain

import "time"

// JobStatus is the cloning-job state machine. Terminal states are final;
// a failed job is only retried by operator resubmission.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobStep names one resumable step of the cloning pipeline. Step outputs are
// persisted so a failure in step N resumes without re-running steps 1..N-1.
type JobStep string

const (
	StepScrape   JobStep = "scrape"
	StepGenerate JobStep = "generate"
	StepRehost   JobStep = "rehost"
	StepPersist  JobStep = "persist"
)

// CloningJob converts an external page into this site's landing-page schema.
type CloningJob struct {
	ID                string     `json:"id"`
	SourceURL         string     `json:"source_url"`
	CustomInstruction string     `json:"custom_instruction"`
	AgentID           string     `json:"agent_id"`
	Status            JobStatus  `json:"status"`
	Error             string     `json:"error,omitempty"`
	PageID            string     `json:"page_id,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}
