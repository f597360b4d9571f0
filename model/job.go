package model

import (
	"time"
)

// Job status constants
const (
	JobStatusPosted     = "POSTED"
	JobStatusActive     = "ACTIVE"
	JobStatusInProgress = "IN_PROGRESS"
	JobStatusCompleted  = "COMPLETED"
	JobStatusCancelled  = "CANCELLED"
)

// Job urgency constants
const (
	UrgencyLow    = "LOW"
	UrgencyMedium = "MEDIUM"
	UrgencyHigh   = "HIGH"
)

// Job represents a posted piece of work. The backend owns every field; the
// gateway holds invalidate-on-demand copies only.
type Job struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
	Urgency     string  `json:"urgency"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`

	// Workflow flags mirror the completion handshake between both sides.
	ClientConfirmedWorkStarted bool `json:"client_confirmed_work_started"`
	WorkerMarkedComplete       bool `json:"worker_marked_complete"`
	ClientMarkedComplete       bool `json:"client_marked_complete"`

	AssignedWorkerID string   `json:"assigned_worker_id,omitempty"`
	CompletionPhotos []string `json:"completion_photos,omitempty"`
	CompletionNotes  string   `json:"completion_notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether the job has reached a final state. Terminal
// jobs are never locally transitioned back to an active state; only a fresh
// server response may do that.
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusCancelled
}

// Category is a job category as listed by the backend.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	JobCount int    `json:"job_count,omitempty"`
}

// CategoryList is the backend response shape for the categories endpoint.
type CategoryList struct {
	Categories []Category `json:"categories"`
	TotalCount int        `json:"total_count"`
}
