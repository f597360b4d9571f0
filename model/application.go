package model

import (
	"time"
)

// Application status constants
const (
	ApplicationPending   = "PENDING"
	ApplicationAccepted  = "ACCEPTED"
	ApplicationRejected  = "REJECTED"
	ApplicationWithdrawn = "WITHDRAWN"
)

// Application is a worker's application to a job. The backend enforces at
// most one non-withdrawn application per (job, worker) pair; the gateway
// must not assume otherwise.
type Application struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	WorkerID  string    `json:"worker_id"`
	Status    string    `json:"status"`
	AppliedAt time.Time `json:"applied_at"`

	WorkerName   string  `json:"worker_name,omitempty"`
	WorkerRating float64 `json:"worker_rating,omitempty"`
}

// JobApplications is the backend response for a client viewing the
// applications on one of their jobs.
type JobApplications struct {
	Applications        []Application `json:"applications"`
	JobTitle            string        `json:"job_title"`
	EstimatedCompletion string        `json:"estimated_completion"`
}
