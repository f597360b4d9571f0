package model

import (
	"time"
)

// EscrowBufferDays is the hold period between job completion and funds
// becoming withdrawable. A dispute opened inside this window blocks release.
const EscrowBufferDays = 7

// PendingEarning is a completed job's payment sitting in the escrow buffer.
type PendingEarning struct {
	TransactionID    string    `json:"transaction_id"`
	Amount           float64   `json:"amount"`
	JobID            string    `json:"job_id"`
	JobTitle         string    `json:"job_title,omitempty"`
	CompletedAt      time.Time `json:"completed_at"`
	ReleaseDate      time.Time `json:"release_date"`
	DaysUntilRelease int       `json:"days_until_release"`
	HasActiveBackjob bool      `json:"has_active_backjob"`
}

// Held reports whether the earning is blocked from release. An active
// backjob holds the earning regardless of elapsed buffer time, even when
// DaysUntilRelease has reached zero or gone negative.
func (e *PendingEarning) Held() bool {
	return e.HasActiveBackjob
}

// Releasable reports whether the buffer has elapsed with no dispute. The
// actual release decision is backend-owned; this only drives display state.
func (e *PendingEarning) Releasable() bool {
	return !e.HasActiveBackjob && e.DaysUntilRelease <= 0
}

// PendingEarnings is the backend response for the wallet pending view.
type PendingEarnings struct {
	Earnings     []PendingEarning `json:"earnings"`
	TotalPending float64          `json:"total_pending"`
	TotalCount   int              `json:"total_count"`
}
