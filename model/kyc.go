package model

import (
	"time"
)

// KYC status constants
const (
	KYCNotSubmitted = "NOT_SUBMITTED"
	KYCPending      = "PENDING"
	KYCApproved     = "APPROVED"
	KYCRejected     = "REJECTED"
)

// KYC document type constants
const (
	DocumentSelfie       = "SELFIE"
	DocumentGovernmentID = "GOVERNMENT_ID"
)

// KYCDocument describes one uploaded verification document.
type KYCDocument struct {
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// KYCRecord is the account's verification state. Review is manual and
// backend-owned; the gateway only uploads documents and forwards submission.
type KYCRecord struct {
	Status    string        `json:"status"`
	Documents []KYCDocument `json:"documents"`
	Notes     string        `json:"notes,omitempty"`
}

// Complete reports whether the required document set is present: a selfie
// and at least one government ID. This is a UX convenience; the backend
// re-validates authoritatively on submission.
func (r *KYCRecord) Complete() bool {
	var hasSelfie, hasGovID bool
	for _, d := range r.Documents {
		switch d.Type {
		case DocumentSelfie:
			hasSelfie = true
		case DocumentGovernmentID:
			hasGovID = true
		}
	}
	return hasSelfie && hasGovID
}
