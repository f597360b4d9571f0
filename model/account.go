package model

// Profile type constants
const (
	ProfileClient = "CLIENT"
	ProfileWorker = "WORKER"
	ProfileAgency = "AGENCY"
)

// Account is the authenticated identity as the backend reports it.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	ProfileType string `json:"profile_type"`
	Verified    bool   `json:"verified"`
}

// DashboardPath returns the role-specific dashboard route for a profile
// type, or empty when the role is unknown and a role selection is needed.
func DashboardPath(profileType string) string {
	switch profileType {
	case ProfileWorker:
		return "/dashboard/worker"
	case ProfileClient:
		return "/dashboard/client"
	case ProfileAgency:
		return "/dashboard/agency"
	default:
		return ""
	}
}
