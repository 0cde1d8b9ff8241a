package domain

import "time"

// AnchorStatus tracks where an anchor account sits in the sales cycle.
type AnchorStatus string

const (
	AnchorStatusLead     AnchorStatus = "LEAD"
	AnchorStatusActive   AnchorStatus = "ACTIVE"
	AnchorStatusInactive AnchorStatus = "INACTIVE"
)

// Anchor is a top-level company account.
type Anchor struct {
	ID             string
	Name           string
	Industry       string
	City           string
	State          string
	AnnualTurnover float64
	Status         AnchorStatus
	OwnerID        string
	ContactName    string
	ContactPhone   string
	LeadSource     string
	EmployeeCount  int
	CreatedAt      time.Time
}

// Location renders the anchor's city and state for display and prompts.
func (a Anchor) Location() string {
	switch {
	case a.City != "" && a.State != "":
		return a.City + ", " + a.State
	case a.City != "":
		return a.City
	default:
		return a.State
	}
}
