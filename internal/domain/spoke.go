package domain

import "time"

// SpokeKind distinguishes dealers from vendors attached to an anchor.
type SpokeKind string

const (
	SpokeKindDealer SpokeKind = "DEALER"
	SpokeKindVendor SpokeKind = "VENDOR"
)

// SpokeStage is the onboarding pipeline position of a spoke.
type SpokeStage string

const (
	SpokeStageLead       SpokeStage = "LEAD"
	SpokeStageQualified  SpokeStage = "QUALIFIED"
	SpokeStageOnboarding SpokeStage = "ONBOARDING"
	SpokeStageActive     SpokeStage = "ACTIVE"
	SpokeStageRejected   SpokeStage = "REJECTED"
)

// SpokeStages lists pipeline stages in order.
func SpokeStages() []SpokeStage {
	return []SpokeStage{SpokeStageLead, SpokeStageQualified, SpokeStageOnboarding, SpokeStageActive, SpokeStageRejected}
}

// Spoke is a dealer or vendor lead downstream of an anchor.
type Spoke struct {
	ID              string
	AnchorID        string
	Name            string
	Kind            SpokeKind
	ContactName     string
	ContactNumber   string
	City            string
	BusinessType    string
	MonthlyVolume   float64
	YearsInBusiness int
	Stage           SpokeStage
	AssignedTo      string
	Latitude        *float64
	Longitude       *float64
	Score           *float64
	Priority        string
	CreatedAt       time.Time
}
