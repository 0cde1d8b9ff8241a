package domain

import "time"

// EntityType names the CRM record an activity or task refers to.
type EntityType string

const (
	EntityAnchor EntityType = "ANCHOR"
	EntitySpoke  EntityType = "SPOKE"
)

// ActivityType classifies activity log entries.
type ActivityType string

const (
	ActivityCall      ActivityType = "CALL"
	ActivityVisit     ActivityType = "VISIT"
	ActivityMeeting   ActivityType = "MEETING"
	ActivityEmail     ActivityType = "EMAIL"
	ActivityNote      ActivityType = "NOTE"
	ActivityAIInsight ActivityType = "AI_INSIGHT"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityCall, ActivityVisit, ActivityMeeting, ActivityEmail, ActivityNote, ActivityAIInsight:
		return true
	}
	return false
}

// Activity is an immutable log entry recorded by a user against a CRM record.
type Activity struct {
	ID         string
	UserID     string
	EntityType EntityType
	EntityID   string
	Type       ActivityType
	Summary    string
	Latitude   *float64
	Longitude  *float64
	Address    string
	CreatedAt  time.Time
}
