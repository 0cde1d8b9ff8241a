package dto

import (
	"time"

	"github.com/spec-kit/sales-crm/internal/domain"
)

// AnchorResponse is the API view of an anchor account.
type AnchorResponse struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Industry       string              `json:"industry"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	AnnualTurnover float64             `json:"annual_turnover"`
	Status         domain.AnchorStatus `json:"status"`
	OwnerID        string              `json:"owner_id"`
	ContactName    string              `json:"contact_name,omitempty"`
	ContactPhone   string              `json:"contact_phone,omitempty"`
	LeadSource     string              `json:"lead_source,omitempty"`
	EmployeeCount  int                 `json:"employee_count,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// NewAnchorResponse maps an anchor.
func NewAnchorResponse(a domain.Anchor) AnchorResponse {
	return AnchorResponse{
		ID:             a.ID,
		Name:           a.Name,
		Industry:       a.Industry,
		City:           a.City,
		State:          a.State,
		AnnualTurnover: a.AnnualTurnover,
		Status:         a.Status,
		OwnerID:        a.OwnerID,
		ContactName:    a.ContactName,
		ContactPhone:   a.ContactPhone,
		LeadSource:     a.LeadSource,
		EmployeeCount:  a.EmployeeCount,
		CreatedAt:      a.CreatedAt,
	}
}

// SpokeResponse is the API view of a dealer or vendor.
type SpokeResponse struct {
	ID              string            `json:"id"`
	AnchorID        string            `json:"anchor_id"`
	Name            string            `json:"name"`
	Kind            domain.SpokeKind  `json:"kind"`
	ContactName     string            `json:"contact_name,omitempty"`
	ContactNumber   string            `json:"contact_number"`
	City            string            `json:"city"`
	BusinessType    string            `json:"business_type,omitempty"`
	MonthlyVolume   float64           `json:"monthly_volume"`
	YearsInBusiness int               `json:"years_in_business"`
	Stage           domain.SpokeStage `json:"stage"`
	AssignedTo      string            `json:"assigned_to"`
	Latitude        *float64          `json:"latitude,omitempty"`
	Longitude       *float64          `json:"longitude,omitempty"`
	Score           *float64          `json:"score,omitempty"`
	Priority        string            `json:"priority,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// NewSpokeResponse maps a spoke.
func NewSpokeResponse(s domain.Spoke) SpokeResponse {
	return SpokeResponse{
		ID:              s.ID,
		AnchorID:        s.AnchorID,
		Name:            s.Name,
		Kind:            s.Kind,
		ContactName:     s.ContactName,
		ContactNumber:   s.ContactNumber,
		City:            s.City,
		BusinessType:    s.BusinessType,
		MonthlyVolume:   s.MonthlyVolume,
		YearsInBusiness: s.YearsInBusiness,
		Stage:           s.Stage,
		AssignedTo:      s.AssignedTo,
		Latitude:        s.Latitude,
		Longitude:       s.Longitude,
		Score:           s.Score,
		Priority:        s.Priority,
		CreatedAt:       s.CreatedAt,
	}
}

// TaskResponse is the API view of a task.
type TaskResponse struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	RelatedType domain.EntityType   `json:"related_type"`
	RelatedID   string              `json:"related_id"`
	AssignedTo  string              `json:"assigned_to"`
	DueDate     time.Time           `json:"due_date"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	Overdue     bool                `json:"overdue"`
}

// NewTaskResponse maps a task, flagging it overdue relative to now.
func NewTaskResponse(t domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		RelatedType: t.RelatedType,
		RelatedID:   t.RelatedID,
		AssignedTo:  t.AssignedTo,
		DueDate:     t.DueDate,
		Status:      t.Status,
		Priority:    t.Priority,
		Overdue:     t.Overdue(now),
	}
}

// ActivityResponse is the API view of an activity.
type ActivityResponse struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	EntityType domain.EntityType   `json:"entity_type"`
	EntityID   string              `json:"entity_id"`
	Type       domain.ActivityType `json:"type"`
	Summary    string              `json:"summary"`
	Latitude   *float64            `json:"latitude,omitempty"`
	Longitude  *float64            `json:"longitude,omitempty"`
	Address    string              `json:"address,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// NewActivityResponse maps an activity.
func NewActivityResponse(a domain.Activity) ActivityResponse {
	return ActivityResponse{
		ID:         a.ID,
		UserID:     a.UserID,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		Type:       a.Type,
		Summary:    a.Summary,
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
		Address:    a.Address,
		CreatedAt:  a.CreatedAt,
	}
}

// CreateActivityRequest payload for POST /activities.
type CreateActivityRequest struct {
	EntityType string   `json:"entity_type"`
	EntityID   string   `json:"entity_id"`
	Type       string   `json:"type"`
	Summary    string   `json:"summary"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}
