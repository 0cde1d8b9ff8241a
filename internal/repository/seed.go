package repository

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spec-kit/sales-crm/internal/auth"
	"github.com/spec-kit/sales-crm/internal/domain"
)

// Seed is the mock CRM dataset the service boots from when no database is configured.
type Seed struct {
	Users      []domain.User
	Anchors    []domain.Anchor
	Spokes     []domain.Spoke
	Tasks      []domain.Task
	Activities []domain.Activity
}

type seedFile struct {
	Users []struct {
		ID           string `yaml:"id"`
		Name         string `yaml:"name"`
		Email        string `yaml:"email"`
		Phone        string `yaml:"phone"`
		Role         string `yaml:"role"`
		ReportsTo    string `yaml:"reports_to"`
		Region       string `yaml:"region"`
		Password     string `yaml:"password"`
		PasswordHash string `yaml:"password_hash"`
		Inactive     bool   `yaml:"inactive"`
	} `yaml:"users"`
	Anchors []struct {
		ID             string    `yaml:"id"`
		Name           string    `yaml:"name"`
		Industry       string    `yaml:"industry"`
		City           string    `yaml:"city"`
		State          string    `yaml:"state"`
		AnnualTurnover float64   `yaml:"annual_turnover"`
		Status         string    `yaml:"status"`
		Owner          string    `yaml:"owner"`
		ContactName    string    `yaml:"contact_name"`
		ContactPhone   string    `yaml:"contact_phone"`
		LeadSource     string    `yaml:"lead_source"`
		EmployeeCount  int       `yaml:"employee_count"`
		CreatedAt      time.Time `yaml:"created_at"`
	} `yaml:"anchors"`
	Spokes []struct {
		ID              string    `yaml:"id"`
		Anchor          string    `yaml:"anchor"`
		Name            string    `yaml:"name"`
		Kind            string    `yaml:"kind"`
		ContactName     string    `yaml:"contact_name"`
		ContactNumber   string    `yaml:"contact_number"`
		City            string    `yaml:"city"`
		BusinessType    string    `yaml:"business_type"`
		MonthlyVolume   float64   `yaml:"monthly_volume"`
		YearsInBusiness int       `yaml:"years_in_business"`
		Stage           string    `yaml:"stage"`
		AssignedTo      string    `yaml:"assigned_to"`
		Latitude        *float64  `yaml:"latitude"`
		Longitude       *float64  `yaml:"longitude"`
		CreatedAt       time.Time `yaml:"created_at"`
	} `yaml:"spokes"`
	Tasks []struct {
		ID          string    `yaml:"id"`
		Title       string    `yaml:"title"`
		Description string    `yaml:"description"`
		RelatedType string    `yaml:"related_type"`
		RelatedID   string    `yaml:"related_id"`
		AssignedTo  string    `yaml:"assigned_to"`
		Due         time.Time `yaml:"due"`
		Status      string    `yaml:"status"`
		Priority    string    `yaml:"priority"`
		CreatedAt   time.Time `yaml:"created_at"`
	} `yaml:"tasks"`
	Activities []struct {
		ID         string    `yaml:"id"`
		User       string    `yaml:"user"`
		EntityType string    `yaml:"entity_type"`
		EntityID   string    `yaml:"entity_id"`
		Type       string    `yaml:"type"`
		Summary    string    `yaml:"summary"`
		Address    string    `yaml:"address"`
		CreatedAt  time.Time `yaml:"created_at"`
	} `yaml:"activities"`
}

// LoadSeed reads mock data from a YAML file.
func LoadSeed(path string, bcryptCost int) (*Seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	return ParseSeed(raw, bcryptCost)
}

// ParseSeed decodes mock data, hashing plaintext development passwords.
func ParseSeed(raw []byte, bcryptCost int) (*Seed, error) {
	var file seedFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	seed := &Seed{}
	for _, u := range file.Users {
		hash := u.PasswordHash
		if hash == "" && u.Password != "" {
			hashed, err := auth.HashPassword(u.Password, bcryptCost)
			if err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", u.ID, err)
			}
			hash = hashed
		}
		seed.Users = append(seed.Users, domain.User{
			ID:           u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Phone:        u.Phone,
			Role:         domain.Role(u.Role),
			ReportsTo:    u.ReportsTo,
			Region:       u.Region,
			PasswordHash: hash,
			Active:       !u.Inactive,
		})
	}
	for _, a := range file.Anchors {
		seed.Anchors = append(seed.Anchors, domain.Anchor{
			ID:             a.ID,
			Name:           a.Name,
			Industry:       a.Industry,
			City:           a.City,
			State:          a.State,
			AnnualTurnover: a.AnnualTurnover,
			Status:         domain.AnchorStatus(a.Status),
			OwnerID:        a.Owner,
			ContactName:    a.ContactName,
			ContactPhone:   a.ContactPhone,
			LeadSource:     a.LeadSource,
			EmployeeCount:  a.EmployeeCount,
			CreatedAt:      a.CreatedAt,
		})
	}
	for _, s := range file.Spokes {
		seed.Spokes = append(seed.Spokes, domain.Spoke{
			ID:              s.ID,
			AnchorID:        s.Anchor,
			Name:            s.Name,
			Kind:            domain.SpokeKind(s.Kind),
			ContactName:     s.ContactName,
			ContactNumber:   s.ContactNumber,
			City:            s.City,
			BusinessType:    s.BusinessType,
			MonthlyVolume:   s.MonthlyVolume,
			YearsInBusiness: s.YearsInBusiness,
			Stage:           domain.SpokeStage(s.Stage),
			AssignedTo:      s.AssignedTo,
			Latitude:        s.Latitude,
			Longitude:       s.Longitude,
			CreatedAt:       s.CreatedAt,
		})
	}
	for _, t := range file.Tasks {
		seed.Tasks = append(seed.Tasks, domain.Task{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
			RelatedType: domain.EntityType(t.RelatedType),
			RelatedID:   t.RelatedID,
			AssignedTo:  t.AssignedTo,
			DueDate:     t.Due,
			Status:      domain.TaskStatus(t.Status),
			Priority:    domain.TaskPriority(t.Priority),
			CreatedAt:   t.CreatedAt,
		})
	}
	for _, a := range file.Activities {
		seed.Activities = append(seed.Activities, domain.Activity{
			ID:         a.ID,
			UserID:     a.User,
			EntityType: domain.EntityType(a.EntityType),
			EntityID:   a.EntityID,
			Type:       domain.ActivityType(a.Type),
			Summary:    a.Summary,
			Address:    a.Address,
			CreatedAt:  a.CreatedAt,
		})
	}
	return seed, nil
}
