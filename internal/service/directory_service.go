package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/sales-crm/internal/domain"
	"github.com/spec-kit/sales-crm/internal/repository"
	"github.com/spec-kit/sales-crm/internal/visibility"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// DirectoryService exposes the validated reporting hierarchy loaded at startup.
type DirectoryService struct {
	dir *visibility.Directory
}

// LoadDirectory reads every user and validates the hierarchy. A malformed
// hierarchy is fatal: the service refuses to start rather than guess visibility.
func LoadDirectory(ctx context.Context, users repository.UserRepository) (*DirectoryService, error) {
	all, err := users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	dir, err := visibility.NewDirectory(all)
	if err != nil {
		return nil, err
	}
	return &DirectoryService{dir: dir}, nil
}

// NewDirectoryService wraps an already validated directory.
func NewDirectoryService(dir *visibility.Directory) *DirectoryService {
	return &DirectoryService{dir: dir}
}

// User returns the directory entry for id.
func (s *DirectoryService) User(id string) (domain.User, bool) {
	return s.dir.User(id)
}

// FindByEmail looks a user up by login email.
func (s *DirectoryService) FindByEmail(email string) (domain.User, bool) {
	return s.dir.FindByEmail(email)
}

// Users returns every user in load order.
func (s *DirectoryService) Users() []domain.User {
	return s.dir.Users()
}

// Len is the number of users in the directory.
func (s *DirectoryService) Len() int {
	return s.dir.Len()
}

// VisibleIdentities resolves the set of user IDs whose records actorID may view.
func (s *DirectoryService) VisibleIdentities(actorID string) (visibility.Set, error) {
	return s.dir.VisibleIdentities(actorID)
}

// VisibleUsers lists the users in actorID's visibility set.
func (s *DirectoryService) VisibleUsers(actorID string) ([]domain.User, error) {
	return s.dir.VisibleUsers(actorID)
}

// Team lists the direct reports of actorID.
func (s *DirectoryService) Team(actorID string) ([]domain.User, error) {
	if _, ok := s.dir.User(actorID); !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": actorID})
	}
	return s.dir.DirectReports(actorID), nil
}

// CanView reports whether targetID is inside viewerID's visibility set.
func (s *DirectoryService) CanView(viewerID, targetID string) (bool, error) {
	visible, err := s.dir.VisibleIdentities(viewerID)
	if err != nil {
		return false, err
	}
	return visible.Contains(targetID), nil
}
