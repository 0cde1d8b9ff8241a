package visibility

import (
	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// VisibleIdentities returns the identities whose records actorID may view:
// the actor plus, for managerial roles, every transitive report.
func (d *Directory) VisibleIdentities(actorID string) (Set, error) {
	actor, ok := d.users[actorID]
	if !ok {
		return nil, apperrors.NewNotFound("user", map[string]any{"user_id": actorID})
	}

	visible := NewSet(actor.ID)
	if !actor.Role.Managerial() {
		return visible, nil
	}

	queue := []string{actor.ID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, rid := range d.reports[cur] {
			if visible.Contains(rid) {
				continue
			}
			visible[rid] = struct{}{}
			queue = append(queue, rid)
		}
	}
	return visible, nil
}

// VisibleUsers returns the users in actorID's visibility set, in load order.
func (d *Directory) VisibleUsers(actorID string) ([]domain.User, error) {
	visible, err := d.VisibleIdentities(actorID)
	if err != nil {
		return nil, err
	}
	return Filter(d.Users(), visible, func(u domain.User) string { return u.ID }), nil
}

// ComputeVisibleIdentities resolves the visibility set of actor against all.
// The directory is validated first, so a malformed hierarchy is rejected
// rather than traversed.
func ComputeVisibleIdentities(actor domain.User, all []domain.User) (Set, error) {
	d, err := NewDirectory(all)
	if err != nil {
		return nil, err
	}
	return d.VisibleIdentities(actor.ID)
}
