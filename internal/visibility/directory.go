package visibility

import (
	"sort"
	"strings"

	"github.com/spec-kit/sales-crm/internal/domain"
	apperrors "github.com/spec-kit/sales-crm/pkg/util"
)

// Directory is a validated, read-only index of the sales organization.
type Directory struct {
	users   map[string]domain.User
	order   []string
	reports map[string][]string
}

// NewDirectory validates users and builds the reverse reports-to adjacency.
// The reports-to graph must form a forest: no cycles, managers must outrank
// their reports, and admins report to nobody.
func NewDirectory(users []domain.User) (*Directory, error) {
	d := &Directory{
		users:   make(map[string]domain.User, len(users)),
		order:   make([]string, 0, len(users)),
		reports: make(map[string][]string),
	}

	for _, u := range users {
		if u.ID == "" {
			return nil, apperrors.NewValidationError("user id required", map[string]any{"name": u.Name})
		}
		if _, dup := d.users[u.ID]; dup {
			return nil, apperrors.NewValidationError("duplicate user id", map[string]any{"user_id": u.ID})
		}
		if !u.Role.Valid() {
			return nil, apperrors.NewValidationError("unknown role", map[string]any{"user_id": u.ID, "role": u.Role})
		}
		if u.ReportsTo == u.ID {
			return nil, apperrors.NewValidationError("user reports to itself", map[string]any{"user_id": u.ID})
		}
		d.users[u.ID] = u
		d.order = append(d.order, u.ID)
	}

	for _, id := range d.order {
		u := d.users[id]
		if !u.HasManager() {
			continue
		}
		if _, ok := d.users[u.ReportsTo]; !ok {
			return nil, apperrors.NewValidationError("unknown manager", map[string]any{"user_id": u.ID, "reports_to": u.ReportsTo})
		}
	}

	if err := d.detectCycles(); err != nil {
		return nil, err
	}

	for _, id := range d.order {
		u := d.users[id]
		if !u.HasManager() {
			continue
		}
		if u.Role == domain.RoleAdmin {
			return nil, apperrors.NewValidationError("admin cannot report to another user", map[string]any{"user_id": u.ID})
		}
		manager := d.users[u.ReportsTo]
		if !manager.Role.CanManage(u.Role) {
			return nil, apperrors.NewValidationError("manager role cannot manage report", map[string]any{
				"user_id":      u.ID,
				"role":         u.Role,
				"manager_id":   manager.ID,
				"manager_role": manager.Role,
			})
		}
		d.reports[manager.ID] = append(d.reports[manager.ID], u.ID)
	}

	for id := range d.reports {
		sort.Strings(d.reports[id])
	}
	return d, nil
}

// detectCycles walks each reports-to chain, marking nodes settled once their
// chain is known to terminate.
func (d *Directory) detectCycles() error {
	const (
		unvisited = iota
		inProgress
		settled
	)
	state := make(map[string]int, len(d.users))

	for _, start := range d.order {
		if state[start] == settled {
			continue
		}
		var path []string
		cur := start
		for cur != "" && state[cur] != settled {
			if state[cur] == inProgress {
				return apperrors.NewValidationError("reports-to cycle detected", map[string]any{"user_id": cur, "path": path})
			}
			state[cur] = inProgress
			path = append(path, cur)
			cur = d.users[cur].ReportsTo
		}
		for _, id := range path {
			state[id] = settled
		}
	}
	return nil
}

// User returns the user with the given ID.
func (d *Directory) User(id string) (domain.User, bool) {
	u, ok := d.users[id]
	return u, ok
}

// Users returns every user in load order.
func (d *Directory) Users() []domain.User {
	out := make([]domain.User, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.users[id])
	}
	return out
}

// Len returns the number of users.
func (d *Directory) Len() int {
	return len(d.order)
}

// DirectReports returns the users reporting directly to id.
func (d *Directory) DirectReports(id string) []domain.User {
	ids := d.reports[id]
	out := make([]domain.User, 0, len(ids))
	for _, rid := range ids {
		out = append(out, d.users[rid])
	}
	return out
}

// FindByEmail looks a user up by email address.
func (d *Directory) FindByEmail(email string) (domain.User, bool) {
	for _, id := range d.order {
		if u := d.users[id]; u.Email != "" && strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return domain.User{}, false
}
