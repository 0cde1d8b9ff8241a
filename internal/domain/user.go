package domain

// User is a member of the sales organization. ReportsTo holds the ID of the
// direct manager and is empty for roots of the reporting forest.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Role         Role
	ReportsTo    string
	Region       string
	PasswordHash string
	Active       bool
}

// HasManager reports whether the user reports to someone.
func (u User) HasManager() bool {
	return u.ReportsTo != ""
}
