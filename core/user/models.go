package user

import "strings"

// Roles.
// Sessions are issued by the external auth collaborator; this app only
// consumes the role claims carried by its tokens.
const (
	// Admin
	RoleAdmin          = "admin:"
	RoleAdminPrincipal = "admin:principal"

	// Adviser (homeroom teacher); same administrative override as admins
	RoleAdviser = "adviser:"

	// Secretary: the daily attendance-taking role, restricted to today
	RoleSecretary = "secretary:"

	// Student: read-only access
	RoleStudent = "student:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminPrincipal}
	AdviserRoles = []string{RoleAdviser}
	AllRoles     = getAllRoles()

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Secretary", Value: RoleSecretary},
		{Name: "Adviser", Value: RoleAdviser},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Principal", Value: RoleAdminPrincipal},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 5)
	all = append(all, AdminRoles...)
	all = append(all, AdviserRoles...)
	all = append(all, RoleSecretary, RoleStudent)
	return all
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Actor is the authenticated principal acting on a request,
// reconstructed from session token claims.
type Actor struct {
	ID       int      `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

func (a Actor) RoleStartsWith(prefix string) bool {
	for _, role := range a.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.RoleStartsWith(RoleAdmin)
}

func (a Actor) IsAdviser() bool {
	return a.RoleStartsWith(RoleAdviser)
}

func (a Actor) IsSecretary() bool {
	return a.RoleStartsWith(RoleSecretary)
}

func (a Actor) IsStudent() bool {
	return a.RoleStartsWith(RoleStudent)
}

// CanEditAnyDay reports whether the actor holds the administrative override
// that allows editing attendance for any calendar date.
func (a Actor) CanEditAnyDay() bool {
	return a.IsAdmin() || a.IsAdviser()
}
