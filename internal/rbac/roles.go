package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleCounselor  = "counselor"
	RoleTeamLead   = "team_lead"
	RoleAnalyst    = "analyst"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsKnownRole(role string) bool {
	switch role {
	case RoleCounselor, RoleTeamLead, RoleAnalyst, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}
