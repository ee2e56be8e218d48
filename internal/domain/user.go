package domain

// UserRole é o papel do usuário autenticado, vindo da claim "role" do token.
type UserRole string

// Papéis conhecidos. "authenticated" é o papel padrão emitido pelo provedor de autenticação.
const (
	RoleAdmin         UserRole = "admin"
	RoleSecretary     UserRole = "secretaria"
	RoleAuthenticated UserRole = "authenticated"
)

// ParseRoles converte uma lista de strings em papéis, ignorando entradas vazias.
func ParseRoles(values []string) []UserRole {
	roles := make([]UserRole, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		roles = append(roles, UserRole(v))
	}
	return roles
}
