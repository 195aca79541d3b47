package utils

const (
	UserIDKey    contextKey = "user_id"
	UserEmailKey contextKey = "email"
	UserRoleKey  contextKey = "role"
)

const (
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
	RoleBuyer  = "buyer"
)
