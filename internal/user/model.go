package user

import "time"

type Role string

const (
	RoleFarmer Role = "farmer"
	RoleBuyer  Role = "buyer"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        int64     `db:"id"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	Phone     *string   `db:"phone_number"`
	Password  string    `db:"password"`
	Role      Role      `db:"role"`
	CreatedAt time.Time `db:"created_at"`
}

// Public is the user representation safe to return to clients.
type Public struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, FullName: u.FullName, Email: u.Email, Role: u.Role}
}
