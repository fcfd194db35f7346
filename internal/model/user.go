package model

import "time"

// Roles a user can hold.  Every account starts as RoleUser; only an
// administrator can promote another account.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the `users`
// table.  PasswordHash never leaves the process: it is excluded from JSON and
// handlers respond with PublicUser instead.
type User struct {
	ID           uint64    `db:"id" json:"id"`                  // users.id
	Username     string    `db:"username" json:"username"`      // users.username (unique)
	Email        string    `db:"email" json:"email"`            // users.email (unique, lower-cased)
	PasswordHash string    `db:"password_hash" json:"-"`        // users.password_hash (bcrypt)
	Role         string    `db:"role" json:"role"`              // users.role
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`   // users.created_at
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`   // users.updated_at
}

// PublicUser is the credential-free projection of a User.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Public strips the credential fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// Profile is what a user sees about their own account.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UserFilter narrows the administrative user listing.  Empty fields match
// everything; Username and Email are case-insensitive substrings.
type UserFilter struct {
	Username string
	Email    string
	Role     string
}

// ValidRole reports whether r names a known role.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}
