package models

// Role is the access level of a user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTrainer
}

// Label is the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleTrainer:
		return "Entrenador"
	default:
		return string(r)
	}
}

// User is a portal account. The password is stored as entered and doubles
// as the login key, so it must be unique across all users.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Password   string    `json:"password"`
	Role       Role      `json:"role"`
	Email      string    `json:"email"`
	Specialty  string    `json:"specialty"`
	Created    Timestamp `json:"created"`
	LastAccess Timestamp `json:"lastAccess"`
	Active     bool      `json:"active"`
}

// CurrentUser is the marker kept for the authenticated identity. It never
// carries the password.
type CurrentUser struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category"`
	Role       Role      `json:"role"`
	Email      string    `json:"email"`
	Specialty  string    `json:"specialty"`
	LastAccess Timestamp `json:"lastAccess"`
}

func (u User) Projection() CurrentUser {
	return CurrentUser{
		ID:         u.ID,
		Name:       u.Name,
		Category:   u.Category,
		Role:       u.Role,
		Email:      u.Email,
		Specialty:  u.Specialty,
		LastAccess: u.LastAccess,
	}
}

func (c CurrentUser) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// NewUser holds the fields an admin supplies when creating an account.
type NewUser struct {
	Name      string
	Category  string
	Password  string
	Role      Role
	Email     string
	Specialty string
}

// UserPatch is a partial update; nil fields are left untouched.
type UserPatch struct {
	ID        string
	Name      *string
	Category  *string
	Password  *string
	Role      *Role
	Email     *string
	Specialty *string
	Active    *bool
}

// Apply merges the present fields of p into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Category != nil {
		u.Category = *p.Category
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Specialty != nil {
		u.Specialty = *p.Specialty
	}
	if p.Active != nil {
		u.Active = *p.Active
	}
}
