package domain

type User struct {
	ID            string  `json:"id" gorm:"column:id"`
	Username      string  `json:"username"`
	PasswordHash  string  `json:"-" gorm:"column:password_hash"`
	Role          string  `json:"role"`
	CreatorUserID *string `json:"creator_user_id,omitempty"`
	LastLogin     *string `json:"last_login,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     *string `json:"updated_at,omitempty"`
	DeletedAt     *string `json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "users" }

const (
	RoleStaff      = "staff"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleStaff, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}
