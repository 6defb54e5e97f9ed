package model

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// swagger:model User
type User struct {
	UUIDBase
	Email        string   `gorm:"size:100;uniqueIndex;not null" json:"email"`
	FirstName    string   `gorm:"size:100" json:"firstName"`
	LastName     string   `gorm:"size:100" json:"lastName"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:10;default:'USER'" json:"role"`
}

func (User) TableName() string {
	return "users"
}
