package models

import (
	"time"
)

// Role IDs used by route guards (see middleware.RequireRole).
const (
	RoleAuthor  = 1
	RoleFellow  = 2
	RoleEdAdmin = 3
)

// User represents the users table. A user is a Contributor; Fellows and
// EdAdmin are distinguished by role.
type User struct {
	UserID      int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName   string     `gorm:"column:first_name" json:"first_name"`
	LastName    string     `gorm:"column:last_name" json:"last_name"`
	Email       string     `gorm:"column:email;unique" json:"email"`
	Password    string     `gorm:"column:password" json:"-"`
	RoleID      int        `gorm:"column:role_id" json:"role_id"`
	Affiliation *string    `gorm:"column:affiliation" json:"affiliation,omitempty"`
	ORCIDID     *string    `gorm:"column:orcid_id" json:"orcid_id,omitempty"`
	Specialties *string    `gorm:"column:specialties" json:"specialties,omitempty"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt    *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID;references:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// Fellowship records a Fellow's membership of a Journal's editorial college.
// Default members are seeded into every submission pool at preassignment.
type Fellowship struct {
	FellowshipID int        `gorm:"primaryKey;column:fellowship_id" json:"fellowship_id"`
	JournalID    int        `gorm:"column:journal_id" json:"journal_id"`
	FellowID     int        `gorm:"column:fellow_id" json:"fellow_id"`
	IsDefault    bool       `gorm:"column:is_default" json:"is_default"`
	Specialties  *string    `gorm:"column:specialties" json:"specialties,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	Fellow User `gorm:"foreignKey:FellowID" json:"fellow,omitempty"`
}

// FullName joins first and last name for notification templates.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (Fellowship) TableName() string {
	return "fellowships"
}
