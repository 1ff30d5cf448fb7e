package models

import (
	"time"
)

// Role enumerates the positions a collaborator can hold.
type Role string

const (
	RoleReceptionist Role = "Receptionist"
	RoleInstructor   Role = "Instructor"
	RoleCleaning     Role = "Cleaning"
	RoleManager      Role = "Manager"
)

var Roles = []Role{RoleReceptionist, RoleInstructor, RoleCleaning, RoleManager}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Collaborator is a staff member that can be the subject of a feedback entry.
// Deleting a collaborator does not touch feedback rows; those keep a
// denormalized name snapshot (see Feedback.PersonName).
type Collaborator struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null" validate:"required"`
	Role      Role      `json:"role" gorm:"not null" validate:"required"`
	Unit      string    `json:"unit" gorm:"not null" validate:"required"`
	Image     string    `json:"image,omitempty"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
