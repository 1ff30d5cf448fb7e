package models

import (
	"time"
)

// Category enumerates what a feedback entry is about.
type Category string

const (
	CategoryReception   Category = "Reception"
	CategoryInstructors Category = "Instructors"
	CategoryEquipment   Category = "Equipment"
	CategoryCleanliness Category = "Cleanliness"
	CategoryFacilities  Category = "Facilities"
	CategoryOther       Category = "Other"
)

// Categories is the fixed set, in the order dashboards render it.
var Categories = []Category{
	CategoryReception,
	CategoryInstructors,
	CategoryEquipment,
	CategoryCleanliness,
	CategoryFacilities,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// PersonRole returns the collaborator role a category is attributable to.
// Only Reception and Instructors feedback targets a specific person.
func (c Category) PersonRole() (Role, bool) {
	switch c {
	case CategoryReception:
		return RoleReceptionist, true
	case CategoryInstructors:
		return RoleInstructor, true
	}
	return "", false
}

// Feedback is a single visitor rating submission. Rows are append-only: there
// is no update or delete path, and Date is set by the store at creation time.
type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Category   Category  `json:"category" gorm:"not null;index" validate:"required"`
	PersonID   *uint     `json:"personId,omitempty" gorm:"index"`
	PersonName string    `json:"personName,omitempty"`
	Rating     int       `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Message    string    `json:"message,omitempty"`
	UserName   string    `json:"userName,omitempty"`
	UserEmail  string    `json:"userEmail,omitempty" gorm:"index"`
	Date       time.Time `json:"date" gorm:"not null;index"`
	Unit       string    `json:"unit,omitempty"`
}
