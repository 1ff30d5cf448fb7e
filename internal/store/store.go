package store

import (
	"errors"

	"github.com/fevilela/GymFeedback/internal/models"
)

// ErrNotFound is returned when an operation references a missing record.
var ErrNotFound = errors.New("record not found")

// CollaboratorUpdate carries a partial update; nil fields are left untouched.
type CollaboratorUpdate struct {
	Name   *string
	Role   *models.Role
	Unit   *string
	Image  *string
	Active *bool
}

// Store is the record store consumed by the submission and dashboard code.
// Implementations assign IDs on create and set Feedback.Date from their own
// clock. ListFeedbacks returns entries newest first.
type Store interface {
	ListCollaborators() ([]models.Collaborator, error)
	GetCollaborator(id uint) (*models.Collaborator, error)
	CreateCollaborator(collab *models.Collaborator) error
	UpdateCollaborator(id uint, update CollaboratorUpdate) (*models.Collaborator, error)
	DeleteCollaborator(id uint) error

	ListFeedbacks() ([]models.Feedback, error)
	CreateFeedback(feedback *models.Feedback) error
}
