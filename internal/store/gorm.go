package store

import (
	"errors"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
	"gorm.io/gorm"
)

// Gorm is the database-backed Store used in production.
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) ListCollaborators() ([]models.Collaborator, error) {
	var collabs []models.Collaborator
	if err := s.db.Order("id").Find(&collabs).Error; err != nil {
		return nil, err
	}
	return collabs, nil
}

func (s *Gorm) GetCollaborator(id uint) (*models.Collaborator, error) {
	var collab models.Collaborator
	result := s.db.Where("id = ?", id).First(&collab)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &collab, nil
}

func (s *Gorm) CreateCollaborator(collab *models.Collaborator) error {
	return s.db.Create(collab).Error
}

func (s *Gorm) UpdateCollaborator(id uint, update CollaboratorUpdate) (*models.Collaborator, error) {
	collab, err := s.GetCollaborator(id)
	if err != nil {
		return nil, err
	}

	// Build the column map explicitly so "set active to false" is not
	// swallowed by gorm's zero-value handling.
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Role != nil {
		fields["role"] = *update.Role
	}
	if update.Unit != nil {
		fields["unit"] = *update.Unit
	}
	if update.Image != nil {
		fields["image"] = *update.Image
	}
	if update.Active != nil {
		fields["active"] = *update.Active
	}
	if len(fields) == 0 {
		return collab, nil
	}

	if err := s.db.Model(collab).Updates(fields).Error; err != nil {
		return nil, err
	}
	return collab, nil
}

func (s *Gorm) DeleteCollaborator(id uint) error {
	result := s.db.Delete(&models.Collaborator{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Gorm) ListFeedbacks() ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	if err := s.db.Order("date DESC, id DESC").Find(&feedbacks).Error; err != nil {
		return nil, err
	}
	return feedbacks, nil
}

func (s *Gorm) CreateFeedback(feedback *models.Feedback) error {
	if feedback.Date.IsZero() {
		feedback.Date = time.Now()
	}
	return s.db.Create(feedback).Error
}
