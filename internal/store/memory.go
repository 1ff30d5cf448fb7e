package store

import (
	"sort"
	"sync"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
)

// Memory is an in-memory Store used by tests and as a reference for the
// interface contract. Now is swappable so tests can pin the feedback clock.
type Memory struct {
	mu             sync.Mutex
	collaborators  []models.Collaborator
	feedbacks      []models.Feedback
	nextCollabID   uint
	nextFeedbackID uint

	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		nextCollabID:   1,
		nextFeedbackID: 1,
		Now:            time.Now,
	}
}

func (s *Memory) ListCollaborators() ([]models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Collaborator, len(s.collaborators))
	copy(out, s.collaborators)
	return out, nil
}

func (s *Memory) GetCollaborator(id uint) (*models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collaborators {
		if s.collaborators[i].ID == id {
			collab := s.collaborators[i]
			return &collab, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Memory) CreateCollaborator(collab *models.Collaborator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	collab.ID = s.nextCollabID
	s.nextCollabID++
	now := s.Now()
	collab.CreatedAt = now
	collab.UpdatedAt = now
	s.collaborators = append(s.collaborators, *collab)
	return nil
}

func (s *Memory) UpdateCollaborator(id uint, update CollaboratorUpdate) (*models.Collaborator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collaborators {
		if s.collaborators[i].ID != id {
			continue
		}
		collab := &s.collaborators[i]
		if update.Name != nil {
			collab.Name = *update.Name
		}
		if update.Role != nil {
			collab.Role = *update.Role
		}
		if update.Unit != nil {
			collab.Unit = *update.Unit
		}
		if update.Image != nil {
			collab.Image = *update.Image
		}
		if update.Active != nil {
			collab.Active = *update.Active
		}
		collab.UpdatedAt = s.Now()
		out := *collab
		return &out, nil
	}
	return nil, ErrNotFound
}

func (s *Memory) DeleteCollaborator(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collaborators {
		if s.collaborators[i].ID == id {
			s.collaborators = append(s.collaborators[:i], s.collaborators[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *Memory) ListFeedbacks() ([]models.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Feedback, len(s.feedbacks))
	copy(out, s.feedbacks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Memory) CreateFeedback(feedback *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	feedback.ID = s.nextFeedbackID
	s.nextFeedbackID++
	if feedback.Date.IsZero() {
		feedback.Date = s.Now()
	}
	s.feedbacks = append(s.feedbacks, *feedback)
	return nil
}
