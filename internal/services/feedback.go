package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/fevilela/GymFeedback/internal/store"
	"github.com/fevilela/GymFeedback/internal/utils"
)

// ErrDuplicateSubmission is returned when the same submitter already rated the
// same collaborator inside the dedup window.
var ErrDuplicateSubmission = errors.New("this collaborator was already rated by this email recently")

// ValidationError reports malformed or out-of-range submission input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// SubmitInput is a candidate feedback entry before validation and enrichment.
type SubmitInput struct {
	Category  models.Category
	PersonID  *uint
	Rating    int
	Message   string
	UserName  string
	UserEmail string
	Unit      string
}

// FeedbackService validates, enriches and persists feedback submissions.
type FeedbackService struct {
	store       store.Store
	dedupWindow time.Duration
	now         func() time.Time
}

// NewFeedbackService builds a service around the given store. dedupWindow is
// the trailing period during which a repeat person+email submission is
// rejected; zero disables the guard.
func NewFeedbackService(s store.Store, dedupWindow time.Duration) *FeedbackService {
	return &FeedbackService{
		store:       s,
		dedupWindow: dedupWindow,
		now:         time.Now,
	}
}

// Submit validates input, snapshots collaborator data and writes the entry.
// The returned feedback has its ID and Date assigned by the store.
//
// The duplicate guard is a read-then-write check over the loaded feedback
// list, not a database constraint: two near-simultaneous submissions can both
// pass it. That race is accepted.
func (s *FeedbackService) Submit(input SubmitInput) (*models.Feedback, error) {
	if input.Category == "" {
		return nil, &ValidationError{Field: "category", Message: "category is required"}
	}
	if !input.Category.Valid() {
		return nil, &ValidationError{Field: "category", Message: fmt.Sprintf("unknown category %q", input.Category)}
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, &ValidationError{Field: "rating", Message: "rating must be between 1 and 5"}
	}
	if input.UserEmail != "" {
		if err := utils.ValidateEmailAddress(input.UserEmail); err != nil {
			return nil, &ValidationError{Field: "userEmail", Message: err.Error()}
		}
	}

	var person *models.Collaborator
	if role, required := input.Category.PersonRole(); required {
		if input.PersonID == nil {
			return nil, &ValidationError{Field: "personId", Message: fmt.Sprintf("category %s requires a collaborator", input.Category)}
		}
		collab, err := s.store.GetCollaborator(*input.PersonID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, &ValidationError{Field: "personId", Message: "collaborator not found"}
			}
			return nil, err
		}
		if !collab.Active {
			return nil, &ValidationError{Field: "personId", Message: "collaborator is not active"}
		}
		if collab.Role != role {
			return nil, &ValidationError{Field: "personId", Message: fmt.Sprintf("collaborator is a %s, expected %s", collab.Role, role)}
		}
		person = collab
	} else if input.PersonID != nil {
		return nil, &ValidationError{Field: "personId", Message: fmt.Sprintf("category %s does not take a collaborator", input.Category)}
	}

	if err := s.checkDuplicate(input); err != nil {
		return nil, err
	}

	feedback := &models.Feedback{
		Category:  input.Category,
		PersonID:  input.PersonID,
		Rating:    input.Rating,
		Message:   input.Message,
		UserName:  input.UserName,
		UserEmail: input.UserEmail,
		Unit:      input.Unit,
	}
	if person != nil {
		feedback.PersonName = person.Name
		if feedback.Unit == "" {
			feedback.Unit = person.Unit
		}
	}

	if err := s.store.CreateFeedback(feedback); err != nil {
		return nil, err
	}
	return feedback, nil
}

func (s *FeedbackService) checkDuplicate(input SubmitInput) error {
	if s.dedupWindow <= 0 || input.PersonID == nil || input.UserEmail == "" {
		return nil
	}

	feedbacks, err := s.store.ListFeedbacks()
	if err != nil {
		return err
	}

	cutoff := s.now().Add(-s.dedupWindow)
	for _, f := range feedbacks {
		if f.PersonID == nil || *f.PersonID != *input.PersonID {
			continue
		}
		if f.UserEmail != input.UserEmail {
			continue
		}
		if f.Date.After(cutoff) {
			return ErrDuplicateSubmission
		}
	}
	return nil
}
