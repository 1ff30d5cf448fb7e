package store

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func newGormStore(t *testing.T) *Gorm {
	t.Helper()

	// A distinct shared-cache DSN per test keeps gorm's connection pool on
	// one database without leaking rows across tests.
	dsn := fmt.Sprintf("file:storetest%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Collaborator{}, &models.Feedback{}))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return NewGorm(db)
}

// Both implementations must satisfy the same contract.
func storesUnderTest(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemory(),
		"gorm":   newGormStore(t),
	}
}

func TestCollaboratorLifecycle(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			collab := &models.Collaborator{
				Name:   "Ana Silva",
				Role:   models.RoleReceptionist,
				Unit:   "Unidade Centro",
				Active: true,
			}
			require.NoError(t, s.CreateCollaborator(collab))
			assert.NotZero(t, collab.ID)

			got, err := s.GetCollaborator(collab.ID)
			require.NoError(t, err)
			assert.Equal(t, "Ana Silva", got.Name)

			newName := "Ana Souza"
			inactive := false
			updated, err := s.UpdateCollaborator(collab.ID, CollaboratorUpdate{
				Name:   &newName,
				Active: &inactive,
			})
			require.NoError(t, err)
			assert.Equal(t, "Ana Souza", updated.Name)
			assert.False(t, updated.Active, "explicit false must not be dropped")
			assert.Equal(t, models.RoleReceptionist, updated.Role, "untouched fields stay")

			require.NoError(t, s.DeleteCollaborator(collab.ID))

			_, err = s.GetCollaborator(collab.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestMissingCollaboratorErrors(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.GetCollaborator(42)
			assert.ErrorIs(t, err, ErrNotFound)

			newName := "Nobody"
			_, err = s.UpdateCollaborator(42, CollaboratorUpdate{Name: &newName})
			assert.ErrorIs(t, err, ErrNotFound)

			assert.ErrorIs(t, s.DeleteCollaborator(42), ErrNotFound)
		})
	}
}

func TestCreateFeedbackAssignsIDAndDate(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			feedback := &models.Feedback{Category: models.CategoryOther, Rating: 4}
			require.NoError(t, s.CreateFeedback(feedback))

			assert.NotZero(t, feedback.ID)
			assert.False(t, feedback.Date.IsZero())
		})
	}
}

func TestListFeedbacksNewestFirst(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			base := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
			for i := 0; i < 3; i++ {
				feedback := &models.Feedback{
					Category: models.CategoryOther,
					Rating:   i + 1,
					Date:     base.AddDate(0, 0, i),
				}
				require.NoError(t, s.CreateFeedback(feedback))
			}

			feedbacks, err := s.ListFeedbacks()
			require.NoError(t, err)
			require.Len(t, feedbacks, 3)
			assert.Equal(t, 3, feedbacks[0].Rating)
			assert.Equal(t, 1, feedbacks[2].Rating)
		})
	}
}

func TestDeleteCollaboratorKeepsFeedback(t *testing.T) {
	for name, s := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			collab := &models.Collaborator{
				Name: "Ana Silva", Role: models.RoleReceptionist, Unit: "Unidade Centro", Active: true,
			}
			require.NoError(t, s.CreateCollaborator(collab))

			feedback := &models.Feedback{
				Category:   models.CategoryReception,
				PersonID:   &collab.ID,
				PersonName: collab.Name,
				Rating:     5,
				Message:    "Muito atenciosa",
			}
			require.NoError(t, s.CreateFeedback(feedback))

			require.NoError(t, s.DeleteCollaborator(collab.ID))

			feedbacks, err := s.ListFeedbacks()
			require.NoError(t, err)
			require.Len(t, feedbacks, 1)
			assert.Equal(t, "Ana Silva", feedbacks[0].PersonName)
			assert.Equal(t, 5, feedbacks[0].Rating)
			assert.Equal(t, "Muito atenciosa", feedbacks[0].Message)
		})
	}
}
