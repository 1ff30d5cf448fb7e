package handlers

import (
	"net/http"
	"time"

	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/fevilela/GymFeedback/internal/store"

	"github.com/labstack/echo/v4"
)

// Seed loads a demo roster and a few feedback entries into an empty store.
// Only routed when debug endpoints are enabled.
func Seed(s store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		existing, err := s.ListCollaborators()
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to seed")
		}
		if len(existing) > 0 {
			return echo.NewHTTPError(http.StatusConflict, "Store is not empty")
		}

		collabs := []models.Collaborator{
			{Name: "Ana Silva", Role: models.RoleReceptionist, Unit: "Unidade Centro", Active: true},
			{Name: "João Santos", Role: models.RoleReceptionist, Unit: "Unidade Perimetral", Active: true},
			{Name: "Carlos Oliveira", Role: models.RoleInstructor, Unit: "Unidade Centro", Active: true},
			{Name: "Fernanda Lima", Role: models.RoleInstructor, Unit: "Unidade Centro", Active: true},
			{Name: "Pedro Souza", Role: models.RoleInstructor, Unit: "Unidade Perimetral", Active: true},
			{Name: "Mariana Costa", Role: models.RoleInstructor, Unit: "Unidade Perimetral", Active: true},
		}
		for i := range collabs {
			if err := s.CreateCollaborator(&collabs[i]); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to seed")
			}
		}

		now := time.Now()
		feedbacks := []models.Feedback{
			{Category: models.CategoryReception, PersonID: &collabs[0].ID, PersonName: collabs[0].Name, Rating: 5,
				Message: "Atendimento excelente, muito atenciosa!", Unit: collabs[0].Unit, Date: now.Add(-2 * time.Hour)},
			{Category: models.CategoryInstructors, PersonID: &collabs[2].ID, PersonName: collabs[2].Name, Rating: 5,
				Message: "Treino muito bem montado.", Unit: collabs[2].Unit, Date: now.Add(-26 * time.Hour)},
			{Category: models.CategoryEquipment, Rating: 4, Message: "Faltam anilhas de 2kg.",
				Unit: "Unidade Centro", Date: now.Add(-50 * time.Hour)},
			{Category: models.CategoryCleanliness, Rating: 5, Unit: "Unidade Perimetral", Date: now.Add(-70 * time.Hour)},
			{Category: models.CategoryReception, PersonID: &collabs[1].ID, PersonName: collabs[1].Name, Rating: 3,
				Message: "Demorou um pouco para atender.", Unit: collabs[1].Unit, Date: now.Add(-100 * time.Hour)},
		}
		for i := range feedbacks {
			if err := s.CreateFeedback(&feedbacks[i]); err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to seed")
			}
		}

		return c.JSON(http.StatusOK, map[string]int{
			"collaborators": len(collabs),
			"feedbacks":     len(feedbacks),
		})
	}
}
