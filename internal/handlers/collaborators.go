package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/fevilela/GymFeedback/internal/common"
	"github.com/fevilela/GymFeedback/internal/models"
	"github.com/fevilela/GymFeedback/internal/store"

	"github.com/labstack/echo/v4"
)

type CollaboratorHandler struct {
	common.ServerState
}

func NewCollaboratorHandler(state common.ServerState) *CollaboratorHandler {
	return &CollaboratorHandler{ServerState: state}
}

type CreateCollaboratorRequest struct {
	Name   string      `json:"name" validate:"required"`
	Role   models.Role `json:"role" validate:"required"`
	Unit   string      `json:"unit" validate:"required"`
	Image  string      `json:"image"`
	Active *bool       `json:"active"`
}

type UpdateCollaboratorRequest struct {
	Name   *string      `json:"name"`
	Role   *models.Role `json:"role"`
	Unit   *string      `json:"unit"`
	Image  *string      `json:"image"`
	Active *bool        `json:"active"`
}

// List returns the roster. With ?active=true only selectable collaborators are
// returned, which is what the public feedback form uses.
func (h *CollaboratorHandler) List(c echo.Context) error {
	collabs, err := h.Store.ListCollaborators()
	if err != nil {
		c.Logger().Errorf("Failed to list collaborators: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to list collaborators")
	}

	if c.QueryParam("active") == "true" {
		active := make([]models.Collaborator, 0, len(collabs))
		for _, collab := range collabs {
			if collab.Active {
				active = append(active, collab)
			}
		}
		collabs = active
	}

	return c.JSON(http.StatusOK, collabs)
}

func (h *CollaboratorHandler) Create(c echo.Context) error {
	req := &CreateCollaboratorRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !req.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown role %q", req.Role))
	}
	if !h.validUnit(req.Unit) {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown unit %q", req.Unit))
	}

	collab := &models.Collaborator{
		Name:   req.Name,
		Role:   req.Role,
		Unit:   req.Unit,
		Image:  req.Image,
		Active: true,
	}
	if req.Active != nil {
		collab.Active = *req.Active
	}

	if err := h.Store.CreateCollaborator(collab); err != nil {
		c.Logger().Errorf("Failed to create collaborator: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create collaborator")
	}

	h.notifyChanged()
	return c.JSON(http.StatusCreated, collab)
}

func (h *CollaboratorHandler) Update(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}

	req := &UpdateCollaboratorRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Role != nil && !req.Role.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown role %q", *req.Role))
	}
	if req.Unit != nil && !h.validUnit(*req.Unit) {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unknown unit %q", *req.Unit))
	}

	collab, err := h.Store.UpdateCollaborator(id, store.CollaboratorUpdate{
		Name:   req.Name,
		Role:   req.Role,
		Unit:   req.Unit,
		Image:  req.Image,
		Active: req.Active,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Collaborator not found")
		}
		c.Logger().Errorf("Failed to update collaborator %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update collaborator")
	}

	h.notifyChanged()
	return c.JSON(http.StatusOK, collab)
}

func (h *CollaboratorHandler) Delete(c echo.Context) error {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}

	if err := h.Store.DeleteCollaborator(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Collaborator not found")
		}
		c.Logger().Errorf("Failed to delete collaborator %d: %v", id, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete collaborator")
	}

	h.notifyChanged()
	return c.NoContent(http.StatusNoContent)
}

func (h *CollaboratorHandler) validUnit(unit string) bool {
	for _, known := range h.Config.Feedback.Units {
		if unit == known {
			return true
		}
	}
	return false
}

func (h *CollaboratorHandler) notifyChanged() {
	if h.Cache != nil {
		h.Cache.Invalidate(context.Background())
	}
	if h.Notifier != nil {
		h.Notifier.Broadcast("changed")
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
