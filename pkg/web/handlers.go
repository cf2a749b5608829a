// Package web provides the HTTP handlers of the leadflow REST API.
package web

import (
	"net/http"
	"time"

	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	statuses        *services.Statuses
	automation      *services.Automation
	assignmentRules *services.AssignmentRules
	persistence     persistence.Persistence
	validator       *validator.Validate
}

func NewAPIHandlers(
	statuses *services.Statuses,
	automation *services.Automation,
	assignmentRules *services.AssignmentRules,
	persistence persistence.Persistence,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		statuses:        statuses,
		automation:      automation,
		assignmentRules: assignmentRules,
		persistence:     persistence,
		validator:       validator,
	}
}

func (h *APIHandlers) ListStatuses(c fiber.Ctx) error {
	statuses, err := h.statuses.List(c.Context(), models.EntityType(c.Query("entity_type")))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(statuses)
}

func (h *APIHandlers) GetStatus(c fiber.Ctx) error {
	status, err := h.statuses.Get(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(status)
}

func (h *APIHandlers) CreateStatus(c fiber.Ctx) error {
	var req StatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.statuses.Create(c.Context(), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateStatus(c fiber.Ctx) error {
	var req StatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.statuses.Update(c.Context(), c.Params("id"), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteStatus(c fiber.Ctx) error {
	if err := h.statuses.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetTransitions lists the targets reachable from a status. An unknown
// status has no transitions.
func (h *APIHandlers) GetTransitions(c fiber.Ctx) error {
	targets, err := h.statuses.Transitions(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(targets)
}

func (h *APIHandlers) CheckTransition(c fiber.Ctx) error {
	from, to := c.Params("id"), c.Params("targetId")

	allowed, err := h.statuses.CanTransition(c.Context(), from, to)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(TransitionCheckResponse{From: from, To: to, Allowed: allowed})
}

func (h *APIHandlers) CreateRule(c fiber.Ctx) error {
	var req RuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.statuses.AddRule(c.Context(), c.Params("id"), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateRule(c fiber.Ctx) error {
	var req RuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.statuses.UpdateRule(c.Context(), c.Params("id"), c.Params("ruleId"), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeleteRule(c fiber.Ctx) error {
	if err := h.statuses.DeleteRule(c.Context(), c.Params("id"), c.Params("ruleId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ResolveActions is a dry run: nothing is recorded or published.
func (h *APIHandlers) ResolveActions(c fiber.Ctx) error {
	var req ResolveRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	resolution, err := h.automation.ResolveActions(c.Context(), c.Params("id"), req.Entity, req.Trigger)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resolution)
}

func (h *APIHandlers) Lint(c fiber.Ctx) error {
	issues, err := h.statuses.Lint(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"issues": issues,
		"count":  len(issues),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := services.HealthCheck(c.Context(), h.persistence)

	status := "unhealthy"
	message := "leadflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		message = "leadflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
