package web

import (
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

func (h *APIHandlers) ChangeStatus(c fiber.Ctx) error {
	var req ChangeStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.automation.ChangeStatus(c.Context(), services.ChangeStatusRequest{
		EntityType:   models.EntityType(c.Params("entityType")),
		EntityID:     c.Params("entityId"),
		FromStatusID: req.FromStatusID,
		ToStatusID:   req.ToStatusID,
		Entity:       req.Entity,
		ChangedBy:    req.ChangedBy,
		Notes:        req.Notes,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *APIHandlers) FieldUpdated(c fiber.Ctx) error {
	var req FieldUpdateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	resolution, err := h.automation.FieldUpdated(c.Context(), services.EntityEvent{
		EntityType: models.EntityType(c.Params("entityType")),
		EntityID:   c.Params("entityId"),
		StatusID:   req.StatusID,
		Entity:     req.Entity,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resolution)
}

func (h *APIHandlers) GetHistory(c fiber.Ctx) error {
	entries, err := h.automation.History(c.Context(), models.EntityType(c.Params("entityType")), c.Params("entityId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(entries)
}

func (h *APIHandlers) ListAssignmentRules(c fiber.Ctx) error {
	rules, err := h.assignmentRules.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rules)
}

func (h *APIHandlers) CreateAssignmentRule(c fiber.Ctx) error {
	var req AssignmentRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.assignmentRules.Create(c.Context(), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateAssignmentRule(c fiber.Ctx) error {
	var req AssignmentRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.assignmentRules.Update(c.Context(), c.Params("id"), req.Model())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeleteAssignmentRule(c fiber.Ctx) error {
	if err := h.assignmentRules.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) MatchAssignmentRule(c fiber.Ctx) error {
	var req MatchRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, ok, err := h.assignmentRules.Match(c.Context(), req.EntityType, req.Entity)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(MatchResponse{Matched: ok, Rule: rule})
}
