package web

import "github.com/gofiber/fiber/v3"

// Routes mounts every API endpoint on router.
func Routes(router fiber.Router, h *APIHandlers) {
	s := router.Group("/statuses")
	s.Get("/", h.ListStatuses)
	s.Post("/", h.CreateStatus)
	s.Get("/:id", h.GetStatus)
	s.Put("/:id", h.UpdateStatus)
	s.Delete("/:id", h.DeleteStatus)
	s.Get("/:id/transitions", h.GetTransitions)
	s.Get("/:id/transitions/:targetId", h.CheckTransition)
	s.Post("/:id/rules", h.CreateRule)
	s.Put("/:id/rules/:ruleId", h.UpdateRule)
	s.Delete("/:id/rules/:ruleId", h.DeleteRule)
	s.Post("/:id/resolve", h.ResolveActions)

	e := router.Group("/entities/:entityType/:entityId")
	e.Post("/status", h.ChangeStatus)
	e.Post("/fields", h.FieldUpdated)
	e.Get("/history", h.GetHistory)

	a := router.Group("/assignment-rules")
	a.Get("/", h.ListAssignmentRules)
	a.Post("/", h.CreateAssignmentRule)
	a.Post("/match", h.MatchAssignmentRule)
	a.Put("/:id", h.UpdateAssignmentRule)
	a.Delete("/:id", h.DeleteAssignmentRule)

	router.Get("/lint", h.Lint)
	router.Get("/health", h.HealthCheck)
}
