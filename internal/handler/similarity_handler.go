package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/service"
	"github.com/noah-isme/campus-api/internal/utils"
)

// SimilarityHandler serves plagiarism triage endpoints for staff.
type SimilarityHandler struct {
	service service.SimilarityService
	logger  zerolog.Logger
}

// NewSimilarityHandler constructs a SimilarityHandler.
func NewSimilarityHandler(service service.SimilarityService, logger zerolog.Logger) *SimilarityHandler {
	return &SimilarityHandler{
		service: service,
		logger:  logger.With().Str("component", "similarity_handler").Logger(),
	}
}

// Register attaches the similarity routes under the assignments group.
func (h *SimilarityHandler) Register(router fiber.Router, guards RouteGuards) {
	router.Get("/:id/similarity", guards.staff(), h.report)
	router.Get("/:id/plagiarism/:studentId", guards.staff(), guards.plagiarismLimit(), h.checkPlagiarism)
	router.Get("/:id/stats", guards.staff(), h.stats)
}

func (h *SimilarityHandler) report(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	report, err := h.service.Report(c.UserContext(), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "similarity report generated", report)
}

func (h *SimilarityHandler) checkPlagiarism(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	studentID, err := parseUintParam(c, "studentId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid student identifier")
	}

	result, err := h.service.CheckPlagiarism(c.UserContext(), assignmentID, studentID)
	if err != nil {
		return h.handleError(c, err)
	}

	requestLogger(h.logger, c).Info().
		Uint("assignment_id", assignmentID).
		Uint("student_id", studentID).
		Int("similarity_percent", result.SimilarityPercent).
		Msg("plagiarism check served")

	return utils.SendSuccess(c, "plagiarism check completed", result)
}

func (h *SimilarityHandler) stats(c *fiber.Ctx) error {
	assignmentID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	stats, err := h.service.Stats(c.UserContext(), assignmentID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission stats retrieved", stats)
}

func (h *SimilarityHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAssignmentNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignment not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	default:
		return internalError(c, h.logger, err)
	}
}
