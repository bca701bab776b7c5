package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/campushub/attendance/internal/attendance"
	"github.com/campushub/attendance/internal/repository"
)

// Handler exposes the check-in engine to UI collaborators. It owns no
// business rules: every route resolves its inputs and delegates to the
// lifecycle manager or the coordinator.
type Handler struct {
	lifecycle   *attendance.LifecycleManager
	coordinator *attendance.Coordinator
	validate    *validator.Validate
}

func NewHandler(lifecycle *attendance.LifecycleManager, coordinator *attendance.Coordinator) *Handler {
	return &Handler{
		lifecycle:   lifecycle,
		coordinator: coordinator,
		validate:    validator.New(),
	}
}

func (h *Handler) Register(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/sessions", h.createSession)
	api.Get("/sessions/:id", h.getSession)
	api.Patch("/sessions/:id", h.updateSession)
	api.Post("/sessions/:id/close", h.closeSession)
	api.Post("/sessions/:id/cancel", h.cancelSession)
	api.Delete("/sessions/:id", h.deleteSession)
	api.Get("/sessions/:id/records", h.listSessionRecords)
	api.Post("/sessions/:id/records", h.markManualStatus)

	api.Get("/courses/:courseId/sessions", h.listCourseSessions)
	api.Get("/owners/:ownerId/sessions", h.listOwnerSessions)
	api.Get("/participants/:id/records", h.listParticipantRecords)

	api.Post("/check-ins", h.registerCheckIn)
	api.Patch("/records/:id/status", h.updateRecordStatus)
}

type createSessionRequest struct {
	CourseID         string `json:"courseId" validate:"required"`
	Title            string `json:"title" validate:"required"`
	Description      string `json:"description"`
	OwnerID          string `json:"ownerId" validate:"required"`
	Location         string `json:"location"`
	DurationMinutes  int    `json:"durationMinutes" validate:"required,gt=0"`
	LateAfterMinutes int    `json:"lateAfterMinutes" validate:"gte=0"`
}

func (h *Handler) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	sess, err := h.lifecycle.CreateSession(c.Context(), attendance.CreateSessionParams{
		CourseID:    req.CourseID,
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		Location:    req.Location,
		Duration:    time.Duration(req.DurationMinutes) * time.Minute,
		LateAfter:   time.Duration(req.LateAfterMinutes) * time.Minute,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sessionResponse(sess))
}

func (h *Handler) getSession(c *fiber.Ctx) error {
	sess, err := h.lifecycle.GetSession(c.Context(), c.Params("id"), time.Now().UTC())
	if err != nil {
		return h.fail(c, err)
	}
	if sess == nil {
		return notFound(c, "session not found")
	}
	return c.JSON(sessionResponse(sess))
}

type updateSessionRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (h *Handler) updateSession(c *fiber.Ctx) error {
	var req updateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	err := h.lifecycle.UpdateSession(c.Context(), repository.UpdateSessionInput{
		ID:          c.Params("id"),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) closeSession(c *fiber.Ctx) error {
	if err := h.lifecycle.CloseSession(c.Context(), c.Params("id"), time.Now().UTC()); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) cancelSession(c *fiber.Ctx) error {
	if err := h.lifecycle.CancelSession(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) deleteSession(c *fiber.Ctx) error {
	if err := h.lifecycle.DeleteSession(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) listCourseSessions(c *fiber.Ctx) error {
	sessions, err := h.lifecycle.ListByCourse(c.Context(), c.Params("courseId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sessionListResponse(sessions))
}

func (h *Handler) listOwnerSessions(c *fiber.Ctx) error {
	sessions, err := h.lifecycle.ListByOwner(c.Context(), c.Params("ownerId"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(sessionListResponse(sessions))
}

type checkInRequest struct {
	Token         string `json:"token"`
	Code          string `json:"code"`
	ParticipantID string `json:"participantId" validate:"required"`
}

// registerCheckIn accepts either a scanned token or a manually typed code;
// both resolve to the same registration call.
func (h *Handler) registerCheckIn(c *fiber.Ctx) error {
	var req checkInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	if (req.Token == "") == (req.Code == "") {
		return badRequest(c, "exactly one of token or code is required")
	}

	now := time.Now().UTC()
	var (
		rec *repository.Record
		err error
	)
	if req.Token != "" {
		rec, err = h.coordinator.RegisterCheckInByToken(c.Context(), req.Token, req.ParticipantID, now)
	} else {
		rec, err = h.coordinator.RegisterCheckInByCode(c.Context(), req.Code, req.ParticipantID, now)
	}
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recordResponse(rec))
}

func (h *Handler) listSessionRecords(c *fiber.Ctx) error {
	records, err := h.coordinator.ListSessionRecords(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(recordListResponse(records))
}

func (h *Handler) listParticipantRecords(c *fiber.Ctx) error {
	records, err := h.coordinator.ListParticipantRecords(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(recordListResponse(records))
}

type markStatusRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	Status        string `json:"status" validate:"required"`
}

func (h *Handler) markManualStatus(c *fiber.Ctx) error {
	var req markStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	status, err := repository.ParseRecordStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	rec, err := h.coordinator.MarkManualStatus(c.Context(), c.Params("id"), req.ParticipantID, status, time.Now().UTC())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(recordResponse(rec))
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateRecordStatus(c *fiber.Ctx) error {
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return badRequest(c, err.Error())
	}
	status, err := repository.ParseRecordStatus(req.Status)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := h.coordinator.OverrideStatus(c.Context(), c.Params("id"), status); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// fail maps engine errors onto HTTP statuses. Duplicate and closed-window
// outcomes are ordinary negative answers, not server failures; storage
// errors come back generic with retry guidance.
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrRecordNotFound),
		errors.Is(err, attendance.ErrParticipantNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, repository.ErrDuplicateRecord),
		errors.Is(err, attendance.ErrSessionClosed):
		return c.Status(fiber.StatusConflict).JSON(errorBody(err.Error()))
	case errors.Is(err, attendance.ErrInvalidParticipant):
		return c.Status(fiber.StatusForbidden).JSON(errorBody(err.Error()))
	case errors.Is(err, attendance.ErrMalformedToken):
		return badRequest(c, err.Error())
	}
	return c.Status(fiber.StatusInternalServerError).
		JSON(errorBody("temporary failure, please try again"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorBody(msg))
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(errorBody(msg))
}

func errorBody(msg string) fiber.Map {
	return fiber.Map{"error": msg}
}
