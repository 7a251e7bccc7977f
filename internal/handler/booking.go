package handler

// booking.go exposes the booking lifecycle over HTTP.  Creation and every
// status transition go through the booking engine, which owns conflict
// detection and the transition rules; this file only adds authorization,
// request parsing and error translation.

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/booking"
	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

// BookingHandler bundles the engine and repositories for booking
// endpoints.
type BookingHandler struct {
	Engine    *booking.Engine
	Bookings  *repository.BookingRepo
	Resources *repository.ResourceRepo
	Messages  *repository.MessageRepo
}

func NewBookingHandler(engine *booking.Engine, bookings *repository.BookingRepo, resources *repository.ResourceRepo, messages *repository.MessageRepo) *BookingHandler {
	if engine == nil || bookings == nil || resources == nil || messages == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Bookings: bookings, Resources: resources, Messages: messages}
}

type createBookingReq struct {
	ResourceID uint64    `json:"resource_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
}

type bookingResp struct {
	ID         uint64    `json:"id"`
	ResourceID uint64    `json:"resource_id"`
	UserID     uint64    `json:"user_id"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:         b.ID,
		ResourceID: b.ResourceID,
		UserID:     b.UserID,
		StartsAt:   b.StartsAt,
		EndsAt:     b.EndsAt,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

// bookingError translates engine errors into HTTP responses.  Validation
// problems map to 422, conflicts and impossible transitions to 409, and
// unknown bookings to 404.
func bookingError(c echo.Context, err error) error {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "time window conflicts with an existing booking",
			"conflict": echo.Map{
				"booking_id": conflict.BookingID,
				"starts_at":  conflict.StartsAt,
				"ends_at":    conflict.EndsAt,
			},
		})
	}
	var invalid *booking.InvalidTransitionError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error": invalid.Error(),
			"from":  string(invalid.From),
			"to":    string(invalid.To),
		})
	}
	switch {
	case errors.Is(err, booking.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.Is(err, repository.ErrResourceNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	case errors.Is(err, booking.ErrInvalidOrder),
		errors.Is(err, booking.ErrTooShort),
		errors.Is(err, booking.ErrInThePast):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrTooEarly):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking operation failed"})
}

// CreateBooking books a time window on a published resource.  The engine
// decides PENDING vs APPROVED from the resource's approval flag and
// rejects overlapping windows.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil || req.ResourceID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "resource_id, starts_at and ends_at required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	// Publication and capacity are request-level gates, checked before
	// the engine runs so guests get a clear error instead of a generic
	// conflict.
	res, err := h.Resources.GetByID(ctx, req.ResourceID)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if res.Status != model.ResourcePublished {
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource is not open for booking"})
	}
	if res.Capacity == 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": "resource is not bookable"})
	}

	actor := booking.Actor{UserID: uid, Admin: isAdmin(c)}
	b, err := h.Engine.Create(ctx, actor, req.ResourceID, uid, req.StartsAt, req.EndsAt)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// MyBookings lists the caller's bookings, newest window first.
func (h *BookingHandler) MyBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Bookings.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetBooking returns one booking with overlap warnings and the recent
// message thread.  Visible to the requester, the resource's creator and
// admins.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	b, err := h.Bookings.GetBooking(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	res, err := h.Resources.GetByID(ctx, b.ResourceID)
	if err != nil {
		return bookingError(c, err)
	}
	if !isAdmin(c) && b.UserID != uid && res.CreatedBy != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	overlapping, err := h.Bookings.ListOverlapping(ctx, b.ResourceID, b.StartsAt, b.EndsAt, b.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	warnings := make([]bookingResp, 0, len(overlapping))
	for _, o := range overlapping {
		warnings = append(warnings, toBookingResp(o))
	}

	msgs, err := h.Messages.ListForBooking(ctx, b.ID, false, 20, 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	outMsgs := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		outMsgs = append(outMsgs, toMessageResp(m))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"booking":     toBookingResp(b),
		"overlapping": warnings,
		"messages":    outMsgs,
	})
}

// Approve confirms a pending booking.  Only the resource's creator or an
// admin may approve; the engine re-checks conflicts before committing.
func (h *BookingHandler) Approve(c echo.Context) error {
	return h.transition(c, managerOnly, h.Engine.Approve)
}

// Reject declines a pending booking.  Same authorization as Approve.
func (h *BookingHandler) Reject(c echo.Context) error {
	return h.transition(c, managerOnly, h.Engine.Reject)
}

// Cancel withdraws a booking.  The requester may cancel their own
// booking; admins may cancel any.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, requesterOnly, h.Engine.Cancel)
}

// Complete closes an approved booking whose window has elapsed.  Only
// the resource's creator or an admin may complete.
func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, managerOnly, h.Engine.Complete)
}

// authzRule decides whether the caller may run a transition on the
// booking given the owning resource.
type authzRule func(c echo.Context, uid uint64, b model.Booking, res model.Resource) bool

// managerOnly allows the resource's creator and admins.
func managerOnly(c echo.Context, uid uint64, _ model.Booking, res model.Resource) bool {
	return isAdmin(c) || (isStaff(c) && res.CreatedBy == uid)
}

// requesterOnly allows the booking's requester and admins.
func requesterOnly(c echo.Context, uid uint64, b model.Booking, _ model.Resource) bool {
	return isAdmin(c) || b.UserID == uid
}

// engineOp is the shared shape of the engine's transition methods.
type engineOp func(ctx context.Context, actor booking.Actor, bookingID uint64) (model.Booking, error)

func (h *BookingHandler) transition(c echo.Context, rule authzRule, op engineOp) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, id)
	if err != nil {
		return bookingError(c, err)
	}
	res, err := h.Resources.GetByID(ctx, b.ResourceID)
	if err != nil {
		return bookingError(c, err)
	}
	if !rule(c, uid, b, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	actor := booking.Actor{UserID: uid, Admin: isAdmin(c)}
	updated, err := op(ctx, actor, id)
	if err != nil {
		return bookingError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(updated))
}
