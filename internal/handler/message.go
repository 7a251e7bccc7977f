package handler

// message.go implements the per-booking message thread.  Only the
// booking's participants (its requester, the resource's creator and
// admins) may read or post.  Any participant can report a message for
// moderation.

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/booking"
	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

const maxMessageLen = 2000

// MessageHandler bundles repositories for message endpoints.
type MessageHandler struct {
	Messages  *repository.MessageRepo
	Bookings  *repository.BookingRepo
	Resources *repository.ResourceRepo
}

func NewMessageHandler(messages *repository.MessageRepo, bookings *repository.BookingRepo, resources *repository.ResourceRepo) *MessageHandler {
	if messages == nil || bookings == nil || resources == nil {
		panic("nil dependency passed to NewMessageHandler")
	}
	return &MessageHandler{Messages: messages, Bookings: bookings, Resources: resources}
}

type postMessageReq struct {
	Body        string  `json:"body"`
	RecipientID *uint64 `json:"recipient_id"`
}

type messageResp struct {
	ID          uint64    `json:"id"`
	BookingID   uint64    `json:"booking_id"`
	SenderID    uint64    `json:"sender_id"`
	RecipientID *uint64   `json:"recipient_id,omitempty"`
	Body        string    `json:"body"`
	IsReported  bool      `json:"is_reported"`
	IsHidden    bool      `json:"is_hidden"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMessageResp(m model.Message) messageResp {
	return messageResp{
		ID:          m.ID,
		BookingID:   m.BookingID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Body:        m.Body,
		IsReported:  m.IsReported,
		IsHidden:    m.IsHidden,
		CreatedAt:   m.CreatedAt,
	}
}

// participant loads the booking and its resource; callers run the
// isParticipant check on the result.
func (h *MessageHandler) participant(c echo.Context, bookingID uint64) (model.Booking, model.Resource, error) {
	ctx, cancel := reqContext(c)
	defer cancel()

	b, err := h.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, model.Resource{}, err
	}
	res, err := h.Resources.GetByID(ctx, b.ResourceID)
	if err != nil {
		return model.Booking{}, model.Resource{}, err
	}
	return b, res, nil
}

func isParticipant(c echo.Context, uid uint64, b model.Booking, res model.Resource) bool {
	return isAdmin(c) || b.UserID == uid || res.CreatedBy == uid
}

// PostMessage appends a message to the booking's thread.
func (h *MessageHandler) PostMessage(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req postMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body required"})
	}
	if tooLong(req.Body, maxMessageLen) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "body too long"})
	}

	b, res, err := h.participant(c, bookingID)
	if err != nil {
		return messageLoadError(c, err)
	}
	if !isParticipant(c, uid, b, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	// Rejected and cancelled bookings have nothing left to discuss.
	if b.Status == model.BookingRejected || b.Status == model.BookingCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking thread is closed"})
	}
	// A directed recipient must themselves be a participant.
	if req.RecipientID != nil {
		r := *req.RecipientID
		if r != b.UserID && r != res.CreatedBy {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "recipient is not a participant"})
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	m := model.Message{BookingID: bookingID, SenderID: uid, RecipientID: req.RecipientID, Body: req.Body}
	if err := h.Messages.Create(ctx, &m); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create message failed"})
	}
	return c.JSON(http.StatusCreated, toMessageResp(m))
}

// ListMessages returns the booking's thread oldest first.  Admins see
// hidden messages too; ?page= and ?page_size= paginate.
func (h *MessageHandler) ListMessages(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	b, res, err := h.participant(c, bookingID)
	if err != nil {
		return messageLoadError(c, err)
	}
	if !isParticipant(c, uid, b, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	pageSize := queryInt(c, "page_size", 50)
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	includeHidden := isAdmin(c) && c.QueryParam("include_hidden") == "true"
	msgs, err := h.Messages.ListForBooking(ctx, bookingID, includeHidden, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]messageResp, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ReportMessage flags a message for admin moderation.
func (h *MessageHandler) ReportMessage(c echo.Context) error {
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

	m, err := h.Messages.GetByID(ctx, id)
	if err != nil {
		return messageLoadError(c, err)
	}
	b, res, err := h.participant(c, m.BookingID)
	if err != nil {
		return messageLoadError(c, err)
	}
	if !isParticipant(c, uid, b, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if err := h.Messages.SetReported(ctx, id, true); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

func messageLoadError(c echo.Context, err error) error {
	switch err {
	case booking.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case repository.ErrMessageNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
	case repository.ErrResourceNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
