package handler

// admin.go groups the ADMIN-only surface: the pending-booking queue,
// moderation of reported messages and reviews, taxonomy management,
// user and resource overviews, and the audit log.  Every moderation or
// taxonomy write appends an admin_logs record.

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

// AdminHandler bundles every repository the admin surface touches.
type AdminHandler struct {
	Bookings  *repository.BookingRepo
	Messages  *repository.MessageRepo
	Reviews   *repository.ReviewRepo
	Users     *repository.UserRepo
	Resources *repository.ResourceRepo
	Taxonomy  *repository.TaxonomyRepo
	Logs      *repository.AdminLogRepo
}

func NewAdminHandler(b *repository.BookingRepo, m *repository.MessageRepo, rv *repository.ReviewRepo, u *repository.UserRepo, res *repository.ResourceRepo, tax *repository.TaxonomyRepo, logs *repository.AdminLogRepo) *AdminHandler {
	if b == nil || m == nil || rv == nil || u == nil || res == nil || tax == nil || logs == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Bookings: b, Messages: m, Reviews: rv, Users: u, Resources: res, Taxonomy: tax, Logs: logs}
}

// audit appends an audit record for a completed admin action.  Failures
// are reported to the request logger but do not fail the action, which
// has already been committed.
func (h *AdminHandler) audit(c echo.Context, action, table string, targetID uint64, detail string) {
	uid, err := getUserID(c)
	if err != nil {
		return
	}
	entry := model.AdminLog{AdminID: uid, Action: action, TargetTable: table, TargetID: targetID, IPAddr: clientIP(c)}
	if detail != "" {
		entry.Detail = &detail
	}
	ctx, cancel := reqContext(c)
	defer cancel()
	if err := h.Logs.Insert(ctx, entry); err != nil {
		c.Logger().Errorf("audit insert failed: %v", err)
	}
}

// PendingBookings returns the oldest pending bookings for the approval
// queue.
func (h *AdminHandler) PendingBookings(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Bookings.ListPending(ctx, queryInt(c, "limit", 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ReportedMessages lists messages flagged for moderation.
func (h *AdminHandler) ReportedMessages(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Messages.ListReported(ctx, queryInt(c, "limit", 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]messageResp, 0, len(items))
	for _, m := range items {
		out = append(out, toMessageResp(m))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// HideMessage hides a reported message from participants.
func (h *AdminHandler) HideMessage(c echo.Context) error {
	return h.setMessageHidden(c, true, "hide_message")
}

// UnhideMessage restores a hidden message.
func (h *AdminHandler) UnhideMessage(c echo.Context) error {
	return h.setMessageHidden(c, false, "unhide_message")
}

func (h *AdminHandler) setMessageHidden(c echo.Context, hidden bool, action string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Messages.SetHidden(ctx, id, hidden); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "moderation failed"})
	}
	h.audit(c, action, "messages", id, "")
	return c.NoContent(http.StatusNoContent)
}

// ReportedReviews lists reviews flagged for moderation.
func (h *AdminHandler) ReportedReviews(c echo.Context) error {
	return h.listReviews(c, h.Reviews.ListReported)
}

// HiddenReviews lists reviews an admin has hidden, so decisions can be
// audited and reversed.
func (h *AdminHandler) HiddenReviews(c echo.Context) error {
	return h.listReviews(c, h.Reviews.ListHidden)
}

func (h *AdminHandler) listReviews(c echo.Context, list func(ctx context.Context, limit int) ([]model.Review, error)) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := list(ctx, queryInt(c, "limit", 50))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reviewResp, 0, len(items))
	for _, rv := range items {
		out = append(out, toReviewResp(rv))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// HideReview hides a review; the resource rating aggregate is recomputed
// without it.
func (h *AdminHandler) HideReview(c echo.Context) error {
	return h.setReviewHidden(c, true, "hide_review")
}

// UnhideReview restores a hidden review into listings and the rating
// aggregate.
func (h *AdminHandler) UnhideReview(c echo.Context) error {
	return h.setReviewHidden(c, false, "unhide_review")
}

func (h *AdminHandler) setReviewHidden(c echo.Context, hidden bool, action string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Reviews.SetHidden(ctx, id, hidden); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "moderation failed"})
	}
	h.audit(c, action, "reviews", id, "")
	return c.NoContent(http.StatusNoContent)
}

// DismissMessageReport clears a report without hiding the message.
func (h *AdminHandler) DismissMessageReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Messages.SetReported(ctx, id, false); err != nil {
		if err == repository.ErrMessageNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "message not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "moderation failed"})
	}
	h.audit(c, "dismiss_message_report", "messages", id, "")
	return c.NoContent(http.StatusNoContent)
}

// DismissReviewReport clears a report without hiding the review.
func (h *AdminHandler) DismissReviewReport(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Reviews.SetReported(ctx, id, false); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "moderation failed"})
	}
	h.audit(c, "dismiss_review_report", "reviews", id, "")
	return c.NoContent(http.StatusNoContent)
}

// ListUsers returns users, optionally filtered by ?role=.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	role := strings.ToUpper(strings.TrimSpace(c.QueryParam("role")))
	items, err := h.Users.List(ctx, role, queryInt(c, "limit", 100))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]userPart, 0, len(items))
	for _, u := range items {
		out = append(out, userPart{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListResources returns resources in any status, optionally filtered by
// ?status=.
func (h *AdminHandler) ListResources(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	status := model.ResourceStatus(strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))))
	items, err := h.Resources.ListAdmin(ctx, status, queryInt(c, "limit", 100))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]resourceResp, 0, len(items))
	for _, r := range items {
		out = append(out, toResourceResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// AuditLog returns the newest audit records first.
func (h *AdminHandler) AuditLog(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(c, "limit", 50)
	items, err := h.Logs.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]adminLogResp, 0, len(items))
	for _, e := range items {
		out = append(out, adminLogResp{
			ID:          e.ID,
			AdminID:     e.AdminID,
			Action:      e.Action,
			TargetTable: e.TargetTable,
			TargetID:    e.TargetID,
			Detail:      e.Detail,
			IPAddr:      e.IPAddr,
			CreatedAt:   e.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

type adminLogResp struct {
	ID          uint64    `json:"id"`
	AdminID     uint64    `json:"admin_id"`
	Action      string    `json:"action"`
	TargetTable string    `json:"target_table"`
	TargetID    uint64    `json:"target_id"`
	Detail      *string   `json:"detail,omitempty"`
	IPAddr      *string   `json:"ip_addr,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ----- taxonomy management -----

type categoryReq struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type locationReq struct {
	Name     string  `json:"name"`
	Building *string `json:"building"`
	Floor    *string `json:"floor"`
}

// CreateCategory adds a category for resource filing.
func (h *AdminHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	cat := model.Category{Name: strings.TrimSpace(req.Name), Description: req.Description}
	if err := h.Taxonomy.CreateCategory(ctx, &cat); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create category failed"})
	}
	h.audit(c, "create_category", "categories", cat.ID, cat.Name)
	return c.JSON(http.StatusCreated, PublicCategory{ID: cat.ID, Name: cat.Name, Description: cat.Description})
}

// SetCategoryActive toggles a category's availability in pickers.
func (h *AdminHandler) SetCategoryActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	active := c.QueryParam("active") != "false"

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Taxonomy.SetCategoryActive(ctx, id, active); err != nil {
		if err == repository.ErrCategoryNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "category not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update category failed"})
	}
	h.audit(c, fmt.Sprintf("set_category_active=%t", active), "categories", id, "")
	return c.NoContent(http.StatusNoContent)
}

// CreateLocation adds a location for resource filing.
func (h *AdminHandler) CreateLocation(c echo.Context) error {
	var req locationReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	loc := model.Location{Name: strings.TrimSpace(req.Name), Building: req.Building, Floor: req.Floor}
	if err := h.Taxonomy.CreateLocation(ctx, &loc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create location failed"})
	}
	h.audit(c, "create_location", "locations", loc.ID, loc.Name)
	return c.JSON(http.StatusCreated, PublicLocation{ID: loc.ID, Name: loc.Name, Building: loc.Building, Floor: loc.Floor})
}

// SetLocationActive toggles a location's availability in pickers.
func (h *AdminHandler) SetLocationActive(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	active := c.QueryParam("active") != "false"

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Taxonomy.SetLocationActive(ctx, id, active); err != nil {
		if err == repository.ErrLocationNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "location not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update location failed"})
	}
	h.audit(c, fmt.Sprintf("set_location_active=%t", active), "locations", id, "")
	return c.NoContent(http.StatusNoContent)
}
