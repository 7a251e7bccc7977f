package handler

// review.go implements eligibility-gated reviews: a user may review a
// resource only after at least one COMPLETED booking there, and holds at
// most one review per resource (posting again replaces it).

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

const maxReviewLen = 2000

// ReviewHandler bundles repositories for review endpoints.
type ReviewHandler struct {
	Reviews   *repository.ReviewRepo
	Bookings  *repository.BookingRepo
	Resources *repository.ResourceRepo
}

func NewReviewHandler(reviews *repository.ReviewRepo, bookings *repository.BookingRepo, resources *repository.ResourceRepo) *ReviewHandler {
	if reviews == nil || bookings == nil || resources == nil {
		panic("nil dependency passed to NewReviewHandler")
	}
	return &ReviewHandler{Reviews: reviews, Bookings: bookings, Resources: resources}
}

type putReviewReq struct {
	Rating  uint8   `json:"rating"`
	Comment *string `json:"comment"`
}

type reviewResp struct {
	ID         uint64    `json:"id"`
	ResourceID uint64    `json:"resource_id"`
	UserID     uint64    `json:"user_id"`
	Rating     uint8     `json:"rating"`
	Comment    *string   `json:"comment,omitempty"`
	IsReported bool      `json:"is_reported"`
	IsHidden   bool      `json:"is_hidden"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toReviewResp(rv model.Review) reviewResp {
	return reviewResp{
		ID:         rv.ID,
		ResourceID: rv.ResourceID,
		UserID:     rv.UserID,
		Rating:     rv.Rating,
		Comment:    rv.Comment,
		IsReported: rv.IsReported,
		IsHidden:   rv.IsHidden,
		CreatedAt:  rv.CreatedAt,
		UpdatedAt:  rv.UpdatedAt,
	}
}

// PutReview creates or replaces the caller's review of a resource.
func (h *ReviewHandler) PutReview(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resourceID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req putReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "rating must be between 1 and 5"})
	}
	if req.Comment != nil {
		trimmed := strings.TrimSpace(*req.Comment)
		if trimmed == "" {
			req.Comment = nil
		} else if tooLong(trimmed, maxReviewLen) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "comment too long"})
		} else {
			req.Comment = &trimmed
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if _, err := h.Resources.GetByID(ctx, resourceID); err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	eligible, err := h.Bookings.HasCompletedBooking(ctx, uid, resourceID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !eligible {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "a completed booking is required to review"})
	}

	rv := model.Review{ResourceID: resourceID, UserID: uid, Rating: req.Rating, Comment: req.Comment}
	if err := h.Reviews.Upsert(ctx, &rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save review failed"})
	}
	return c.JSON(http.StatusOK, toReviewResp(rv))
}

// MyReview returns the caller's review of a resource, if any.
func (h *ReviewHandler) MyReview(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	resourceID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rv, err := h.Reviews.GetByResourceUser(ctx, resourceID, uid)
	if err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, toReviewResp(rv))
}

// ReportReview flags a review for admin moderation.  Any authenticated
// user may report.
func (h *ReviewHandler) ReportReview(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Reviews.SetReported(ctx, id, true); err != nil {
		if err == repository.ErrReviewNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "review not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
