// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file defines the public browsing API: unauthenticated
// users can search published resources, inspect a resource's details and
// reviews, and check its availability.  Internal fields (creator IDs,
// moderation flags) are filtered from responses.

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated
// browsing.  It produces sanitized responses suitable for public
// consumption.
type PublicHandler struct {
	Resources *repository.ResourceRepo
	Bookings  *repository.BookingRepo
	Reviews   *repository.ReviewRepo
	Taxonomy  *repository.TaxonomyRepo
}

// PublicResource is a resource as exposed in list responses.
type PublicResource struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	CategoryID  *uint64 `json:"category_id,omitempty"`
	LocationID  *uint64 `json:"location_id,omitempty"`
	Capacity    uint32  `json:"capacity"`
	RatingAvg   float64 `json:"rating_avg"`
	RatingCount uint32  `json:"rating_count"`
}

// PublicReview is a visible review in detail responses.
type PublicReview struct {
	Rating    uint8     `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BusySlot is an occupied window in availability responses.  Booking ids
// and requester identities are not exposed to guests.
type BusySlot struct {
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
	Status   string    `json:"status"`
}

func publicResource(r model.Resource) PublicResource {
	return PublicResource{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		LocationID:  r.LocationID,
		Capacity:    r.Capacity,
		RatingAvg:   r.RatingAvg,
		RatingCount: r.RatingCount,
	}
}

// SearchResources lists published resources with optional filters:
// ?q= text match, ?category_id=, ?location_id=, ?min_capacity=, plus
// ?page= and ?page_size= for pagination.
func (h *PublicHandler) SearchResources(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	q := repository.SearchQuery{
		Q:           c.QueryParam("q"),
		CategoryID:  queryUint(c, "category_id"),
		LocationID:  queryUint(c, "location_id"),
		MinCapacity: uint32(queryUint(c, "min_capacity")),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 20),
	}
	items, total, err := h.Resources.Search(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicResource, 0, len(items))
	for _, r := range items {
		out = append(out, publicResource(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "total": total})
}

// GetResource returns one published resource with its visible reviews.
// Draft and archived resources are hidden from guests.
func (h *PublicHandler) GetResource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	r, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if r.Status != model.ResourcePublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}

	reviews, err := h.Reviews.ListVisible(ctx, id, queryInt(c, "reviews", 10), 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	outReviews := make([]PublicReview, 0, len(reviews))
	for _, rv := range reviews {
		outReviews = append(outReviews, PublicReview{Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"resource": publicResource(r),
		"reviews":  outReviews,
	})
}

// ResourceBookings returns the resource's occupied windows (PENDING and
// APPROVED bookings) so a guest can pick a free slot before registering.
// Requester identities and booking ids are not exposed.
func (h *PublicHandler) ResourceBookings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	r, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if r.Status != model.ResourcePublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}

	bookings, err := h.Bookings.ListForResource(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	slots := make([]BusySlot, 0, len(bookings))
	for _, b := range bookings {
		slots = append(slots, BusySlot{StartsAt: b.StartsAt, EndsAt: b.EndsAt, Status: string(b.Status)})
	}
	return c.JSON(http.StatusOK, echo.Map{"resource_id": id, "busy": slots})
}

// ListReviews returns the resource's visible reviews, paginated with
// ?page= and ?page_size=.
func (h *PublicHandler) ListReviews(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	r, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if r.Status != model.ResourcePublished {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
	}

	pageSize := queryInt(c, "page_size", 20)
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	reviews, err := h.Reviews.ListVisible(ctx, id, pageSize, (page-1)*pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicReview, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, PublicReview{Rating: rv.Rating, Comment: rv.Comment, CreatedAt: rv.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out, "rating_avg": r.RatingAvg, "rating_count": r.RatingCount})
}

// PublicCategory and PublicLocation expose taxonomy entries for filter
// pickers.
type PublicCategory struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type PublicLocation struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Building *string `json:"building,omitempty"`
	Floor    *string `json:"floor,omitempty"`
}

// ListCategories returns active categories for filter pickers.
func (h *PublicHandler) ListCategories(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Taxonomy.ListCategories(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicCategory, 0, len(items))
	for _, cat := range items {
		out = append(out, PublicCategory{ID: cat.ID, Name: cat.Name, Description: cat.Description})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListLocations returns active locations for filter pickers.
func (h *PublicHandler) ListLocations(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	items, err := h.Taxonomy.ListLocations(ctx, false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicLocation, 0, len(items))
	for _, loc := range items {
		out = append(out, PublicLocation{ID: loc.ID, Name: loc.Name, Building: loc.Building, Floor: loc.Floor})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
