package handler

// resource_manage.go holds the staff-facing resource management API:
// creating resources, editing them, and moving them through the DRAFT ->
// PUBLISHED -> ARCHIVED lifecycle.  Staff manage only their own
// resources; admins manage all of them.

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campusbook/resource-booking/internal/model"
	"github.com/campusbook/resource-booking/internal/repository"
)

// StaffHandler bundles repositories for resource management endpoints.
type StaffHandler struct {
	Resources *repository.ResourceRepo
}

func NewStaffHandler(resources *repository.ResourceRepo) *StaffHandler {
	if resources == nil {
		panic("nil repository passed to NewStaffHandler")
	}
	return &StaffHandler{Resources: resources}
}

type resourceReq struct {
	Title            string  `json:"title"`
	Description      *string `json:"description"`
	CategoryID       *uint64 `json:"category_id"`
	LocationID       *uint64 `json:"location_id"`
	Capacity         uint32  `json:"capacity"`
	RequiresApproval *bool   `json:"requires_approval"`
}

// patchResourceReq carries partial updates: absent fields keep their
// stored value.
type patchResourceReq struct {
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	CategoryID       *uint64 `json:"category_id"`
	LocationID       *uint64 `json:"location_id"`
	Capacity         *uint32 `json:"capacity"`
	RequiresApproval *bool   `json:"requires_approval"`
}

type resourceResp struct {
	ID               uint64  `json:"id"`
	Title            string  `json:"title"`
	Description      *string `json:"description,omitempty"`
	CategoryID       *uint64 `json:"category_id,omitempty"`
	LocationID       *uint64 `json:"location_id,omitempty"`
	Capacity         uint32  `json:"capacity"`
	Status           string  `json:"status"`
	RequiresApproval bool    `json:"requires_approval"`
	RatingAvg        float64 `json:"rating_avg"`
	RatingCount      uint32  `json:"rating_count"`
}

func toResourceResp(r model.Resource) resourceResp {
	return resourceResp{
		ID:               r.ID,
		Title:            r.Title,
		Description:      r.Description,
		CategoryID:       r.CategoryID,
		LocationID:       r.LocationID,
		Capacity:         r.Capacity,
		Status:           string(r.Status),
		RequiresApproval: r.RequiresApproval,
		RatingAvg:        r.RatingAvg,
		RatingCount:      r.RatingCount,
	}
}

// canManage reports whether the caller may modify the resource: its
// creator or any admin.
func canManage(c echo.Context, r model.Resource) bool {
	if isAdmin(c) {
		return true
	}
	uid, err := getUserID(c)
	return err == nil && r.CreatedBy == uid
}

// CreateResource creates a new resource in DRAFT status.  New bookings
// require approval by default; staff can opt out per resource.
func (h *StaffHandler) CreateResource(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req resourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	requiresApproval := true
	if req.RequiresApproval != nil {
		requiresApproval = *req.RequiresApproval
	}

	res := model.Resource{
		Title:            req.Title,
		Description:      req.Description,
		CategoryID:       req.CategoryID,
		LocationID:       req.LocationID,
		Capacity:         req.Capacity,
		Status:           model.ResourceDraft,
		RequiresApproval: requiresApproval,
		CreatedBy:        uid,
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Resources.Create(ctx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create resource failed"})
	}
	return c.JSON(http.StatusCreated, toResourceResp(res))
}

// UpdateResource edits an existing resource.  Fields absent from the
// body are left unchanged.
func (h *StaffHandler) UpdateResource(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req patchResourceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !canManage(c, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
		}
		res.Title = title
	}
	if req.Description != nil {
		res.Description = req.Description
	}
	if req.CategoryID != nil {
		res.CategoryID = req.CategoryID
	}
	if req.LocationID != nil {
		res.LocationID = req.LocationID
	}
	if req.Capacity != nil {
		res.Capacity = *req.Capacity
	}
	if req.RequiresApproval != nil {
		res.RequiresApproval = *req.RequiresApproval
	}

	if err := h.Resources.Update(ctx, &res); err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update resource failed"})
	}
	return c.JSON(http.StatusOK, toResourceResp(res))
}

// PublishResource makes a draft or archived resource visible and
// bookable.
func (h *StaffHandler) PublishResource(c echo.Context) error {
	return h.setStatus(c, model.ResourcePublished)
}

// ArchiveResource retires a resource.  Existing bookings keep their
// lifecycle but no new ones can be created.
func (h *StaffHandler) ArchiveResource(c echo.Context) error {
	return h.setStatus(c, model.ResourceArchived)
}

// UnarchiveResource returns an archived resource to DRAFT so it can be
// reworked and republished.
func (h *StaffHandler) UnarchiveResource(c echo.Context) error {
	return h.setStatus(c, model.ResourceDraft)
}

func (h *StaffHandler) setStatus(c echo.Context, status model.ResourceStatus) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	res, err := h.Resources.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrResourceNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "resource not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !canManage(c, res) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if res.Status == status {
		return c.JSON(http.StatusOK, toResourceResp(res))
	}

	if err := h.Resources.SetStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update status failed"})
	}
	res.Status = status
	return c.JSON(http.StatusOK, toResourceResp(res))
}
