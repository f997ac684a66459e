package organizations

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2–64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// Handler handles organization HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// CreateRequest is the body for POST /api/organizations.
type CreateRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// Create handles POST /api/organizations (admin only).
func (h *Handler) Create(c *gin.Context) {
	var body CreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	body.Slug = strings.ToLower(strings.TrimSpace(body.Slug))
	if !slugRegex.MatchString(body.Slug) {
		response.BadRequest(c, "slug must be 2–64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if len(body.Name) < 1 || len(body.Name) > 255 {
		response.BadRequest(c, "name must be 1–255 characters")
		return
	}
	org := &models.Organization{Name: body.Name, Slug: body.Slug}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "An organization with this slug already exists")
			return
		}
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// Get handles GET /api/organizations/:orgId.
func (h *Handler) Get(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.OK(c, org)
}

// GetSettings handles GET /api/organizations/:orgId/settings.
func (h *Handler) GetSettings(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	settings, err := h.repo.GetSettings(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load settings")
		return
	}
	response.OK(c, settings)
}

// UpdateSettingsRequest is the body for PATCH /api/organizations/:orgId/settings.
type UpdateSettingsRequest struct {
	Timezone        *string  `json:"timezone"`
	WeeklyOffDays   []string `json:"weekly_off_days"`
	DefaultCapacity *int     `json:"default_capacity"`
}

// UpdateSettings handles PATCH /api/organizations/:orgId/settings.
func (h *Handler) UpdateSettings(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("orgId"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var body UpdateSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	settings, err := h.repo.GetSettings(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load settings")
		return
	}
	if body.Timezone != nil {
		settings.Timezone = *body.Timezone
	}
	if body.WeeklyOffDays != nil {
		for _, d := range body.WeeklyOffDays {
			if !validWeekday(d) {
				response.BadRequest(c, "invalid weekday: "+d)
				return
			}
		}
		settings.WeeklyOffDays = body.WeeklyOffDays
	}
	if body.DefaultCapacity != nil {
		if *body.DefaultCapacity < 0 {
			response.BadRequest(c, "default capacity must not be negative")
			return
		}
		settings.DefaultCapacity = *body.DefaultCapacity
	}
	if err := h.repo.UpdateSettings(c.Request.Context(), settings); err != nil {
		response.Internal(c, "failed to update settings")
		return
	}
	response.OK(c, settings)
}

func validWeekday(s string) bool {
	switch strings.ToLower(s) {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}
