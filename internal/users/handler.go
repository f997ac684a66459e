package users

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qualitrack/backend/internal/lob"
	"github.com/qualitrack/backend/internal/models"
	"github.com/qualitrack/backend/internal/organizations"
	"github.com/qualitrack/backend/pkg/response"
	"github.com/qualitrack/backend/pkg/storage"
	"github.com/qualitrack/backend/pkg/utils"
)

// BulkErrorCap limits how many row errors a bulk upload response reports.
const BulkErrorCap = 5

// Handler serves the user management endpoints.
type Handler struct {
	repo    *Repository
	lobRepo *lob.Repository
	s3      *storage.S3
	logger  *zap.Logger
}

// NewHandler creates a users handler. s3 may be nil, in which case uploaded
// workbooks are not archived.
func NewHandler(repo *Repository, lobRepo *lob.Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, lobRepo: lobRepo, s3: s3, logger: logger}
}

// List handles GET /api/organizations/:orgId/users.
func (h *Handler) List(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list users", zap.Error(err))
		response.Internal(c, "failed to list users")
		return
	}
	if list == nil {
		list = []models.UserPublic{}
	}
	response.OK(c, list)
}

// Tree handles GET /api/organizations/:orgId/users/tree, returning the
// reporting hierarchy as a forest.
func (h *Handler) Tree(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list users for tree", zap.Error(err))
		response.Internal(c, "failed to build reporting tree")
		return
	}
	response.OK(c, BuildTree(list))
}

// CreateRequest is the payload for creating a user.
type CreateRequest struct {
	Email            string     `json:"email" binding:"required,email"`
	Password         string     `json:"password" binding:"required,min=8"`
	FullName         string     `json:"fullName" binding:"required,min=2,max=120"`
	EmployeeID       string     `json:"employeeId" binding:"required,max=40"`
	Role             string     `json:"role" binding:"required"`
	Location         string     `json:"location" binding:"max=120"`
	LineOfBusinessID *uuid.UUID `json:"lineOfBusinessId"`
	ProcessID        *uuid.UUID `json:"processId"`
	ManagerID        *uuid.UUID `json:"managerId"`
}

// Create handles POST /api/organizations/:orgId/users.
func (h *Handler) Create(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if !models.ValidRole(req.Role) {
		response.BadRequest(c, "invalid role")
		return
	}
	if models.RoleRequiresLineOfBusiness(models.Role(req.Role)) && req.LineOfBusinessID == nil {
		response.BadRequest(c, "line of business is required for role "+req.Role)
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}
	u := &models.User{
		OrganizationID:   &orgID,
		Email:            strings.ToLower(req.Email),
		Password:         hash,
		FullName:         req.FullName,
		EmployeeID:       req.EmployeeID,
		Role:             models.Role(req.Role),
		Location:         req.Location,
		LineOfBusinessID: req.LineOfBusinessID,
		ProcessID:        req.ProcessID,
		ManagerID:        req.ManagerID,
	}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			response.Conflict(c, "email already registered")
			return
		}
		h.logger.Error("create user", zap.Error(err))
		response.Internal(c, "failed to create user")
		return
	}
	response.Created(c, u.ToPublic())
}

// UpdateRequest is the payload for patching a user. All fields are optional.
type UpdateRequest struct {
	FullName         *string    `json:"fullName"`
	EmployeeID       *string    `json:"employeeId"`
	Role             *string    `json:"role"`
	Location         *string    `json:"location"`
	LineOfBusinessID *uuid.UUID `json:"lineOfBusinessId"`
	ProcessID        *uuid.UUID `json:"processId"`
	ManagerID        *uuid.UUID `json:"managerId"`
	Active           *bool      `json:"active"`
}

// Update handles PATCH /api/users/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		response.BadRequest(c, "invalid role")
		return
	}
	if req.ManagerID != nil && *req.ManagerID == id {
		response.BadRequest(c, "a user cannot be their own manager")
		return
	}
	u, err := h.repo.Update(c.Request.Context(), id, UpdateFields{
		FullName:         req.FullName,
		EmployeeID:       req.EmployeeID,
		Role:             req.Role,
		Location:         req.Location,
		LineOfBusinessID: req.LineOfBusinessID,
		ProcessID:        req.ProcessID,
		ManagerID:        req.ManagerID,
		Active:           req.Active,
	})
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.OK(c, u)
}

// Delete handles DELETE /api/users/:id. Users are deactivated, not removed,
// so that attendance and evaluation history stays intact.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.NoContent(c)
}

// BulkResult summarizes a bulk upload.
type BulkResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// Bulk handles POST /api/organizations/:orgId/users/bulk. The workbook is
// parsed and validated row by row, then users are created in two passes so a
// manager referenced by email can appear later in the same file.
func (h *Handler) Bulk(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	if fileHeader.Size > storage.MaxUploadFileSize {
		response.BadRequest(c, "file exceeds the 10MB limit")
		return
	}
	if !storage.ValidWorkbook(fileHeader.Header.Get("Content-Type"), fileHeader.Filename) {
		response.BadRequest(c, "only .xlsx workbooks are accepted")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(file); err != nil {
		response.BadRequest(c, "failed to read file")
		return
	}

	rows, rowErrs, err := ParseWorkbook(bytes.NewReader(buf.Bytes()))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result := BulkResult{Errors: rowErrs}
	created := make(map[string]uuid.UUID, len(rows))

	for _, row := range rows {
		if existing, err := h.repo.FindIDByEmail(c.Request.Context(), orgID, row.Email); err == nil && existing != uuid.Nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s already exists", row.Line, row.Email))
			continue
		}
		lobID, procID, err := h.lobRepo.ResolveNames(c.Request.Context(), orgID, row.LOB, row.Process)
		if err != nil {
			h.logger.Error("resolve line of business", zap.Error(err))
			response.Internal(c, "bulk upload failed")
			return
		}
		if row.LOB != "" && lobID == nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown line of business %q", row.Line, row.LOB))
			continue
		}
		if row.Process != "" && procID == nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown process %q", row.Line, row.Process))
			continue
		}
		hash, err := utils.HashPassword(uuid.NewString())
		if err != nil {
			h.logger.Error("hash password", zap.Error(err))
			response.Internal(c, "bulk upload failed")
			return
		}
		u := &models.User{
			OrganizationID:   &orgID,
			Email:            strings.ToLower(row.Email),
			Password:         hash,
			FullName:         row.FullName,
			EmployeeID:       row.EmployeeID,
			Role:             models.Role(row.Role),
			Location:         row.Location,
			LineOfBusinessID: lobID,
			ProcessID:        procID,
		}
		if err := h.repo.Create(c.Request.Context(), u); err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: failed to create %s", row.Line, row.Email))
			continue
		}
		created[strings.ToLower(row.Email)] = u.ID
		result.Created++
	}

	// Second pass links managers now that every creatable row exists.
	for _, row := range rows {
		if row.ManagerEmail == "" {
			continue
		}
		id, ok := created[strings.ToLower(row.Email)]
		if !ok {
			continue
		}
		mgrID, err := h.repo.FindIDByEmail(c.Request.Context(), orgID, row.ManagerEmail)
		if err != nil || mgrID == uuid.Nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: manager %s not found", row.Line, row.ManagerEmail))
			continue
		}
		if _, err := h.repo.Update(c.Request.Context(), id, UpdateFields{ManagerID: &mgrID}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: failed to link manager", row.Line))
		}
	}

	result.Errors = response.CapErrors(result.Errors, BulkErrorCap)

	if h.s3 != nil {
		key := storage.UploadKey(orgID.String(), uuid.NewString())
		if _, err := h.s3.Upload(c.Request.Context(), h.s3.UploadsBucket(), key,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
			h.logger.Warn("archive bulk upload", zap.Error(err))
		}
	}

	response.OK(c, result)
}

// Template handles GET /api/organizations/:orgId/users/bulk/template,
// streaming the upload workbook pre-filled with the organization's reference
// data.
func (h *Handler) Template(c *gin.Context) {
	orgID := c.MustGet(organizations.ContextOrganizationID).(uuid.UUID)

	lobs, err := h.lobRepo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		h.logger.Error("list lines of business for template", zap.Error(err))
		response.Internal(c, "failed to build template")
		return
	}
	procsByLOB := make(map[string][]string, len(lobs))
	for _, l := range lobs {
		procs, err := h.lobRepo.ListProcesses(c.Request.Context(), l.ID)
		if err != nil {
			h.logger.Error("list processes for template", zap.Error(err))
			response.Internal(c, "failed to build template")
			return
		}
		for _, p := range procs {
			procsByLOB[l.Name] = append(procsByLOB[l.Name], p.Name)
		}
	}
	locations, err := h.distinctLocations(c, orgID)
	if err != nil {
		h.logger.Error("list locations for template", zap.Error(err))
		response.Internal(c, "failed to build template")
		return
	}

	f, err := BuildTemplate(TemplateData{
		Locations:       locations,
		LineOfBusiness:  lobs,
		ProcessesByLOB:  procsByLOB,
		IncludeExamples: true,
	})
	if err != nil {
		h.logger.Error("build template workbook", zap.Error(err))
		response.Internal(c, "failed to build template")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="user-upload-template.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("stream template workbook", zap.Error(err))
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) distinctLocations(c *gin.Context, orgID uuid.UUID) ([]string, error) {
	list, err := h.repo.ListByOrganization(c.Request.Context(), orgID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, u := range list {
		if u.Location == "" || seen[u.Location] {
			continue
		}
		seen[u.Location] = true
		out = append(out, u.Location)
	}
	return out, nil
}
