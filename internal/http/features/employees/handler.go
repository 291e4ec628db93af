package employees

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/insightguardian/insightguardian/internal/http/features/common"
	"github.com/insightguardian/insightguardian/internal/httputil"
	"github.com/insightguardian/insightguardian/pkg/domain"
	"github.com/insightguardian/insightguardian/pkg/workspace"
)

// Uploader stores an object and returns the URL it is publicly served from.
type Uploader interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Handler handles employee endpoints.
type Handler struct {
	logger        *slog.Logger
	workspace     *workspace.Service
	uploader      Uploader
	maxUploadSize int64
	now           func() time.Time
}

// NewHandler creates a new employees handler.
func NewHandler(logger *slog.Logger, ws *workspace.Service, uploader Uploader, maxUploadSize int64) *Handler {
	return &Handler{
		logger:        logger,
		workspace:     ws,
		uploader:      uploader,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
}

// EmployeeRequest is the body of create and update requests. On update,
// omitted or empty fields are left unchanged.
type EmployeeRequest struct {
	Name      *string  `json:"name"`
	Role      *string  `json:"role"`
	ImageURLs []string `json:"imageUrls"`
}

// ListResponse wraps the employee list.
type ListResponse struct {
	Employees []domain.Employee `json:"employees"`
}

// GetResponse wraps one employee.
type GetResponse struct {
	Employee *domain.Employee `json:"employee"`
}

// CreateResponse is returned after an employee is created.
type CreateResponse struct {
	Message    string `json:"message"`
	EmployeeID string `json:"employeeId"`
}

// MessageResponse represents a simple message response.
type MessageResponse struct {
	Message string `json:"message"`
}

// List returns the caller's employees.
// GET /api/employees
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}

	list, err := h.workspace.ListEmployees(r.Context(), orgID)
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to fetch employees")
		return
	}

	httputil.JSON(w, http.StatusOK, ListResponse{Employees: list})
}

// Create enrolls a new employee.
// POST /api/employees
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	e, err := h.workspace.CreateEmployee(r.Context(), orgID, workspace.CreateEmployeeInput{
		Name:      deref(req.Name),
		Role:      deref(req.Role),
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to add employee")
		return
	}

	httputil.JSON(w, http.StatusCreated, CreateResponse{
		Message:    "Employee added successfully",
		EmployeeID: e.ID.String(),
	})
}

// Get returns one employee.
// GET /api/employees/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	e, err := h.workspace.GetEmployee(r.Context(), orgID, id)
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to fetch employee")
		return
	}

	httputil.JSON(w, http.StatusOK, GetResponse{Employee: e})
}

// Update applies a partial update.
// PUT /api/employees/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.DecodeError(w, err)
		return
	}

	err := h.workspace.UpdateEmployee(r.Context(), orgID, id, domain.EmployeeUpdate{
		Name:      req.Name,
		Role:      req.Role,
		ImageURLs: req.ImageURLs,
	})
	if err != nil {
		common.WriteError(w, r, h.logger, err, "failed to update employee")
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Employee updated successfully"})
}

// Delete removes an employee.
// DELETE /api/employees/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := common.OrganizationID(w, r)
	if !ok {
		return
	}
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.workspace.DeleteEmployee(r.Context(), orgID, id); err != nil {
		common.WriteError(w, r, h.logger, err, "failed to delete employee")
		return
	}

	httputil.JSON(w, http.StatusOK, MessageResponse{Message: "Employee deleted successfully"})
}

// employeeID parses the {id} URL parameter. A malformed id cannot match any
// row, so it is reported as not found.
func employeeID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "employee not found")
		return uuid.Nil, false
	}
	return id, true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
