package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/neuronalfit/assessment-backend/internal/model"
	"github.com/neuronalfit/assessment-backend/internal/response"
	"github.com/neuronalfit/assessment-backend/internal/service"
	"github.com/neuronalfit/assessment-backend/internal/validator"
)

// StudentHandler handles student management.
type StudentHandler struct {
	studentService *service.StudentService
	sessionService *service.SessionService
}

// NewStudentHandler creates a new StudentHandler.
func NewStudentHandler(studentService *service.StudentService, sessionService *service.SessionService) *StudentHandler {
	return &StudentHandler{
		studentService: studentService,
		sessionService: sessionService,
	}
}

// ListStudents godoc
// GET /api/v1/students
// Lists students with pagination.
func (h *StudentHandler) ListStudents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))

	students, pagination, err := h.studentService.ListStudents(c.Request.Context(), page, perPage)
	if err != nil {
		failWith(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"students": students}, pagination)
}

// GetStudent godoc
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	student, err := h.studentService.GetByID(c.Request.Context(), id)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// CreateStudent godoc
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req model.StudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"student": student})
}

// UpdateStudent godoc
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	var req model.StudentRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	student, err := h.studentService.Update(c.Request.Context(), id, req)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": student})
}

// ListSessions godoc
// GET /api/v1/students/:id/sessions?status=completed
// Lists the sessions of a student, newest first.
func (h *StudentHandler) ListSessions(c *gin.Context) {
	id, ok := paramInt(c, "id")
	if !ok {
		return
	}

	status := model.SessionStatus(c.Query("status"))
	switch status {
	case "", model.SessionStatusPending, model.SessionStatusInProgress, model.SessionStatusCompleted, model.SessionStatusCancelled:
	default:
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, map[string]string{"status": "statut inconnu"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 100 {
		limit = 50
	}

	sessions, err := h.sessionService.ListByStudent(c.Request.Context(), id, status, limit)
	if err != nil {
		failWith(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}
