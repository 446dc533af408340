package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/studentms/internal/services"
	"github.com/charlesng35/studentms/pkg/response"
)

// StudentHandler manages the student directory used as the broadcast population.
type StudentHandler struct {
	service *services.StudentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(service *services.StudentService) (*StudentHandler, error) {
	if service == nil {
		return nil, errors.New("student handler: service is required")
	}
	return &StudentHandler{service: service}, nil
}

type createStudentRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
	Email     string `json:"email" validate:"omitempty,email,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

// List returns a page of students.
func (h *StudentHandler) List(c *gin.Context) {
	opts := services.ListStudentsOptions{
		Page:       parseIntQuery(c, "page", 1),
		PageSize:   parseIntQuery(c, "per_page", 50),
		Query:      c.Query("q"),
		ActiveOnly: parseBoolQuery(c, "active"),
	}

	students, total, err := h.service.List(requestContext(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, students, &response.Meta{
		Limit:  opts.PageSize,
		Offset: (max(opts.Page, 1) - 1) * opts.PageSize,
		Total:  int(total),
	})
}

// Get returns one student.
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	student, err := h.service.Get(requestContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, student)
}

// Create registers a new active student.
func (h *StudentHandler) Create(c *gin.Context) {
	var req createStudentRequest
	if !bindAndValidate(c, &req) {
		return
	}

	student, err := h.service.Create(requestContext(c), services.CreateStudentInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, student)
}

// SetActive adds a student to or removes it from the broadcast population.
func (h *StudentHandler) SetActive(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req setActiveRequest
	if !bindAndValidate(c, &req) {
		return
	}

	if err := h.service.SetActive(requestContext(c), id, *req.Active); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": *req.Active})
}
