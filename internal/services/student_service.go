package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/charlesng35/studentms/internal/models"
	"github.com/charlesng35/studentms/internal/notifications"
	apperrors "github.com/charlesng35/studentms/pkg/errors"
)

var (
	// ErrStudentNotFound indicates the requested student does not exist.
	ErrStudentNotFound = apperrors.New("STUDENT_NOT_FOUND", "Student not found", http.StatusNotFound)
	// ErrStudentEmailTaken is returned when another student already uses the email.
	ErrStudentEmailTaken = apperrors.New("STUDENT_EMAIL_TAKEN", "Email already in use", http.StatusConflict)
)

// CreateStudentInput describes the fields accepted when registering a student.
type CreateStudentInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// ListStudentsOptions controls pagination and filtering for the directory listing.
type ListStudentsOptions struct {
	Page       int
	PageSize   int
	Query      string
	ActiveOnly bool
}

// StudentService owns the student directory used as the broadcast population.
type StudentService struct {
	db *gorm.DB
}

var _ notifications.RecipientDirectory = (*StudentService)(nil)

// NewStudentService constructs a StudentService instance.
func NewStudentService(db *gorm.DB) (*StudentService, error) {
	if db == nil {
		return nil, errors.New("student service: db is required")
	}
	return &StudentService{db: db}, nil
}

// Create registers a new active student.
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*models.Student, error) {
	ctx = ensureContext(ctx)

	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)
	if first == "" && last == "" {
		return nil, apperrors.NewBadRequest("student name is required")
	}

	student := &models.Student{
		FirstName: first,
		LastName:  last,
		Email:     optionalString(strings.ToLower(input.Email)),
		Phone:     optionalString(input.Phone),
		IsActive:  true,
	}

	if err := s.db.WithContext(ctx).Create(student).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrStudentEmailTaken
		}
		return nil, fmt.Errorf("student service: create student: %w", err)
	}
	return student, nil
}

// Get loads a student by ID.
func (s *StudentService) Get(ctx context.Context, id uint) (*models.Student, error) {
	ctx = ensureContext(ctx)

	var student models.Student
	err := s.db.WithContext(ctx).First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("student service: load student: %w", err)
	}
	return &student, nil
}

// List returns a page of students together with the total count.
func (s *StudentService) List(ctx context.Context, opts ListStudentsOptions) ([]models.Student, int64, error) {
	ctx = ensureContext(ctx)
	page, perPage := clampPage(opts.Page, opts.PageSize, 50, 200)

	query := s.db.WithContext(ctx).Model(&models.Student{})
	if opts.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if q := strings.TrimSpace(opts.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("student service: count students: %w", err)
	}

	var students []models.Student
	if err := query.
		Order("id ASC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("student service: list students: %w", err)
	}
	return students, total, nil
}

// SetActive toggles whether the student is part of the broadcast population.
func (s *StudentService) SetActive(ctx context.Context, id uint, active bool) error {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).Model(&models.Student{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("student service: set active: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStudentNotFound
	}
	return nil
}

// ListRecipients returns every active student with its contact data.
func (s *StudentService) ListRecipients(ctx context.Context) ([]notifications.Recipient, error) {
	ctx = ensureContext(ctx)

	var students []models.Student
	if err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&students).Error; err != nil {
		return nil, fmt.Errorf("student service: list recipients: %w", err)
	}

	recipients := make([]notifications.Recipient, 0, len(students))
	for _, student := range students {
		recipients = append(recipients, notifications.Recipient{
			ID:    student.ID,
			Email: derefString(student.Email),
			Phone: derefString(student.Phone),
		})
	}
	return recipients, nil
}
