package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"
	"andromeda/internal/domain/repository"

	"github.com/google/uuid"
)

type StudentService struct {
	studentRepo  repository.StudentRepository
	behaviorRepo repository.BehaviorRepository
}

func NewStudentService(studentRepo repository.StudentRepository, behaviorRepo repository.BehaviorRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo, behaviorRepo: behaviorRepo}
}

type CreateStudentRequest struct {
	FirstName          string  `json:"first_name"`
	LastName           string  `json:"last_name"`
	Age                *int    `json:"age,omitempty"`
	GradeLevel         *string `json:"grade_level,omitempty"`
	GenEdTeacher       *string `json:"gened_teacher,omitempty"`
	SpedTeacher        *string `json:"sped_teacher,omitempty"`
	Gender             *string `json:"gender,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	SchoolID           *string `json:"school_id,omitempty"`
	Email              *string `json:"email,omitempty"`
	ParentNames        *string `json:"parent_names,omitempty"`
	ParentContactPhone *string `json:"parent_contact_phone,omitempty"`
}

func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*model.Student, error) {
	if req.FirstName == "" || req.LastName == "" {
		return nil, fmt.Errorf("first_name and last_name are required: %w", common.ErrBadRequest)
	}

	student := &model.Student{
		ID:                 uuid.NewString(),
		FirstName:          req.FirstName,
		LastName:           req.LastName,
		Age:                req.Age,
		GradeLevel:         req.GradeLevel,
		GenEdTeacher:       req.GenEdTeacher,
		SpedTeacher:        req.SpedTeacher,
		Gender:             req.Gender,
		Notes:              req.Notes,
		SchoolID:           req.SchoolID,
		Email:              req.Email,
		ParentNames:        req.ParentNames,
		ParentContactPhone: req.ParentContactPhone,
	}
	if err := s.studentRepo.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}
	return student, nil
}

func (s *StudentService) Get(ctx context.Context, id string) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	students, err := s.studentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

type UpdateStudentRequest struct {
	FirstName          *string `json:"first_name,omitempty"`
	LastName           *string `json:"last_name,omitempty"`
	Age                *int    `json:"age,omitempty"`
	GradeLevel         *string `json:"grade_level,omitempty"`
	GenEdTeacher       *string `json:"gened_teacher,omitempty"`
	SpedTeacher        *string `json:"sped_teacher,omitempty"`
	Gender             *string `json:"gender,omitempty"`
	Notes              *string `json:"notes,omitempty"`
	SchoolID           *string `json:"school_id,omitempty"`
	Email              *string `json:"email,omitempty"`
	ParentNames        *string `json:"parent_names,omitempty"`
	ParentContactPhone *string `json:"parent_contact_phone,omitempty"`
}

func (s *StudentService) Update(ctx context.Context, id string, req UpdateStudentRequest) (*model.Student, error) {
	student, err := s.studentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}

	if req.FirstName != nil && *req.FirstName != "" {
		student.FirstName = *req.FirstName
	}
	if req.LastName != nil && *req.LastName != "" {
		student.LastName = *req.LastName
	}
	if req.Age != nil {
		student.Age = req.Age
	}
	if req.GradeLevel != nil {
		student.GradeLevel = req.GradeLevel
	}
	if req.GenEdTeacher != nil {
		student.GenEdTeacher = req.GenEdTeacher
	}
	if req.SpedTeacher != nil {
		student.SpedTeacher = req.SpedTeacher
	}
	if req.Gender != nil {
		student.Gender = req.Gender
	}
	if req.Notes != nil {
		student.Notes = req.Notes
	}
	if req.SchoolID != nil {
		student.SchoolID = req.SchoolID
	}
	if req.Email != nil {
		student.Email = req.Email
	}
	if req.ParentNames != nil {
		student.ParentNames = req.ParentNames
	}
	if req.ParentContactPhone != nil {
		student.ParentContactPhone = req.ParentContactPhone
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.studentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("student with ID %s not found: %w", id, common.ErrNotFound)
		}
		return fmt.Errorf("failed to delete student: %w", err)
	}
	return nil
}

type AssignBehaviorRequest struct {
	BehaviorID string  `json:"behavior_id"`
	Notes      *string `json:"notes,omitempty"`
}

// AssignBehavior puts a catalog behavior on a student's tracked list.
func (s *StudentService) AssignBehavior(ctx context.Context, studentID, actorID string, req AssignBehaviorRequest) (*model.AssignedBehavior, error) {
	if req.BehaviorID == "" {
		return nil, fmt.Errorf("behavior_id is required: %w", common.ErrBadRequest)
	}
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", studentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	behavior, err := s.behaviorRepo.FindByID(ctx, req.BehaviorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("behavior with ID %s not found: %w", req.BehaviorID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load behavior: %w", err)
	}

	assignment := &model.AssignedBehavior{
		ID:           uuid.NewString(),
		StudentID:    studentID,
		BehaviorID:   behavior.ID,
		AssignedAt:   time.Now().UTC(),
		AssignedByID: actorID,
		Notes:        req.Notes,
		BehaviorName: &behavior.Name,
	}
	if err := s.studentRepo.AssignBehavior(ctx, nil, assignment); err != nil {
		return nil, fmt.Errorf("failed to assign behavior: %w", err)
	}
	return assignment, nil
}

func (s *StudentService) AssignedBehaviors(ctx context.Context, studentID string) ([]model.AssignedBehavior, error) {
	if _, err := s.studentRepo.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("student with ID %s not found: %w", studentID, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	assignments, err := s.studentRepo.ListAssignedBehaviors(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assigned behaviors: %w", err)
	}
	return assignments, nil
}
