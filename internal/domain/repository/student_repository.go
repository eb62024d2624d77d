package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"andromeda/internal/common"
	"andromeda/internal/domain/model"
)

type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	FindByID(ctx context.Context, id string) (*model.Student, error)
	List(ctx context.Context) ([]model.Student, error)
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, id string) error

	AssignBehavior(ctx context.Context, tx *sql.Tx, assignment *model.AssignedBehavior) error
	ListAssignedBehaviors(ctx context.Context, studentID string) ([]model.AssignedBehavior, error)
}

type pgStudentRepository struct {
	db *sql.DB
}

func NewPgStudentRepository(db *sql.DB) StudentRepository {
	return &pgStudentRepository{db: db}
}

const studentColumns = `id, first_name, last_name, age, grade_level, gened_teacher, sped_teacher,
	gender, notes, school_id, email, parent_names, parent_contact_phone, created_at, updated_at`

func scanStudent(row interface{ Scan(...interface{}) error }) (*model.Student, error) {
	s := &model.Student{}
	err := row.Scan(
		&s.ID, &s.FirstName, &s.LastName, &s.Age, &s.GradeLevel, &s.GenEdTeacher, &s.SpedTeacher,
		&s.Gender, &s.Notes, &s.SchoolID, &s.Email, &s.ParentNames, &s.ParentContactPhone,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *pgStudentRepository) Create(ctx context.Context, s *model.Student) error {
	query := `INSERT INTO students (id, first_name, last_name, age, grade_level, gened_teacher,
	            sped_teacher, gender, notes, school_id, email, parent_names, parent_contact_phone)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.FirstName, s.LastName, s.Age, s.GradeLevel, s.GenEdTeacher,
		s.SpedTeacher, s.Gender, s.Notes, s.SchoolID, s.Email, s.ParentNames, s.ParentContactPhone,
	)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.Create: %w", err)
	}
	return nil
}

func (r *pgStudentRepository) FindByID(ctx context.Context, id string) (*model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE id = $1`
	s, err := scanStudent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgStudentRepository.FindByID: %w", err)
	}
	return s, nil
}

func (r *pgStudentRepository) List(ctx context.Context) ([]model.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students ORDER BY last_name ASC, first_name ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.List: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, fmt.Errorf("pgStudentRepository.List scan: %w", err)
		}
		students = append(students, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStudentRepository.List rows: %w", err)
	}
	return students, nil
}

func (r *pgStudentRepository) Update(ctx context.Context, s *model.Student) error {
	query := `UPDATE students SET
	            first_name = $1, last_name = $2, age = $3, grade_level = $4, gened_teacher = $5,
	            sped_teacher = $6, gender = $7, notes = $8, school_id = $9, email = $10,
	            parent_names = $11, parent_contact_phone = $12, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $13`
	res, err := r.db.ExecContext(ctx, query,
		s.FirstName, s.LastName, s.Age, s.GradeLevel, s.GenEdTeacher,
		s.SpedTeacher, s.Gender, s.Notes, s.SchoolID, s.Email,
		s.ParentNames, s.ParentContactPhone, s.ID,
	)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.Update: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgStudentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgStudentRepository.Delete: %w", err)
	}
	return rowsAffectedOrNotFound(res)
}

func (r *pgStudentRepository) AssignBehavior(ctx context.Context, tx *sql.Tx, a *model.AssignedBehavior) error {
	query := `INSERT INTO assigned_student_behaviors (id, student_id, behavior_id, assigned_at, assigned_by, notes)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, a.ID, a.StudentID, a.BehaviorID, a.AssignedAt, a.AssignedByID, a.Notes)
	} else {
		_, err = r.db.ExecContext(ctx, query, a.ID, a.StudentID, a.BehaviorID, a.AssignedAt, a.AssignedByID, a.Notes)
	}
	if err != nil {
		return fmt.Errorf("pgStudentRepository.AssignBehavior: %w", err)
	}
	return nil
}

func (r *pgStudentRepository) ListAssignedBehaviors(ctx context.Context, studentID string) ([]model.AssignedBehavior, error) {
	query := `SELECT a.id, a.student_id, a.behavior_id, a.assigned_at, a.assigned_by, a.notes, b.name
	          FROM assigned_student_behaviors a
	          JOIN behaviors b ON a.behavior_id = b.id
	          WHERE a.student_id = $1
	          ORDER BY a.assigned_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListAssignedBehaviors: %w", err)
	}
	defer rows.Close()

	var assignments []model.AssignedBehavior
	for rows.Next() {
		var a model.AssignedBehavior
		if err := rows.Scan(&a.ID, &a.StudentID, &a.BehaviorID, &a.AssignedAt, &a.AssignedByID, &a.Notes, &a.BehaviorName); err != nil {
			return nil, fmt.Errorf("pgStudentRepository.ListAssignedBehaviors scan: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgStudentRepository.ListAssignedBehaviors rows: %w", err)
	}
	return assignments, nil
}
