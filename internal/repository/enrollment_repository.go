package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/school-api/internal/models"
)

// EnrollmentRepository provides database access for student-class
// enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository creates a new instance of EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `sc.id, sc.student_id, sc.class_id, sc.enrolled_at, sc.enrollment_end, sc.status, sc.notes`

// FindByID returns an enrollment by identifier.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.StudentClass, error) {
	query := fmt.Sprintf(`SELECT %s FROM student_classes sc WHERE sc.id = $1 LIMIT 1`, enrollmentColumns)
	var enrollment models.StudentClass
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment by id: %w", err)
	}
	return &enrollment, nil
}

// ListByStudent returns a student's enrollments with class context.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentClassWithClass, error) {
	query := fmt.Sprintf(`SELECT %s,
            c.name AS class_name,
            c.level AS class_level
        FROM student_classes sc
        JOIN classes c ON c.id = sc.class_id
        WHERE sc.student_id = $1
        ORDER BY sc.enrolled_at DESC`, enrollmentColumns)

	var enrollments []models.StudentClassWithClass
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return enrollments, nil
}

// ListByClass returns a class roster with student context.
func (r *EnrollmentRepository) ListByClass(ctx context.Context, classID string) ([]models.StudentClassWithStudent, error) {
	query := fmt.Sprintf(`SELECT %s,
            u.first_name || ' ' || u.last_name AS student_name,
            st.student_number
        FROM student_classes sc
        JOIN students st ON st.id = sc.student_id
        JOIN users u ON u.id = st.user_id
        WHERE sc.class_id = $1
        ORDER BY student_name ASC`, enrollmentColumns)

	var enrollments []models.StudentClassWithStudent
	if err := r.db.SelectContext(ctx, &enrollments, query, classID); err != nil {
		return nil, fmt.Errorf("list enrollments by class: %w", err)
	}
	return enrollments, nil
}

// CountActiveByClass returns the number of non-dropped enrollments in a
// class, used for capacity checks.
func (r *EnrollmentRepository) CountActiveByClass(ctx context.Context, classID string) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM student_classes WHERE class_id = $1 AND status <> 'DROPPED'`
	if err := r.db.GetContext(ctx, &count, query, classID); err != nil {
		return 0, fmt.Errorf("count enrollments by class: %w", err)
	}
	return count, nil
}

// Create inserts an enrollment. The unique (student_id, class_id) constraint
// rejects duplicate enrollments.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.StudentClass) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}

	const query = `INSERT INTO student_classes (id, student_id, class_id, enrolled_at, enrollment_end, status, notes)
        VALUES (:id, :student_id, :class_id, :enrolled_at, :enrollment_end, :status, :notes)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.StudentClass) error {
	const query = `UPDATE student_classes SET status = :status, enrollment_end = :enrollment_end,
        notes = :notes WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM student_classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
