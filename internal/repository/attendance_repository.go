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

// AttendanceRepository provides database access for attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceColumns = `a.id, a.session_id, a.student_id, a.status, a.notes, a.created_at, a.updated_at`

// FindByID returns an attendance mark by identifier.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	query := fmt.Sprintf(`SELECT %s FROM attendances a WHERE a.id = $1 LIMIT 1`, attendanceColumns)
	var attendance models.Attendance
	if err := r.db.GetContext(ctx, &attendance, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance by id: %w", err)
	}
	return &attendance, nil
}

// ListBySession returns all marks for a session with student context,
// ordered by student name for stable sheets.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error) {
	query := fmt.Sprintf(`SELECT %s,
            u.first_name || ' ' || u.last_name AS student_name,
            st.student_number
        FROM attendances a
        JOIN students st ON st.id = a.student_id
        JOIN users u ON u.id = st.user_id
        WHERE a.session_id = $1
        ORDER BY student_name ASC`, attendanceColumns)

	var marks []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &marks, query, sessionID); err != nil {
		return nil, fmt.Errorf("list attendance by session: %w", err)
	}
	return marks, nil
}

// ListByStudent returns a student's attendance history newest-first with
// session context.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string, page, limit int) ([]models.StudentAttendanceRow, int, error) {
	page, limit = normalizePage(page, limit)
	offset := (page - 1) * limit

	query := fmt.Sprintf(`SELECT %s,
            s.date AS session_date,
            c.name AS class_name
        FROM attendances a
        JOIN sessions s ON s.id = a.session_id
        JOIN classes c ON c.id = s.class_id
        WHERE a.student_id = $1
        ORDER BY s.date DESC
        LIMIT %d OFFSET %d`, attendanceColumns, limit, offset)

	var rows []models.StudentAttendanceRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, 0, fmt.Errorf("list attendance by student: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM attendances WHERE student_id = $1`, studentID); err != nil {
		return nil, 0, fmt.Errorf("count attendance by student: %w", err)
	}

	return rows, total, nil
}

// Create inserts an attendance mark. The unique (session_id, student_id)
// constraint rejects duplicate marks.
func (r *AttendanceRepository) Create(ctx context.Context, attendance *models.Attendance) error {
	if attendance.ID == "" {
		attendance.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now

	const query = `INSERT INTO attendances (id, session_id, student_id, status, notes, created_at, updated_at)
        VALUES (:id, :session_id, :student_id, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attendance); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Update persists the status and notes of a mark.
func (r *AttendanceRepository) Update(ctx context.Context, attendance *models.Attendance) error {
	attendance.UpdatedAt = time.Now().UTC()

	const query = `UPDATE attendances SET status = :status, notes = :notes, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, attendance)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes an attendance mark.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
