package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/school-api/internal/models"
)

// GuardianStudentRepository provides database access for guardian-student
// links.
type GuardianStudentRepository struct {
	db *sqlx.DB
}

// NewGuardianStudentRepository creates a new instance of
// GuardianStudentRepository.
func NewGuardianStudentRepository(db *sqlx.DB) *GuardianStudentRepository {
	return &GuardianStudentRepository{db: db}
}

const guardianStudentColumns = `gs.id, gs.guardian_id, gs.student_id, gs.relation_type, gs.is_primary`

// FindByID returns a link by identifier.
func (r *GuardianStudentRepository) FindByID(ctx context.Context, id string) (*models.GuardianStudent, error) {
	query := fmt.Sprintf(`SELECT %s FROM guardian_students gs WHERE gs.id = $1 LIMIT 1`, guardianStudentColumns)
	var link models.GuardianStudent
	if err := r.db.GetContext(ctx, &link, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find guardian link by id: %w", err)
	}
	return &link, nil
}

// ListByStudent returns a student's guardians, primary first.
func (r *GuardianStudentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.GuardianStudentWithGuardian, error) {
	query := fmt.Sprintf(`SELECT %s,
            u.first_name || ' ' || u.last_name AS guardian_name,
            g.phone_number
        FROM guardian_students gs
        JOIN guardians g ON g.id = gs.guardian_id
        JOIN users u ON u.id = g.user_id
        WHERE gs.student_id = $1
        ORDER BY gs.is_primary DESC, guardian_name ASC`, guardianStudentColumns)

	var links []models.GuardianStudentWithGuardian
	if err := r.db.SelectContext(ctx, &links, query, studentID); err != nil {
		return nil, fmt.Errorf("list guardians by student: %w", err)
	}
	return links, nil
}

// ListByGuardian returns the students a guardian is linked to.
func (r *GuardianStudentRepository) ListByGuardian(ctx context.Context, guardianID string) ([]models.GuardianStudentWithStudent, error) {
	query := fmt.Sprintf(`SELECT %s,
            u.first_name || ' ' || u.last_name AS student_name,
            st.student_number
        FROM guardian_students gs
        JOIN students st ON st.id = gs.student_id
        JOIN users u ON u.id = st.user_id
        WHERE gs.guardian_id = $1
        ORDER BY student_name ASC`, guardianStudentColumns)

	var links []models.GuardianStudentWithStudent
	if err := r.db.SelectContext(ctx, &links, query, guardianID); err != nil {
		return nil, fmt.Errorf("list students by guardian: %w", err)
	}
	return links, nil
}

// Create inserts a link. The unique (guardian_id, student_id) constraint
// rejects duplicate links.
func (r *GuardianStudentRepository) Create(ctx context.Context, link *models.GuardianStudent) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}

	const query = `INSERT INTO guardian_students (id, guardian_id, student_id, relation_type, is_primary)
        VALUES (:id, :guardian_id, :student_id, :relation_type, :is_primary)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create guardian link: %w", err)
	}
	return nil
}

// SetPrimary promotes the link to primary and demotes every other link of
// the same student in one transaction, so the student never has two
// primaries.
func (r *GuardianStudentRepository) SetPrimary(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set primary guardian: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var studentID string
	if err := tx.GetContext(ctx, &studentID, `SELECT student_id FROM guardian_students WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("find guardian link student: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE guardian_students SET is_primary = FALSE WHERE student_id = $1 AND id <> $2`,
		studentID, id); err != nil {
		return fmt.Errorf("demote primary guardians: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE guardian_students SET is_primary = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("promote primary guardian: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit set primary guardian: %w", err)
	}
	return nil
}

// Delete removes a link.
func (r *GuardianStudentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM guardian_students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guardian link: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
