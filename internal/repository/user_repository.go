package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolcore/school-api/internal/models"
)

// ProfileWriter runs inside the user create/update transaction to maintain
// the role-specific profile row alongside the user row.
type ProfileWriter func(ctx context.Context, tx *sqlx.Tx, user *models.User) error

// UserRepository provides database access for users, role profiles, refresh
// tokens and audit logs.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, created_at, updated_at`

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindDetailByID returns a user with its role profile attached.
func (r *UserRepository) FindDetailByID(ctx context.Context, id string) (*models.UserDetail, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.UserDetail{User: *user}
	switch user.Role {
	case models.RoleTeacher:
		var p models.TeacherProfile
		if err := r.db.GetContext(ctx, &p, `SELECT id, user_id, specialization FROM teachers WHERE user_id = $1`, id); err == nil {
			detail.Teacher = &p
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("find teacher profile: %w", err)
		}
	case models.RoleStudent:
		var p models.StudentProfile
		if err := r.db.GetContext(ctx, &p, `SELECT id, user_id, student_number, date_of_birth FROM students WHERE user_id = $1`, id); err == nil {
			detail.Student = &p
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("find student profile: %w", err)
		}
	case models.RoleGuardian:
		var p models.GuardianProfile
		if err := r.db.GetContext(ctx, &p, `SELECT id, user_id, phone_number, address FROM guardians WHERE user_id = $1`, id); err == nil {
			detail.Guardian = &p
		} else if err != sql.ErrNoRows {
			return nil, fmt.Errorf("find guardian profile: %w", err)
		}
	}

	return detail, nil
}

// List returns users based on filters with total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	baseQuery := `FROM users WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Role != nil {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, *filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(email) LIKE $%d OR LOWER(first_name || ' ' || last_name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	offset := (page - 1) * limit

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", userColumns, baseQuery, limit, offset)

	var users []models.User
	if err := r.db.SelectContext(ctx, &users, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

// Create inserts the user row and its role profile in one transaction so a
// failed profile write leaves no orphan user.
func (r *UserRepository) Create(ctx context.Context, user *models.User, profile ProfileWriter) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at, updated_at)
        VALUES (:id, :first_name, :last_name, :email, :password_hash, :role, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	if profile != nil {
		if err := profile(ctx, tx, user); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create user: %w", err)
	}
	return nil
}

// Update updates mutable user fields and the role profile in one transaction.
func (r *UserRepository) Update(ctx context.Context, user *models.User, profile ProfileWriter) error {
	user.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update user: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE users SET first_name = :first_name, last_name = :last_name, email = :email,
        password_hash = :password_hash, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if profile != nil {
		if err := profile(ctx, tx, user); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update user: %w", err)
	}
	return nil
}

// Delete removes the user; role profiles and refresh tokens cascade.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateTeacherProfile inserts a teacher profile row.
func (r *UserRepository) CreateTeacherProfile(ctx context.Context, tx *sqlx.Tx, p *models.TeacherProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const query = `INSERT INTO teachers (id, user_id, specialization) VALUES (:id, :user_id, :specialization)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}
	return nil
}

// CreateStudentProfile inserts a student profile row.
func (r *UserRepository) CreateStudentProfile(ctx context.Context, tx *sqlx.Tx, p *models.StudentProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const query = `INSERT INTO students (id, user_id, student_number, date_of_birth) VALUES (:id, :user_id, :student_number, :date_of_birth)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// CreateGuardianProfile inserts a guardian profile row.
func (r *UserRepository) CreateGuardianProfile(ctx context.Context, tx *sqlx.Tx, p *models.GuardianProfile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const query = `INSERT INTO guardians (id, user_id, phone_number, address) VALUES (:id, :user_id, :phone_number, :address)`
	if _, err := tx.NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create guardian profile: %w", err)
	}
	return nil
}

// UpdateTeacherProfile updates the specialization of an existing teacher row.
func (r *UserRepository) UpdateTeacherProfile(ctx context.Context, tx *sqlx.Tx, userID string, specialization *string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE teachers SET specialization = $2 WHERE user_id = $1`, userID, specialization); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}
	return nil
}

// UpdateStudentProfile updates the date of birth of an existing student row.
func (r *UserRepository) UpdateStudentProfile(ctx context.Context, tx *sqlx.Tx, userID string, dateOfBirth *time.Time) error {
	if _, err := tx.ExecContext(ctx, `UPDATE students SET date_of_birth = $2 WHERE user_id = $1`, userID, dateOfBirth); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}
	return nil
}

// UpdateGuardianProfile updates contact fields of an existing guardian row.
func (r *UserRepository) UpdateGuardianProfile(ctx context.Context, tx *sqlx.Tx, userID string, phoneNumber, address *string) error {
	if _, err := tx.ExecContext(ctx, `UPDATE guardians SET phone_number = COALESCE($2, phone_number), address = COALESCE($3, address) WHERE user_id = $1`, userID, phoneNumber, address); err != nil {
		return fmt.Errorf("update guardian profile: %w", err)
	}
	return nil
}

// NextStudentNumber generates the next sequential student number within the
// create transaction.
func (r *UserRepository) NextStudentNumber(ctx context.Context, tx *sqlx.Tx) (string, error) {
	var count int
	if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return "", fmt.Errorf("count students: %w", err)
	}
	return fmt.Sprintf("STU%06d", count+1), nil
}

// CreateRefreshToken persists a refresh token entry.
func (r *UserRepository) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
        VALUES (:id, :user_id, :token, :expires_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns the stored row matching the user and token value.
// A missing row means the token was revoked or rotated away.
func (r *UserRepository) FindRefreshToken(ctx context.Context, userID, token string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token, expires_at, created_at FROM refresh_tokens WHERE user_id = $1 AND token = $2 LIMIT 1`
	var rt models.RefreshToken
	if err := r.db.GetContext(ctx, &rt, query, userID, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find refresh token: %w", err)
	}
	return &rt, nil
}

// RotateRefreshToken deletes the consumed token row and inserts its
// replacement in one transaction so no partial state is observable.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, oldID string, next *models.RefreshToken) error {
	if next.ID == "" {
		next.ID = uuid.NewString()
	}
	if next.CreatedAt.IsZero() {
		next.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rotate refresh token: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID); err != nil {
		return fmt.Errorf("delete consumed refresh token: %w", err)
	}

	const insert = `INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
        VALUES (:id, :user_id, :token, :expires_at, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, next); err != nil {
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rotate refresh token: %w", err)
	}
	return nil
}

// DeleteRefreshTokensByValue removes all rows matching the token value.
// Deleting an already-absent token is not an error.
func (r *UserRepository) DeleteRefreshTokensByValue(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete refresh tokens: %w", err)
	}
	return nil
}

// CreateAuditLog stores an audit log entry.
func (r *UserRepository) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO audit_logs (id, user_id, action, resource, resource_id, ip_address, user_agent, created_at)
        VALUES (:id, :user_id, :action, :resource, :resource_id, :ip_address, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, log); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}
