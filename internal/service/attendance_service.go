package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/schoolcore/school-api/internal/models"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// AttendanceRepository is the persistence surface the attendance service
// depends on.
type AttendanceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error)
	ListByStudent(ctx context.Context, studentID string, page, limit int) ([]models.StudentAttendanceRow, int, error)
	Create(ctx context.Context, attendance *models.Attendance) error
	Update(ctx context.Context, attendance *models.Attendance) error
	Delete(ctx context.Context, id string) error
}

// SessionReader resolves sessions for attendance guards.
type SessionReader interface {
	FindByID(ctx context.Context, id string) (*models.Session, error)
}

// AttendanceService manages per-student marks. Marks are writable only
// while their session is a draft; session validation freezes them.
type AttendanceService struct {
	repo     AttendanceRepository
	sessions SessionReader
}

// NewAttendanceService creates a new instance of AttendanceService.
func NewAttendanceService(repo AttendanceRepository, sessions SessionReader) *AttendanceService {
	return &AttendanceService{repo: repo, sessions: sessions}
}

// Mark records attendance for a student in a draft session. A student has
// at most one mark per session.
func (s *AttendanceService) Mark(ctx context.Context, req models.MarkAttendanceRequest) (*models.Attendance, error) {
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}

	if err := s.requireDraftSession(ctx, req.SessionID); err != nil {
		return nil, err
	}

	attendance := &models.Attendance{
		SessionID: req.SessionID,
		StudentID: req.StudentID,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	if err := s.repo.Create(ctx, attendance); err != nil {
		if appErrors.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this student")
		}
		return nil, appErrors.FromError(err)
	}
	return attendance, nil
}

// Update changes a mark while its session is still a draft.
func (s *AttendanceService) Update(ctx context.Context, id string, req models.UpdateAttendanceRequest) (*models.Attendance, error) {
	attendance, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireDraftSession(ctx, attendance.SessionID); err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
		}
		attendance.Status = *req.Status
	}
	if req.Notes != nil {
		attendance.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, attendance); err != nil {
		return nil, appErrors.FromError(err)
	}
	return attendance, nil
}

// Delete removes a mark while its session is still a draft.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	attendance, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireDraftSession(ctx, attendance.SessionID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.FromError(err)
	}
	return nil
}

// ListBySession returns every mark for a session with student context.
func (s *AttendanceService) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.FromError(err)
	}

	marks, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.FromError(err)
	}
	return marks, nil
}

// ListByStudent returns a student's attendance history newest-first.
func (s *AttendanceService) ListByStudent(ctx context.Context, studentID string, page, limit int) ([]models.StudentAttendanceRow, *models.Pagination, error) {
	rows, total, err := s.repo.ListByStudent(ctx, studentID, page, limit)
	if err != nil {
		return nil, nil, appErrors.FromError(err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return rows, models.NewPagination(total, page, limit), nil
}

func (s *AttendanceService) get(ctx context.Context, id string) (*models.Attendance, error) {
	attendance, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
		}
		return nil, appErrors.FromError(err)
	}
	return attendance, nil
}

// requireDraftSession rejects writes against missing or validated sessions.
func (s *AttendanceService) requireDraftSession(ctx context.Context, sessionID string) error {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.FromError(err)
	}
	if session.Status == models.SessionStatusValidated {
		return appErrors.Clone(appErrors.ErrConflict, "attendance is locked once the session is validated")
	}
	return nil
}
