package service

import (
	"context"
	"fmt"

	"github.com/schoolcore/school-api/internal/models"
	"github.com/schoolcore/school-api/pkg/export"
	appErrors "github.com/schoolcore/school-api/pkg/errors"
)

// Export formats supported by the attendance sheet endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered attendance sheet ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// SessionGetter resolves session details for sheet titles.
type SessionGetter interface {
	Get(ctx context.Context, id string) (*models.SessionDetail, error)
}

// AttendanceLister resolves the marks of a session.
type AttendanceLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceDetail, error)
}

// ExportService renders session attendance sheets as CSV or PDF.
type ExportService struct {
	sessions   SessionGetter
	attendance AttendanceLister
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
}

// NewExportService creates a new instance of ExportService.
func NewExportService(sessions SessionGetter, attendance AttendanceLister) *ExportService {
	return &ExportService{
		sessions:   sessions,
		attendance: attendance,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
	}
}

var attendanceSheetHeaders = []string{"Student Number", "Student Name", "Status", "Notes"}

// SessionAttendanceSheet renders the attendance of a session in the
// requested format.
func (s *ExportService) SessionAttendanceSheet(ctx context.Context, sessionID, format string) (*ExportFile, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	marks, err := s.attendance.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Attendance %s %s", session.ClassName, session.Date.Format("2006-01-02")),
		Headers: attendanceSheetHeaders,
	}
	for _, mark := range marks {
		notes := ""
		if mark.Notes != nil {
			notes = *mark.Notes
		}
		dataset.Rows = append(dataset.Rows, []string{
			mark.StudentNumber,
			mark.StudentName,
			string(mark.Status),
			notes,
		})
	}

	base := fmt.Sprintf("attendance-%s-%s", session.ClassName, session.Date.Format("2006-01-02"))

	switch format {
	case ExportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		return &ExportFile{
			Filename:    base + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.FromError(err)
		}
		return &ExportFile{
			Filename:    base + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
