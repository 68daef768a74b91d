package service

import (
	"bytes"
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolcore/school-api/internal/models"
)

type mockSessionGetter struct {
	detail *models.SessionDetail
	err    error
}

func (m *mockSessionGetter) Get(context.Context, string) (*models.SessionDetail, error) {
	return m.detail, m.err
}

type mockAttendanceLister struct {
	marks []models.AttendanceDetail
	err   error
}

func (m *mockAttendanceLister) ListBySession(context.Context, string) ([]models.AttendanceDetail, error) {
	return m.marks, m.err
}

func exportFixtures() (*mockSessionGetter, *mockAttendanceLister) {
	detail := &models.SessionDetail{}
	detail.ID = "session-1"
	detail.Date = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	detail.ClassName = "Math 101"

	notes := "arrived 10 min late"
	present := models.AttendanceDetail{StudentName: "Ada King", StudentNumber: "STU000001"}
	present.Status = models.AttendanceStatusPresent
	late := models.AttendanceDetail{StudentName: "Sam Lee", StudentNumber: "STU000002"}
	late.Status = models.AttendanceStatusLate
	late.Notes = &notes

	return &mockSessionGetter{detail: detail}, &mockAttendanceLister{marks: []models.AttendanceDetail{present, late}}
}

func TestExportServiceCSVSheet(t *testing.T) {
	sessions, marks := exportFixtures()
	svc := NewExportService(sessions, marks)

	file, err := svc.SessionAttendanceSheet(context.Background(), "session-1", ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "attendance-Math 101-2026-03-02.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Content)
	assert.Contains(t, content, "Student Number,Student Name,Status,Notes")
	assert.Contains(t, content, "STU000001,Ada King,PRESENT,")
	assert.Contains(t, content, "STU000002,Sam Lee,LATE,arrived 10 min late")
}

func TestExportServicePDFSheet(t *testing.T) {
	sessions, marks := exportFixtures()
	svc := NewExportService(sessions, marks)

	file, err := svc.SessionAttendanceSheet(context.Background(), "session-1", ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Content, []byte("%PDF")))
}

func TestExportServiceUnsupportedFormat(t *testing.T) {
	sessions, marks := exportFixtures()
	svc := NewExportService(sessions, marks)

	_, err := svc.SessionAttendanceSheet(context.Background(), "session-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}
