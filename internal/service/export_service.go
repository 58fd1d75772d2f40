package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

type renderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type attendanceViewer interface {
	ViewForSession(ctx context.Context, sessionID int64) ([]models.AttendanceEntry, error)
	HistoryForSkater(ctx context.Context, skaterID int64) ([]models.SessionHistoryEntry, error)
}

type sessionGetter interface {
	Get(ctx context.Context, id int64) (*models.Session, error)
}

// ExportFile is a rendered document ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders attendance sheets and skater histories.
type ExportService struct {
	attendance attendanceViewer
	sessions   sessionGetter
	csv        renderer
	pdf        renderer
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(attendance attendanceViewer, sessions sessionGetter, logger *zap.Logger, csv renderer, pdf renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{attendance: attendance, sessions: sessions, csv: csv, pdf: pdf, logger: logger}
}

// SessionAttendance renders the attendance sheet of a session as CSV or PDF.
func (s *ExportService) SessionAttendance(ctx context.Context, sessionID int64, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entries, err := s.attendance.ViewForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	present := 0
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		mark := "no"
		if entry.Present {
			mark = "yes"
			present++
		}
		rows = append(rows, []string{
			strconv.FormatInt(entry.Skater.ID, 10),
			entry.Skater.Name,
			string(entry.Skater.Level),
			mark,
		})
	}
	dataset := export.Dataset{
		Title:    session.Title,
		Subtitle: session.DateTime.Format("2006-01-02 15:04") + " - " + session.Location,
		Headers:  []string{"Skater ID", "Name", "Level", "Present"},
		Rows:     rows,
		Footer:   fmt.Sprintf("%d of %d present (capacity %d)", present, len(entries), session.MaxSkaters),
	}

	base := fmt.Sprintf("session_%d_%s_attendance", session.ID, session.DateTime.Format("20060102"))
	if format == ExportFormatPDF {
		body, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render attendance pdf")
		}
		return &ExportFile{Filename: base + ".pdf", ContentType: "application/pdf", Body: body}, nil
	}
	body, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render attendance csv")
	}
	return &ExportFile{Filename: base + ".csv", ContentType: "text/csv", Body: body}, nil
}

// SkaterHistory renders the sessions a skater is enrolled in as CSV.
func (s *ExportService) SkaterHistory(ctx context.Context, skaterID int64) (*ExportFile, error) {
	history, err := s.attendance.HistoryForSkater(ctx, skaterID)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(history))
	for _, entry := range history {
		mark := "no"
		if entry.Present {
			mark = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(entry.Session.ID, 10),
			entry.Session.Title,
			string(entry.Session.SessionType),
			entry.Session.DateTime.Format("2006-01-02 15:04"),
			mark,
		})
	}
	body, err := s.csv.Render(export.Dataset{
		Headers: []string{"Session ID", "Title", "Type", "Date", "Present"},
		Rows:    rows,
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render history csv")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("skater_%d_history.csv", skaterID),
		ContentType: "text/csv",
		Body:        body,
	}, nil
}
