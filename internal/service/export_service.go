package service

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/store"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/export"
)

// ExportFormat selects the roster output encoding.
type ExportFormat string

const (
	FormatCSV ExportFormat = "csv"
	FormatPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExportService renders offering rosters for download.
type ExportService struct {
	store  *store.Store
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewExportService creates an export service.
func NewExportService(st *store.Store, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		store:  st,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// Roster exports the actively registered students of an offering.
func (s *ExportService) Roster(offeringID int64, format ExportFormat) (*ExportResult, error) {
	var (
		dataset export.Dataset
		title   string
		lookErr *appErrors.Error
	)

	s.store.View(func(st *store.State) {
		off, ok := st.OfferingByID(offeringID)
		if !ok {
			lookErr = appErrors.Clone(appErrors.ErrNotFound, "course offering not found")
			return
		}
		title = off.CourseCode + " " + off.Semester
		if course, ok := st.CourseByCode(off.CourseCode); ok {
			title = course.Title + " (" + off.Semester + ")"
		}

		dataset.Headers = []string{"Registration ID", "Student ID", "Name", "Email", "Level", "Major"}
		for _, reg := range st.RegisteredInOffering(offeringID) {
			student, ok := st.UserByID(reg.StudentID)
			if !ok {
				continue
			}
			level, major := "", ""
			if student.Student != nil {
				level = strconv.Itoa(student.Student.Level)
				major = student.Student.Major
			}
			dataset.Rows = append(dataset.Rows, []string{
				strconv.FormatInt(reg.ID, 10),
				strconv.FormatInt(student.ID, 10),
				student.FullName,
				student.Email,
				level,
				major,
			})
		}
	})
	if lookErr != nil {
		return nil, lookErr
	}

	switch format {
	case FormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("roster_%d.csv", offeringID),
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(dataset, "Roster: "+title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
		}
		return &ExportResult{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("roster_%d.pdf", offeringID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+string(format))
	}
}
