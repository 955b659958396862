package service

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/dto"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/export"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
	RenderResultCard(card export.ResultCard) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders class sheets and result cards.
type ExportService struct {
	csv        csvRenderer
	pdf        pdfRenderer
	schoolName string
	logger     *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(schoolName string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{csv: csv, pdf: pdf, schoolName: schoolName, logger: logger}
}

// ClassSheet renders a class result sheet as CSV or PDF.
func (s *ExportService) ClassSheet(sheet *dto.ClassSheet, format string) (*ExportFile, error) {
	if sheet == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no results to export")
	}
	data := sheetDataset(sheet)
	base := sanitizeFilename(fmt.Sprintf("%s_%s_%d", sheet.ClassName, sheet.ExamType, sheet.Year))

	var (
		body []byte
		err  error
		file = &ExportFile{}
	)
	switch strings.ToLower(format) {
	case "", FormatCSV:
		body, err = s.csv.Render(data)
		file.Filename = base + ".csv"
		file.ContentType = "text/csv"
	case FormatPDF:
		title := fmt.Sprintf("%s - %s %s %d", s.schoolName, sheet.ClassName.Label(), sheet.ExamType.Label(), sheet.Year)
		body, err = s.pdf.Render(data, title)
		file.Filename = base + ".pdf"
		file.ContentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		s.logger.Error("class sheet export failed", zap.String("format", format), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render export")
	}
	file.Body = body
	return file, nil
}

// ResultCard renders one student's looked-up result as a printable PDF.
func (s *ExportService) ResultCard(res *dto.ResultLookupResponse) (*ExportFile, error) {
	if res == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "result not found")
	}
	card := export.ResultCard{
		SchoolName: s.schoolName,
		Title:      fmt.Sprintf("%s Result %d", res.Result.ExamType.Label(), res.ClassRecord.Year),
		Fields: []export.CardField{
			{Label: "Name", Value: res.Student.Name},
			{Label: "Father's Name", Value: res.Student.FatherName},
			{Label: "Mother's Name", Value: res.Student.MotherName},
			{Label: "Class", Value: res.ClassRecord.ClassName.Label()},
			{Label: "Roll", Value: strconv.Itoa(res.ClassRecord.RollNumber)},
		},
		Table: export.Dataset{Headers: []string{"Subject", "Written", "MCQ", "Total", "Full Marks", "Grade"}},
		Summary: []export.CardField{
			{Label: "Total Marks", Value: formatMark(res.TotalMarks) + " / " + formatMark(res.MaxMarks)},
			{Label: "Percentage", Value: strconv.FormatFloat(res.Percentage, 'f', 2, 64) + "%"},
			{Label: "GPA", Value: strconv.FormatFloat(res.Summary.GPA, 'f', 2, 64)},
			{Label: "Grade", Value: res.Summary.Grade},
		},
	}
	for _, name := range sortedSubjects(res.Result.Subjects) {
		m := res.Result.Subjects[name]
		card.Table.Rows = append(card.Table.Rows, map[string]string{
			"Subject":    name,
			"Written":    formatMark(m.WrittenMark),
			"MCQ":        formatMark(m.MCQMark),
			"Total":      formatMark(m.TotalMark),
			"Full Marks": formatMark(m.MaxTotalMark),
			"Grade":      m.Grade,
		})
	}

	body, err := s.pdf.RenderResultCard(card)
	if err != nil {
		s.logger.Error("result card render failed", zap.String("result_id", res.Result.ID), zap.Error(err))
		return nil, appErrors.Internal(err, "failed to render result card")
	}
	name := sanitizeFilename(fmt.Sprintf("result_%s_%d_%s_%d", res.ClassRecord.ClassName, res.ClassRecord.RollNumber, res.Result.ExamType, res.ClassRecord.Year))
	return &ExportFile{Filename: name + ".pdf", ContentType: "application/pdf", Body: body}, nil
}

func sheetDataset(sheet *dto.ClassSheet) export.Dataset {
	headers := []string{"Roll", "Name"}
	headers = append(headers, sheet.Subjects...)
	headers = append(headers, "Total", "GPA", "Grade")
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(sheet.Rows))}
	for _, row := range sheet.Rows {
		cells := map[string]string{
			"Roll":  strconv.Itoa(row.RollNumber),
			"Name":  row.StudentName,
			"Total": formatMark(row.TotalMarks),
			"GPA":   strconv.FormatFloat(row.Summary.GPA, 'f', 2, 64),
			"Grade": row.Summary.Grade,
		}
		for _, subject := range sheet.Subjects {
			if m, ok := row.Subjects[subject]; ok {
				cells[subject] = formatMark(m.TotalMark)
			}
		}
		data.Rows = append(data.Rows, cells)
	}
	return data
}

func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
