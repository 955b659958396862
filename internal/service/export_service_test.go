package service

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/export"
)

type failingPDF struct{}

func (failingPDF) Render(data export.Dataset, title string) ([]byte, error) {
	return nil, errors.New("font missing")
}

func (failingPDF) RenderResultCard(card export.ResultCard) ([]byte, error) {
	return nil, errors.New("font missing")
}

func sampleSheet() *dto.ClassSheet {
	return &dto.ClassSheet{
		ClassName: models.Class6,
		ExamType:  models.ExamMidTerm,
		Year:      2024,
		Subjects:  []string{"English", "Math"},
		Rows: []dto.ClassSheetRow{
			{
				ResultSheetRow: models.ResultSheetRow{StudentName: "Ahmed", RollNumber: 1, Subjects: models.SubjectScores{"Math": {TotalMark: 85}}},
				TotalMarks:     85,
				Summary:        grading.Summary{GPA: 4, Grade: grading.A, Applicable: true},
			},
		},
	}
}

func TestExportServiceClassSheetCSV(t *testing.T) {
	svc := NewExportService("Test School", nil, nil, nil)

	file, err := svc.ClassSheet(sampleSheet(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "Class_6_Mid_Term_2024.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Roll,Name,English,Math,Total,GPA,Grade", lines[0])
	assert.Equal(t, "1,Ahmed,,85,85,4.00,A", lines[1])
}

func TestExportServiceClassSheetPDF(t *testing.T) {
	svc := NewExportService("Test School", nil, nil, nil)

	file, err := svc.ClassSheet(sampleSheet(), "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	_, err = svc.ClassSheet(sampleSheet(), "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestExportServiceResultCard(t *testing.T) {
	svc := NewExportService("Test School", nil, nil, nil)
	res := &dto.ResultLookupResponse{
		Student:     dto.ResultStudent{Name: "Ahmed"},
		ClassRecord: models.ClassRecord{ClassName: models.Class6, RollNumber: 5, Year: 2024},
		Result: models.Result{ID: "r1", ExamType: models.ExamMidTerm, Subjects: models.SubjectScores{
			"Math": {WrittenMark: 50, MCQMark: 30, TotalMark: 80, MaxTotalMark: 100, Grade: "A"},
		}},
		TotalMarks: 80,
		MaxMarks:   100,
		Percentage: 80,
		Summary:    grading.Summary{GPA: 4, Grade: "A", Applicable: true},
	}

	file, err := svc.ResultCard(res)
	require.NoError(t, err)
	assert.Equal(t, "result_Class_6_5_Mid_Term_2024.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Body, []byte("%PDF")))

	broken := NewExportService("Test School", nil, nil, failingPDF{})
	_, err = broken.ResultCard(res)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}
