package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/internal/service"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type fakeResultSrv struct {
	submitted *dto.SubmitResultsRequest
	lookup    dto.ResultLookupQuery
	lookupRes *dto.ResultLookupResponse
	lookupErr error
	lookupHit bool
	sheetArgs []interface{}
	sheet     *dto.ClassSheet
}

func (f *fakeResultSrv) Submit(_ context.Context, req dto.SubmitResultsRequest) (*dto.SubmitResultsResponse, error) {
	f.submitted = &req
	return &dto.SubmitResultsResponse{Message: "results processed: 1 created, 0 updated, 0 skipped", Created: 1}, nil
}

func (f *fakeResultSrv) Lookup(_ context.Context, q dto.ResultLookupQuery) (*dto.ResultLookupResponse, bool, error) {
	f.lookup = q
	return f.lookupRes, f.lookupHit, f.lookupErr
}

func (f *fakeResultSrv) ClassSheet(_ context.Context, className, examType string, year int) (*dto.ClassSheet, error) {
	f.sheetArgs = []interface{}{className, examType, year}
	return f.sheet, nil
}

type fakeExporter struct {
	format string
}

func (f *fakeExporter) ClassSheet(_ *dto.ClassSheet, format string) (*service.ExportFile, error) {
	f.format = format
	if format != service.FormatCSV && format != service.FormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{Filename: "Class_6_Mid_Term_2024.csv", ContentType: "text/csv", Body: []byte("Roll,Name\n")}, nil
}

func (f *fakeExporter) ResultCard(_ *dto.ResultLookupResponse) (*service.ExportFile, error) {
	return &service.ExportFile{Filename: "result.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

func TestResultHandlerLookupPassesQuery(t *testing.T) {
	srv := &fakeResultSrv{lookupRes: &dto.ResultLookupResponse{Percentage: 75}, lookupHit: true}
	handler := NewResultHandler(srv, &fakeExporter{})
	c, rec := newTestContext(http.MethodGet, "/results?class=Class_6&roll=5&test=Mid_Term&year=2024", "")

	handler.Lookup(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.ResultLookupQuery{ClassName: "Class_6", RollNumber: "5", ExamType: "Mid_Term", Year: "2024"}, srv.lookup)
	envelope := decodeEnvelope(t, rec)
	assert.EqualValues(t, 75, envelope.Data["percentage"])
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestResultHandlerLookupNotFound(t *testing.T) {
	srv := &fakeResultSrv{lookupErr: appErrors.Clone(appErrors.ErrNotFound, "result not found")}
	handler := NewResultHandler(srv, &fakeExporter{})
	c, rec := newTestContext(http.MethodGet, "/results?class=Class_6&roll=99&test=Final&year=2024", "")

	handler.Lookup(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "result not found", decodeEnvelope(t, rec).Error["message"])
}

func TestResultHandlerPrintStreamsPDF(t *testing.T) {
	srv := &fakeResultSrv{lookupRes: &dto.ResultLookupResponse{}}
	handler := NewResultHandler(srv, &fakeExporter{})
	c, rec := newTestContext(http.MethodGet, "/results/print?class=Class_6&roll=5&test=Mid_Term&year=2024", "")

	handler.Print(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "result.pdf")
}

func TestResultHandlerSubmitRejectsMalformedJSON(t *testing.T) {
	srv := &fakeResultSrv{}
	handler := NewResultHandler(srv, &fakeExporter{})
	c, rec := newTestContext(http.MethodPost, "/admin/results", `{"testInfo":`)

	handler.Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, srv.submitted)
}

func TestResultHandlerSubmit(t *testing.T) {
	srv := &fakeResultSrv{}
	handler := NewResultHandler(srv, &fakeExporter{})
	body := `{"testInfo":{"className":"Class_6","testType":"Mid_Term","writtenMarks":60,"mcqMarks":40,"totalMarksPerSubject":100,"subjects":["Mathematics"]},
	"results":[{"studentId":"s1","subjects":{"Mathematics":{"writtenMark":50,"mcqMark":30}}}]}`
	c, rec := newTestContext(http.MethodPost, "/admin/results", body)

	handler.Submit(c)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.submitted)
	assert.Equal(t, models.Class6, srv.submitted.TestInfo.ClassName)
	require.Len(t, srv.submitted.Results, 1)
	assert.EqualValues(t, 50, srv.submitted.Results[0].Subjects["Mathematics"].WrittenMark)
	assert.EqualValues(t, 1, decodeEnvelope(t, rec).Data["created"])
}

func TestResultHandlerSheetDefaultsYear(t *testing.T) {
	srv := &fakeResultSrv{sheet: &dto.ClassSheet{ClassName: models.Class7}}
	handler := NewResultHandler(srv, &fakeExporter{})
	c, rec := newTestContext(http.MethodGet, "/admin/results?class=Class_7&test=Final", "")

	handler.Sheet(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{"Class_7", "Final", 0}, srv.sheetArgs)
}

func TestResultHandlerExport(t *testing.T) {
	exporter := &fakeExporter{}
	handler := NewResultHandler(&fakeResultSrv{sheet: &dto.ClassSheet{}}, exporter)

	c, rec := newTestContext(http.MethodGet, "/admin/results/export?class=Class_6&test=Mid_Term&year=2024", "")
	handler.Export(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.FormatCSV, exporter.format)
	assert.Equal(t, "Roll,Name\n", rec.Body.String())

	c, rec = newTestContext(http.MethodGet, "/admin/results/export?class=Class_6&test=Mid_Term&format=xlsx", "")
	handler.Export(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
