package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/service"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
	"github.com/noah-isme/school-results-api/pkg/response"
)

type resultService interface {
	Submit(ctx context.Context, req dto.SubmitResultsRequest) (*dto.SubmitResultsResponse, error)
	Lookup(ctx context.Context, q dto.ResultLookupQuery) (*dto.ResultLookupResponse, bool, error)
	ClassSheet(ctx context.Context, className, examType string, year int) (*dto.ClassSheet, error)
}

type resultExporter interface {
	ClassSheet(sheet *dto.ClassSheet, format string) (*service.ExportFile, error)
	ResultCard(res *dto.ResultLookupResponse) (*service.ExportFile, error)
}

// ResultHandler exposes result submission, lookup and export endpoints.
type ResultHandler struct {
	results resultService
	exports resultExporter
}

// NewResultHandler constructs ResultHandler.
func NewResultHandler(results resultService, exports resultExporter) *ResultHandler {
	return &ResultHandler{results: results, exports: exports}
}

func lookupQuery(c *gin.Context) dto.ResultLookupQuery {
	return dto.ResultLookupQuery{
		ClassName:  c.Query("class"),
		RollNumber: c.Query("roll"),
		ExamType:   c.Query("test"),
		Year:       c.Query("year"),
	}
}

// Lookup godoc
// @Summary Public result lookup
// @Tags Results
// @Produce json
// @Param class query string true "Class, e.g. Class_6"
// @Param roll query int true "Roll number"
// @Param test query string true "Mid_Term or Final"
// @Param year query int true "Academic year"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /results [get]
func (h *ResultHandler) Lookup(c *gin.Context) {
	res, hit, err := h.results.Lookup(c.Request.Context(), lookupQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, map[string]interface{}{"cache_hit": hit})
}

// Print godoc
// @Summary Printable result card
// @Tags Results
// @Produce application/pdf
// @Param class query string true "Class"
// @Param roll query int true "Roll number"
// @Param test query string true "Exam type"
// @Param year query int true "Academic year"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /results/print [get]
func (h *ResultHandler) Print(c *gin.Context) {
	res, _, err := h.results.Lookup(c.Request.Context(), lookupQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.ResultCard(res)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// Submit godoc
// @Summary Submit a batch of exam marks
// @Description Merges subject marks into existing results or creates them
// @Tags Results
// @Accept json
// @Produce json
// @Param payload body dto.SubmitResultsRequest true "Result batch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admin/results [post]
func (h *ResultHandler) Submit(c *gin.Context) {
	var req dto.SubmitResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	res, err := h.results.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Sheet godoc
// @Summary Class result sheet
// @Tags Results
// @Produce json
// @Param class query string true "Class"
// @Param test query string true "Exam type"
// @Param year query int false "Academic year, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /admin/results [get]
func (h *ResultHandler) Sheet(c *gin.Context) {
	sheet, ok := h.loadSheet(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// Export godoc
// @Summary Download a class result sheet
// @Tags Results
// @Produce text/csv
// @Produce application/pdf
// @Param class query string true "Class"
// @Param test query string true "Exam type"
// @Param year query int false "Academic year"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /admin/results/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	sheet, ok := h.loadSheet(c)
	if !ok {
		return
	}
	file, err := h.exports.ClassSheet(sheet, c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *ResultHandler) loadSheet(c *gin.Context) (*dto.ClassSheet, bool) {
	year, ok := optionalYear(c)
	if !ok {
		return nil, false
	}
	sheet, err := h.results.ClassSheet(c.Request.Context(), c.Query("class"), c.Query("test"), year)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return sheet, true
}

// optionalYear reads ?year, writing a 400 when it is present but malformed.
func optionalYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
		return 0, false
	}
	return year, true
}
