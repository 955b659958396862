package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/models"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type resultClassRecordRepository interface {
	FindByStudentClassYear(ctx context.Context, studentID string, class models.ClassName, year int) (*models.ClassRecord, error)
	FindByClassRoll(ctx context.Context, class models.ClassName, roll, year int) (*models.ClassRecord, error)
}

type resultRepository interface {
	FindByClassRecordAndExam(ctx context.Context, classRecordID string, exam models.ExamType) (*models.Result, error)
	Upsert(ctx context.Context, result *models.Result) (bool, error)
	ClassSheet(ctx context.Context, class models.ClassName, exam models.ExamType, year int) ([]models.ResultSheetRow, error)
}

type resultStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type resultRecorder interface {
	RecordResult(outcome string)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

const lookupCachePrefix = "results:lookup"

// ResultService merges submitted marks into stored exam results and serves lookups.
type ResultService struct {
	classRecords resultClassRecordRepository
	results      resultRepository
	students     resultStudentReader
	scale        grading.Scale
	metrics      resultRecorder
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
	cache        resultCache
	cacheTTL     time.Duration
}

// NewResultService constructs a ResultService. now supplies the academic year
// when a submission does not name one; nil means time.Now.
func NewResultService(classRecords resultClassRecordRepository, results resultRepository, students resultStudentReader, scale grading.Scale, metrics resultRecorder, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *ResultService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if len(scale.Bands) == 0 {
		scale = grading.StandardScale
	}
	return &ResultService{
		classRecords: classRecords,
		results:      results,
		students:     students,
		scale:        scale,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		now:          now,
	}
}

// WithCache enables caching of public lookups. Submissions invalidate the
// cached lookups of the class exam they touch.
func (s *ResultService) WithCache(cache resultCache, ttl time.Duration) *ResultService {
	s.cache = cache
	s.cacheTTL = ttl
	return s
}

// Scale returns the active grading scale.
func (s *ResultService) Scale() grading.Scale {
	return s.scale
}

// Submit upserts every entry of a batch in order. Entries without an enrolment for
// the class and year are skipped. The batch is not transactional: a repository
// failure aborts the remaining entries and keeps those already written.
func (s *ResultService) Submit(ctx context.Context, req dto.SubmitResultsRequest) (*dto.SubmitResultsResponse, error) {
	normaliseTestInfo(&req.TestInfo)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid result payload")
	}

	info := req.TestInfo
	year := info.Year
	if year == 0 {
		year = s.now().Year()
	}

	resp := &dto.SubmitResultsResponse{Outcomes: make([]dto.ResultOutcome, 0, len(req.Results))}
	for _, entry := range req.Results {
		outcome, err := s.upsertEntry(ctx, info, year, entry)
		if err != nil {
			s.logger.Error("result submission aborted",
				zap.String("student_id", entry.StudentID),
				zap.String("class", string(info.ClassName)),
				zap.Int("year", year),
				zap.Int("created", resp.Created),
				zap.Int("updated", resp.Updated),
				zap.Int("skipped", resp.Skipped),
				zap.Error(err))
			s.invalidateLookups(ctx, info.ClassName, info.TestType, year, resp.Created+resp.Updated)
			return nil, appErrors.Internal(err, "failed to save results")
		}
		switch outcome.Status {
		case dto.OutcomeCreated:
			resp.Created++
		case dto.OutcomeUpdated:
			resp.Updated++
		case dto.OutcomeSkipped:
			resp.Skipped++
		}
		if s.metrics != nil {
			s.metrics.RecordResult(outcome.Status)
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}

	s.invalidateLookups(ctx, info.ClassName, info.TestType, year, resp.Created+resp.Updated)
	resp.Message = fmt.Sprintf("results processed: %d created, %d updated, %d skipped", resp.Created, resp.Updated, resp.Skipped)
	s.logger.Info("results submitted",
		zap.String("class", string(info.ClassName)),
		zap.String("exam_type", string(info.TestType)),
		zap.Int("year", year),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

func (s *ResultService) upsertEntry(ctx context.Context, info dto.TestInfo, year int, entry dto.StudentResultEntry) (dto.ResultOutcome, error) {
	outcome := dto.ResultOutcome{StudentID: entry.StudentID}

	record, err := s.classRecords.FindByStudentClassYear(ctx, entry.StudentID, info.ClassName, year)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("result skipped: no class record",
				zap.String("student_id", entry.StudentID),
				zap.String("class", string(info.ClassName)),
				zap.Int("year", year))
			outcome.Status = dto.OutcomeSkipped
			outcome.Reason = fmt.Sprintf("no class record for %s in %d", info.ClassName.Label(), year)
			return outcome, nil
		}
		return outcome, fmt.Errorf("find class record: %w", err)
	}

	result := &models.Result{
		ClassRecordID: record.ID,
		ExamType:      info.TestType,
		Subjects:      s.gradeSubjects(entry.Subjects, info),
	}
	created, err := s.results.Upsert(ctx, result)
	if err != nil {
		return outcome, fmt.Errorf("save result: %w", err)
	}
	outcome.Status = dto.OutcomeUpdated
	if created {
		outcome.Status = dto.OutcomeCreated
	}
	outcome.ResultID = result.ID
	return outcome, nil
}

// gradeSubjects fills the caps from the test info and derives a grade for any
// subject the client did not grade.
func (s *ResultService) gradeSubjects(in models.SubjectScores, info dto.TestInfo) models.SubjectScores {
	out := make(models.SubjectScores, len(in))
	for name, m := range in {
		if m.MaxWrittenMark == 0 {
			m.MaxWrittenMark = info.WrittenMarks
		}
		if m.MaxMCQMark == 0 {
			m.MaxMCQMark = info.MCQMarks
		}
		if m.MaxTotalMark == 0 {
			m.MaxTotalMark = info.TotalMarksPerSubject
			if m.MaxTotalMark == 0 {
				m.MaxTotalMark = m.MaxWrittenMark + m.MaxMCQMark
			}
		}
		if m.TotalMark == 0 {
			m.TotalMark = m.WrittenMark + m.MCQMark
		}
		if m.Grade == "" && m.MaxTotalMark > 0 {
			m.Grade = s.scale.GradeMarks(m.TotalMark, m.MaxTotalMark)
		}
		out[name] = m
	}
	return out
}

// Lookup finds one student's result by class, roll number, exam type and year.
// The boolean reports whether the response came from the cache.
func (s *ResultService) Lookup(ctx context.Context, q dto.ResultLookupQuery) (*dto.ResultLookupResponse, bool, error) {
	if strings.TrimSpace(q.ClassName) == "" || strings.TrimSpace(q.RollNumber) == "" ||
		strings.TrimSpace(q.ExamType) == "" || strings.TrimSpace(q.Year) == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "class, roll, test and year are required")
	}
	class, ok := models.ParseClassName(q.ClassName)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid class")
	}
	exam, ok := models.ParseExamType(q.ExamType)
	if !ok {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid test type")
	}
	roll, err := strconv.Atoi(strings.TrimSpace(q.RollNumber))
	if err != nil || roll < 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid roll number")
	}
	year, err := strconv.Atoi(strings.TrimSpace(q.Year))
	if err != nil || year <= 0 {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid year")
	}

	key := lookupKey(class, exam, year, roll)
	if s.cache != nil {
		var cached dto.ResultLookupResponse
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	record, err := s.classRecords.FindByClassRoll(ctx, class, roll, year)
	if err != nil {
		return nil, false, notFoundOr(err, "result not found", "failed to load class record")
	}
	result, err := s.results.FindByClassRecordAndExam(ctx, record.ID, exam)
	if err != nil {
		return nil, false, notFoundOr(err, "result not found", "failed to load result")
	}
	student, err := s.students.FindByID(ctx, record.StudentID)
	if err != nil {
		return nil, false, notFoundOr(err, "result not found", "failed to load student")
	}

	total, max := markTotals(result.Subjects)
	resp := &dto.ResultLookupResponse{
		Student: dto.ResultStudent{
			ID:         student.ID,
			Name:       student.Name,
			FatherName: student.FatherName,
			MotherName: student.MotherName,
		},
		ClassRecord: *record,
		Result:      *result,
		TotalMarks:  total,
		MaxMarks:    max,
		Percentage:  roundTo2(grading.Percentage(total, max)),
		Summary:     s.Summarize(result.Subjects),
	}
	s.persistLookup(ctx, key, resp)
	return resp, false, nil
}

// persistLookup caches a built lookup. A failed write only costs the next hit,
// so it is logged and the response is still served.
func (s *ResultService) persistLookup(ctx context.Context, key string, resp *dto.ResultLookupResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, resp, s.cacheTTL); err != nil {
		s.logger.Warn("result lookup cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func lookupKey(class models.ClassName, exam models.ExamType, year, roll int) string {
	return fmt.Sprintf("%s:%s:%s:%d:%d", lookupCachePrefix, class, exam, year, roll)
}

func (s *ResultService) invalidateLookups(ctx context.Context, class models.ClassName, exam models.ExamType, year, written int) {
	if s.cache == nil || written == 0 {
		return
	}
	pattern := fmt.Sprintf("%s:%s:%s:%d:*", lookupCachePrefix, class, exam, year)
	// Stale lookups expire with the TTL; the submission itself has already been committed.
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("result lookup cache invalidation failed",
			zap.String("pattern", pattern),
			zap.Int("written", written),
			zap.Error(err))
	}
}

// ClassSheet returns every result recorded for a class exam, ordered by roll number.
// A zero year selects the current one.
func (s *ResultService) ClassSheet(ctx context.Context, className, examType string, year int) (*dto.ClassSheet, error) {
	class, ok := models.ParseClassName(className)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class")
	}
	exam, ok := models.ParseExamType(examType)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid test type")
	}
	if year == 0 {
		year = s.now().Year()
	}

	rows, err := s.results.ClassSheet(ctx, class, exam, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class results")
	}

	sheet := &dto.ClassSheet{ClassName: class, ExamType: exam, Year: year, Rows: make([]dto.ClassSheetRow, 0, len(rows))}
	seen := map[string]struct{}{}
	for _, row := range rows {
		for name := range row.Subjects {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				sheet.Subjects = append(sheet.Subjects, name)
			}
		}
		sheet.Rows = append(sheet.Rows, dto.ClassSheetRow{
			ResultSheetRow: row,
			TotalMarks:     row.Subjects.Total(),
			Summary:        s.Summarize(row.Subjects),
		})
	}
	sort.Strings(sheet.Subjects)
	sort.SliceStable(sheet.Rows, func(i, j int) bool { return sheet.Rows[i].RollNumber < sheet.Rows[j].RollNumber })
	return sheet, nil
}

// Summarize computes the GPA summary of a subject map, grading any subject stored without a letter.
func (s *ResultService) Summarize(subjects models.SubjectScores) grading.Summary {
	grades := make(map[string]string, len(subjects))
	for name, m := range subjects {
		letter := m.Grade
		if letter == "" {
			letter = s.scale.GradeMarks(m.TotalMark, m.MaxTotalMark)
		}
		grades[name] = letter
	}
	return s.scale.Summarize(grades)
}

// normaliseTestInfo maps accepted aliases such as "Class 6" or "Yearly" to canonical values
// so validation only sees the canonical enums.
func normaliseTestInfo(info *dto.TestInfo) {
	if c, ok := models.ParseClassName(string(info.ClassName)); ok {
		info.ClassName = c
	}
	if e, ok := models.ParseExamType(string(info.TestType)); ok {
		info.TestType = e
	}
}

func sortedSubjects(subjects models.SubjectScores) []string {
	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func markTotals(subjects models.SubjectScores) (total, max float64) {
	for _, m := range subjects {
		total += m.TotalMark
		max += m.MaxTotalMark
	}
	return total, max
}

func notFoundOr(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Internal(err, internal)
}

func roundTo2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
