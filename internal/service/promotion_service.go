package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/pkg/database"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

type promotionClassRecordRepository interface {
	ExistsRoll(ctx context.Context, class models.ClassName, year, roll int) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassRecord, error)
	Create(ctx context.Context, record *models.ClassRecord) error
}

type promotionStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type promotionRecorder interface {
	RecordPromotion(outcome string)
}

// Promotion outcomes reported to metrics.
const (
	promotionOK       = "promoted"
	promotionConflict = "conflict"
	promotionInvalid  = "invalid"
	promotionFailed   = "error"
)

// PromotionService appends class records for students moving into a new academic year.
type PromotionService struct {
	classRecords promotionClassRecordRepository
	students     promotionStudentReader
	metrics      promotionRecorder
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewPromotionService constructs a PromotionService.
func NewPromotionService(classRecords promotionClassRecordRepository, students promotionStudentReader, metrics promotionRecorder, validate *validator.Validate, logger *zap.Logger) *PromotionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{classRecords: classRecords, students: students, metrics: metrics, validator: validate, logger: logger}
}

// Promote enrols a student into a class for a year. Roll numbers are unique per
// class and year across all students. Any year is accepted so missed years can be
// backfilled; Options carries the suggested year. Records are never rewritten.
func (s *PromotionService) Promote(ctx context.Context, req dto.PromoteStudentRequest) (*models.ClassRecord, error) {
	if c, ok := models.ParseClassName(string(req.ClassName)); ok {
		req.ClassName = c
	}
	if err := s.validator.Struct(req); err != nil {
		s.record(promotionInvalid)
		return nil, appErrors.Validation(err, "studentId, className, year and rollNumber are required")
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		s.record(promotionInvalid)
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}

	exists, err := s.classRecords.ExistsRoll(ctx, req.ClassName, req.Year, *req.RollNumber)
	if err != nil {
		s.record(promotionFailed)
		return nil, appErrors.Internal(err, "failed to validate roll number")
	}
	if exists {
		s.record(promotionConflict)
		return nil, duplicateRoll()
	}

	record := &models.ClassRecord{
		StudentID:  req.StudentID,
		ClassName:  req.ClassName,
		RollNumber: *req.RollNumber,
		Year:       req.Year,
	}
	if err := s.classRecords.Create(ctx, record); err != nil {
		if database.IsUniqueViolation(err, models.ClassRecordRollConstraint) {
			s.record(promotionConflict)
			return nil, duplicateRoll()
		}
		s.record(promotionFailed)
		return nil, appErrors.Internal(err, "failed to create class record")
	}

	s.record(promotionOK)
	s.logger.Info("student promoted",
		zap.String("student_id", req.StudentID),
		zap.String("class", string(record.ClassName)),
		zap.Int("year", record.Year),
		zap.Int("roll_number", record.RollNumber))
	return record, nil
}

// Options suggests the next enrolments for a student from their latest class record.
func (s *PromotionService) Options(ctx context.Context, studentID string) (*dto.PromotionOptions, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	records, err := s.classRecords.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class records")
	}

	opts := &dto.PromotionOptions{StudentID: studentID}
	latest := models.LatestClassRecord(records)
	if latest == nil {
		return opts, nil
	}
	opts.Latest = latest
	opts.MinYear = latest.Year + 1
	opts.Repeat = &dto.PromotionChoice{ClassName: latest.ClassName, Year: latest.Year + 1, RollNumber: latest.RollNumber}
	if next, ok := latest.ClassName.Next(); ok {
		opts.Promote = &dto.PromotionChoice{ClassName: next, Year: latest.Year + 1, RollNumber: latest.RollNumber}
	}
	return opts, nil
}

func (s *PromotionService) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordPromotion(outcome)
	}
}
