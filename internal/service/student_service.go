package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-results-api/internal/dto"
	"github.com/noah-isme/school-results-api/internal/models"
	"github.com/noah-isme/school-results-api/pkg/database"
	appErrors "github.com/noah-isme/school-results-api/pkg/errors"
)

func duplicateRoll() error {
	return appErrors.Clone(appErrors.ErrConflict, "roll number already exists for this class and year")
}

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	CreateWithClassRecord(ctx context.Context, student *models.Student, record *models.ClassRecord) error
	Update(ctx context.Context, student *models.Student) error
	UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error
}

type studentClassRecordRepository interface {
	ExistsRoll(ctx context.Context, class models.ClassName, year, roll int) (bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassRecord, error)
	Roster(ctx context.Context, class models.ClassName, year int) ([]models.RosterEntry, error)
}

type studentResultReader interface {
	ListByClassRecords(ctx context.Context, classRecordIDs []string) ([]models.Result, error)
}

// StudentService handles student use-cases.
type StudentService struct {
	repo         studentRepository
	classRecords studentClassRecordRepository
	results      studentResultReader
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, classRecords studentClassRecordRepository, results studentResultReader, validate *validator.Validate, logger *zap.Logger, now func() time.Time) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &StudentService{repo: repo, classRecords: classRecords, results: results, validator: validate, logger: logger, now: now}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, *models.Pagination, error) {
	filter.Page, filter.PageSize = models.NormalisePage(filter.Page, filter.PageSize)
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list students")
	}
	if students == nil {
		students = []models.StudentListItem{}
	}
	return students, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// Get returns a student with every class record and the results recorded against it.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	records, err := s.classRecords.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load class records")
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	results, err := s.results.ListByClassRecords(ctx, ids)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load results")
	}
	byRecord := make(map[string][]models.Result, len(records))
	for _, res := range results {
		byRecord[res.ClassRecordID] = append(byRecord[res.ClassRecordID], res)
	}

	detail := &models.StudentDetail{Student: *student, ClassRecords: make([]models.ClassRecordDetail, 0, len(records))}
	for _, r := range records {
		rs := byRecord[r.ID]
		if rs == nil {
			rs = []models.Result{}
		}
		detail.ClassRecords = append(detail.ClassRecords, models.ClassRecordDetail{ClassRecord: r, Results: rs})
	}
	return detail, nil
}

// Create registers a student and their first class record. The roll number must
// be free in that class and year.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*dto.CreateStudentResponse, error) {
	if c, ok := models.ParseClassName(string(req.ClassName)); ok {
		req.ClassName = c
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	exists, err := s.classRecords.ExistsRoll(ctx, req.ClassName, year, *req.RollNumber)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to validate roll number")
	}
	if exists {
		return nil, duplicateRoll()
	}

	student := &models.Student{Status: models.StudentActive}
	applyProfile(student, req.StudentProfile)
	record := &models.ClassRecord{ClassName: req.ClassName, RollNumber: *req.RollNumber, Year: year}
	if err := s.repo.CreateWithClassRecord(ctx, student, record); err != nil {
		if database.IsUniqueViolation(err, models.ClassRecordRollConstraint) {
			return nil, duplicateRoll()
		}
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("class", string(record.ClassName)), zap.Int("year", year))
	return &dto.CreateStudentResponse{Student: *student, ClassRecord: *record}, nil
}

// Update replaces the biographical fields of a student.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid student payload")
	}
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "student not found", "failed to load student")
	}
	applyProfile(student, req.StudentProfile)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, notFoundOr(err, "student not found", "failed to update student")
	}
	return student, nil
}

// UpdateStatus moves a student to another lifecycle status.
func (s *StudentService) UpdateStatus(ctx context.Context, id string, req dto.UpdateStudentStatusRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Validation(err, "invalid status")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Internal(err, "failed to update student status")
	}
	s.logger.Info("student status changed", zap.String("student_id", id), zap.String("status", string(req.Status)))
	return nil
}

// Roster lists the active students of a class for a year; zero selects the current year.
func (s *StudentService) Roster(ctx context.Context, className string, year int) ([]models.RosterEntry, error) {
	class, ok := models.ParseClassName(className)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid class")
	}
	if year == 0 {
		year = s.now().Year()
	}
	roster, err := s.classRecords.Roster(ctx, class, year)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load roster")
	}
	if roster == nil {
		roster = []models.RosterEntry{}
	}
	return roster, nil
}

func applyProfile(student *models.Student, p dto.StudentProfile) {
	student.Name = p.Name
	student.FatherName = p.FatherName
	student.MotherName = p.MotherName
	student.Mobile = p.Mobile
	student.Gender = p.Gender
	student.BloodGroup = p.BloodGroup
	student.BirthDate = p.BirthDate
	student.Address = p.Address
	student.PhotoURL = p.PhotoURL
}
