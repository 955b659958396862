package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

const classRecordColumns = `id, student_id, class_name, roll_number, year, created_at`

const insertClassRecord = `INSERT INTO class_records (id, student_id, class_name, roll_number, year, created_at)
        VALUES (:id, :student_id, :class_name, :roll_number, :year, :created_at)`

// ClassRecordRepository persists yearly class enrolments.
type ClassRecordRepository struct {
	db *sqlx.DB
}

// NewClassRecordRepository constructs a ClassRecordRepository.
func NewClassRecordRepository(db *sqlx.DB) *ClassRecordRepository {
	return &ClassRecordRepository{db: db}
}

// FindByStudentClassYear returns the enrolment of a student in a class for a year.
func (r *ClassRecordRepository) FindByStudentClassYear(ctx context.Context, studentID string, class models.ClassName, year int) (*models.ClassRecord, error) {
	query := `SELECT ` + classRecordColumns + ` FROM class_records WHERE student_id = $1 AND class_name = $2 AND year = $3 LIMIT 1`
	var record models.ClassRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, class, year); err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByClassRoll returns the enrolment holding a roll number in a class for a year.
func (r *ClassRecordRepository) FindByClassRoll(ctx context.Context, class models.ClassName, roll, year int) (*models.ClassRecord, error) {
	query := `SELECT ` + classRecordColumns + ` FROM class_records WHERE class_name = $1 AND roll_number = $2 AND year = $3 LIMIT 1`
	var record models.ClassRecord
	if err := r.db.GetContext(ctx, &record, query, class, roll, year); err != nil {
		return nil, err
	}
	return &record, nil
}

// ExistsRoll reports whether any student already holds roll in class for year.
func (r *ClassRecordRepository) ExistsRoll(ctx context.Context, class models.ClassName, year, roll int) (bool, error) {
	const query = `SELECT 1 FROM class_records WHERE class_name = $1 AND year = $2 AND roll_number = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, class, year, roll); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check roll number: %w", err)
	}
	return true, nil
}

// Create appends a class record.
func (r *ClassRecordRepository) Create(ctx context.Context, record *models.ClassRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, insertClassRecord, record); err != nil {
		return fmt.Errorf("create class record: %w", err)
	}
	return nil
}

// ListByStudent returns every enrolment of a student, newest year first.
func (r *ClassRecordRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ClassRecord, error) {
	query := `SELECT ` + classRecordColumns + ` FROM class_records WHERE student_id = $1 ORDER BY year DESC, created_at DESC`
	var records []models.ClassRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list class records: %w", err)
	}
	return records, nil
}

// Roster lists every student enrolled in a class for a year, by roll number.
// Status is not filtered: a student who left after sitting the exam still gets marks.
func (r *ClassRecordRepository) Roster(ctx context.Context, class models.ClassName, year int) ([]models.RosterEntry, error) {
	const query = `SELECT s.id AS student_id, cr.id AS class_record_id, s.name, s.status, cr.roll_number
        FROM class_records cr JOIN students s ON s.id = cr.student_id
        WHERE cr.class_name = $1 AND cr.year = $2
        ORDER BY cr.roll_number ASC`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, class, year); err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	return roster, nil
}

// CountByClass counts enrolments per class for a year.
func (r *ClassRecordRepository) CountByClass(ctx context.Context, year int) ([]models.CountRow, error) {
	const query = `SELECT class_name AS key, COUNT(*) AS count FROM class_records WHERE year = $1 GROUP BY class_name`
	var rows []models.CountRow
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("count class records: %w", err)
	}
	return rows, nil
}
