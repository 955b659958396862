package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-results-api/internal/models"
)

const resultColumns = `id, class_record_id, exam_type, subjects, created_at, updated_at`

// ResultRepository persists exam results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// FindByClassRecordAndExam returns the result for an enrolment and exam type.
func (r *ResultRepository) FindByClassRecordAndExam(ctx context.Context, classRecordID string, exam models.ExamType) (*models.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM results WHERE class_record_id = $1 AND exam_type = $2 LIMIT 1`
	var result models.Result
	if err := r.db.GetContext(ctx, &result, query, classRecordID, exam); err != nil {
		return nil, err
	}
	return &result, nil
}

const upsertResult = `INSERT INTO results (id, class_record_id, exam_type, subjects, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $5)
        ON CONFLICT (class_record_id, exam_type)
        DO UPDATE SET subjects = results.subjects || EXCLUDED.subjects, updated_at = EXCLUDED.updated_at
        RETURNING id, subjects, created_at, updated_at, (xmax = 0) AS created`

// Upsert stores the result for its enrolment and exam in one statement. An
// existing row keeps its subjects and gains or overwrites the submitted keys
// (JSONB ||), so concurrent writers never conflict. The merged row is scanned
// back into result and created reports whether a new row was inserted.
func (r *ResultRepository) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	if result.Subjects == nil {
		result.Subjects = models.SubjectScores{}
	}
	var created bool
	row := r.db.QueryRowxContext(ctx, upsertResult, uuid.NewString(), result.ClassRecordID, result.ExamType, result.Subjects, time.Now().UTC())
	if err := row.Scan(&result.ID, &result.Subjects, &result.CreatedAt, &result.UpdatedAt, &created); err != nil {
		return false, fmt.Errorf("upsert result: %w", err)
	}
	return created, nil
}

// ListByClassRecords returns the results of the given enrolments.
func (r *ResultRepository) ListByClassRecords(ctx context.Context, classRecordIDs []string) ([]models.Result, error) {
	if len(classRecordIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + resultColumns + ` FROM results WHERE class_record_id = ANY($1) ORDER BY created_at ASC`
	var results []models.Result
	if err := r.db.SelectContext(ctx, &results, query, pq.Array(classRecordIDs)); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	return results, nil
}

// ClassSheet returns every result of a class exam ordered by roll number.
func (r *ResultRepository) ClassSheet(ctx context.Context, class models.ClassName, exam models.ExamType, year int) ([]models.ResultSheetRow, error) {
	const query = `SELECT r.id AS result_id, cr.id AS class_record_id, s.id AS student_id, s.name AS student_name, cr.roll_number, r.subjects, r.updated_at
        FROM results r
        JOIN class_records cr ON cr.id = r.class_record_id
        JOIN students s ON s.id = cr.student_id
        WHERE cr.class_name = $1 AND r.exam_type = $2 AND cr.year = $3
        ORDER BY cr.roll_number ASC`
	var rows []models.ResultSheetRow
	if err := r.db.SelectContext(ctx, &rows, query, class, exam, year); err != nil {
		return nil, fmt.Errorf("class sheet: %w", err)
	}
	return rows, nil
}

// CountByExam counts results per exam type for a year.
func (r *ResultRepository) CountByExam(ctx context.Context, year int) ([]models.CountRow, error) {
	const query = `SELECT r.exam_type AS key, COUNT(*) AS count FROM results r JOIN class_records cr ON cr.id = r.class_record_id WHERE cr.year = $1 GROUP BY r.exam_type`
	var rows []models.CountRow
	if err := r.db.SelectContext(ctx, &rows, query, year); err != nil {
		return nil, fmt.Errorf("count results: %w", err)
	}
	return rows, nil
}
