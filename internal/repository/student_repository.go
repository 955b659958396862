package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-results-api/internal/models"
)

const studentColumns = `s.id, s.name, s.father_name, s.mother_name, s.mobile, s.gender, s.blood_group, s.birth_date, s.address, s.photo_url, s.status, s.created_at, s.updated_at`

// latestRecordJoin attaches each student's most recent class record.
const latestRecordJoin = `LEFT JOIN LATERAL (SELECT cr.class_name, cr.roll_number, cr.year FROM class_records cr WHERE cr.student_id = s.id ORDER BY cr.year DESC, cr.created_at DESC LIMIT 1) lc ON true`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters together with their latest enrolment.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int, error) {
	base := "FROM students s " + latestRecordJoin
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.name) LIKE $%d OR CAST(lc.roll_number AS TEXT) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("s.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.ClassName != "" {
		conditions = append(conditions, fmt.Sprintf("lc.class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("lc.year = $%d", len(args)+1))
		args = append(args, filter.Year)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":       "s.name",
		"rollNumber": "lc.roll_number",
		"class":      "lc.class_name",
		"createdAt":  "s.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "s.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page, size := models.NormalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, lc.class_name, lc.roll_number, lc.year %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		studentColumns, base, column, order, size, offset)

	var students []models.StudentListItem
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by ID. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students s WHERE s.id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateWithClassRecord inserts a student and the first class record in one transaction.
func (r *StudentRepository) CreateWithClassRecord(ctx context.Context, student *models.Student, record *models.ClassRecord) (err error) {
	now := time.Now().UTC()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.Status == "" {
		student.Status = models.StudentActive
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.StudentID = student.ID
	record.CreatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin student transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertStudent = `INSERT INTO students (id, name, father_name, mother_name, mobile, gender, blood_group, birth_date, address, photo_url, status, created_at, updated_at)
        VALUES (:id, :name, :father_name, :mother_name, :mobile, :gender, :blood_group, :birth_date, :address, :photo_url, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if _, err = tx.NamedExecContext(ctx, insertClassRecord, record); err != nil {
		return fmt.Errorf("create class record: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit student: %w", err)
	}
	return nil
}

// Update modifies the biographical fields of an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET name = :name, father_name = :father_name, mother_name = :mother_name, mobile = :mobile, gender = :gender, blood_group = :blood_group, birth_date = :birth_date, address = :address, photo_url = :photo_url, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return expectAffected(res)
}

// UpdateStatus changes a student's lifecycle status. Students are never deleted.
func (r *StudentRepository) UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error {
	const query = `UPDATE students SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update student status: %w", err)
	}
	return expectAffected(res)
}

// CountByStatus groups all students by status.
func (r *StudentRepository) CountByStatus(ctx context.Context) ([]models.CountRow, error) {
	const query = `SELECT status AS key, COUNT(*) AS count FROM students GROUP BY status`
	var rows []models.CountRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count students by status: %w", err)
	}
	return rows, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
