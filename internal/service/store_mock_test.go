package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/noah-isme/school-results-api/internal/models"
)

// memoryStore is an in-memory stand-in for the student, class record and result repositories.
type memoryStore struct {
	students map[string]*models.Student
	records  []models.ClassRecord
	results  []models.Result
	seq      int

	failUpsertResult error
	beforeUpsert     func()
	failFindRecord   error
	failCreateRecord error
	createCalls      int
	updateCalls      int
	recordedOutcomes []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{students: map[string]*models.Student{}}
}

func (m *memoryStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memoryStore) addStudent(id, name string) *models.Student {
	s := &models.Student{ID: id, Name: name, Status: models.StudentActive}
	m.students[id] = s
	return s
}

func (m *memoryStore) enrol(studentID string, class models.ClassName, roll, year int) models.ClassRecord {
	rec := models.ClassRecord{ID: m.nextID("cr"), StudentID: studentID, ClassName: class, RollNumber: roll, Year: year}
	m.records = append(m.records, rec)
	return rec
}

func (m *memoryStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindByStudentClassYear(ctx context.Context, studentID string, class models.ClassName, year int) (*models.ClassRecord, error) {
	if m.failFindRecord != nil {
		return nil, m.failFindRecord
	}
	for _, r := range m.records {
		if r.StudentID == studentID && r.ClassName == class && r.Year == year {
			cp := r
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) FindByClassRoll(ctx context.Context, class models.ClassName, roll, year int) (*models.ClassRecord, error) {
	for _, r := range m.records {
		if r.ClassName == class && r.RollNumber == roll && r.Year == year {
			cp := r
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryStore) ExistsRoll(ctx context.Context, class models.ClassName, year, roll int) (bool, error) {
	_, err := m.FindByClassRoll(ctx, class, roll, year)
	return err == nil, nil
}

func (m *memoryStore) Create(ctx context.Context, record *models.ClassRecord) error {
	if m.failCreateRecord != nil {
		return m.failCreateRecord
	}
	record.ID = m.nextID("cr")
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryStore) ListByStudent(ctx context.Context, studentID string) ([]models.ClassRecord, error) {
	var out []models.ClassRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (m *memoryStore) Roster(ctx context.Context, class models.ClassName, year int) ([]models.RosterEntry, error) {
	var out []models.RosterEntry
	for _, r := range m.records {
		if r.ClassName == class && r.Year == year {
			out = append(out, models.RosterEntry{StudentID: r.StudentID, ClassRecordID: r.ID, Name: m.students[r.StudentID].Name, RollNumber: r.RollNumber})
		}
	}
	return out, nil
}

// resultStore exposes the result repository methods of memoryStore under distinct names.
type resultStore struct{ *memoryStore }

func (r resultStore) FindByClassRecordAndExam(ctx context.Context, classRecordID string, exam models.ExamType) (*models.Result, error) {
	for _, res := range r.results {
		if res.ClassRecordID == classRecordID && res.ExamType == exam {
			cp := res
			cp.Subjects = models.SubjectScores{}.Merge(res.Subjects)
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

// Upsert mirrors the INSERT ... ON CONFLICT DO UPDATE merge of the SQL repository.
func (r resultStore) Upsert(ctx context.Context, result *models.Result) (bool, error) {
	if r.beforeUpsert != nil {
		r.beforeUpsert()
	}
	if r.failUpsertResult != nil {
		return false, r.failUpsertResult
	}
	for i := range r.results {
		if r.results[i].ClassRecordID == result.ClassRecordID && r.results[i].ExamType == result.ExamType {
			r.updateCalls++
			r.results[i].Subjects = r.results[i].Subjects.Merge(result.Subjects)
			result.ID = r.results[i].ID
			result.Subjects = models.SubjectScores{}.Merge(r.results[i].Subjects)
			return false, nil
		}
	}
	r.createCalls++
	result.ID = r.nextID("res")
	stored := *result
	stored.Subjects = models.SubjectScores{}.Merge(result.Subjects)
	r.results = append(r.results, stored)
	return true, nil
}

func (r resultStore) ClassSheet(ctx context.Context, class models.ClassName, exam models.ExamType, year int) ([]models.ResultSheetRow, error) {
	var rows []models.ResultSheetRow
	for _, res := range r.results {
		if res.ExamType != exam {
			continue
		}
		for _, rec := range r.records {
			if rec.ID == res.ClassRecordID && rec.ClassName == class && rec.Year == year {
				rows = append(rows, models.ResultSheetRow{
					ResultID:      res.ID,
					ClassRecordID: rec.ID,
					StudentID:     rec.StudentID,
					StudentName:   r.students[rec.StudentID].Name,
					RollNumber:    rec.RollNumber,
					Subjects:      res.Subjects,
				})
			}
		}
	}
	return rows, nil
}

func (r resultStore) ListByClassRecords(ctx context.Context, ids []string) ([]models.Result, error) {
	var out []models.Result
	for _, res := range r.results {
		for _, id := range ids {
			if res.ClassRecordID == id {
				out = append(out, res)
			}
		}
	}
	return out, nil
}

func (m *memoryStore) RecordResult(outcome string) {
	m.recordedOutcomes = append(m.recordedOutcomes, outcome)
}

func (m *memoryStore) RecordPromotion(outcome string) {
	m.recordedOutcomes = append(m.recordedOutcomes, outcome)
}

func (m *memoryStore) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentListItem, int, error) {
	var out []models.StudentListItem
	for _, s := range m.students {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, models.StudentListItem{Student: *s})
	}
	return out, len(out), nil
}

func (m *memoryStore) CreateWithClassRecord(ctx context.Context, student *models.Student, record *models.ClassRecord) error {
	if m.failCreateRecord != nil {
		return m.failCreateRecord
	}
	student.ID = m.nextID("st")
	cp := *student
	m.students[student.ID] = &cp
	record.StudentID = student.ID
	record.ID = m.nextID("cr")
	m.records = append(m.records, *record)
	return nil
}

func (m *memoryStore) Update(ctx context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return sql.ErrNoRows
	}
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *memoryStore) UpdateStatus(ctx context.Context, id string, status models.StudentStatus) error {
	s, ok := m.students[id]
	if !ok {
		return sql.ErrNoRows
	}
	s.Status = status
	return nil
}
