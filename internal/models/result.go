package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ExamType is the assessment category of a result.
type ExamType string

// Supported exam types.
const (
	ExamMidTerm ExamType = "Mid_Term"
	ExamFinal   ExamType = "Final"
)

// ParseExamType accepts the canonical values plus "Mid Term", "mid-term" and "Yearly".
func ParseExamType(raw string) (ExamType, bool) {
	s := strings.ToLower(strings.NewReplacer(" ", "_", "-", "_").Replace(strings.TrimSpace(raw)))
	switch s {
	case "mid_term", "midterm":
		return ExamMidTerm, true
	case "final", "yearly", "annual":
		return ExamFinal, true
	}
	return "", false
}

// Label renders the human form, e.g. "Mid Term".
func (e ExamType) Label() string {
	return strings.ReplaceAll(string(e), "_", " ")
}

// SubjectMark holds one subject's marks together with the caps in force when they were entered.
type SubjectMark struct {
	WrittenMark    float64 `json:"writtenMark"`
	MCQMark        float64 `json:"mcqMark"`
	TotalMark      float64 `json:"totalMark"`
	MaxWrittenMark float64 `json:"maxWrittenMark,omitempty"`
	MaxMCQMark     float64 `json:"maxMcqMark,omitempty"`
	MaxTotalMark   float64 `json:"maxTotalMark,omitempty"`
	Grade          string  `json:"grade,omitempty"`
}

// SubjectScores maps subject name to marks. It is stored as a JSONB column.
type SubjectScores map[string]SubjectMark

// Merge returns a new map with incoming laid over s. Keys are replaced whole, never field by field.
func (s SubjectScores) Merge(incoming SubjectScores) SubjectScores {
	out := make(SubjectScores, len(s)+len(incoming))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range incoming {
		out[k] = v
	}
	return out
}

// Total sums TotalMark across subjects.
func (s SubjectScores) Total() float64 {
	var sum float64
	for _, m := range s {
		sum += m.TotalMark
	}
	return sum
}

// Value implements driver.Valuer.
func (s SubjectScores) Value() (driver.Value, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner.
func (s *SubjectScores) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = SubjectScores{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("subject scores: unsupported type %T", src)
	}
	out := SubjectScores{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("subject scores: %w", err)
	}
	*s = out
	return nil
}

// Result is the set of subject marks for one class record and exam type.
type Result struct {
	ID            string        `db:"id" json:"id"`
	ClassRecordID string        `db:"class_record_id" json:"classRecordId"`
	ExamType      ExamType      `db:"exam_type" json:"examType"`
	Subjects      SubjectScores `db:"subjects" json:"subjects"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

// ResultSheetRow is one student's result within a class sheet.
type ResultSheetRow struct {
	ResultID      string        `db:"result_id" json:"resultId"`
	ClassRecordID string        `db:"class_record_id" json:"classRecordId"`
	StudentID     string        `db:"student_id" json:"studentId"`
	StudentName   string        `db:"student_name" json:"studentName"`
	RollNumber    int           `db:"roll_number" json:"rollNumber"`
	Subjects      SubjectScores `db:"subjects" json:"subjects"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}
