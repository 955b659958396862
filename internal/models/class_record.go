package models

import (
	"strings"
	"time"
)

// ClassRecordRollConstraint is the unique index over (class_name, year, roll_number).
const ClassRecordRollConstraint = "class_records_roll_unique"

// ClassName identifies one of the supported class levels.
type ClassName string

// Supported class levels, lowest first.
const (
	Class6  ClassName = "Class_6"
	Class7  ClassName = "Class_7"
	Class8  ClassName = "Class_8"
	Class9  ClassName = "Class_9"
	Class10 ClassName = "Class_10"
)

// ClassOrder is the fixed promotion order.
var ClassOrder = []ClassName{Class6, Class7, Class8, Class9, Class10}

// ParseClassName accepts "Class_6", "Class 6", "CLASS_6" or a bare "6".
func ParseClassName(raw string) (ClassName, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	if !strings.Contains(strings.ToLower(s), "class") {
		s = "Class_" + s
	}
	for _, c := range ClassOrder {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is a supported class.
func (c ClassName) Valid() bool {
	return c.Index() >= 0
}

// Index returns the position of c in ClassOrder or -1.
func (c ClassName) Index() int {
	for i, v := range ClassOrder {
		if v == c {
			return i
		}
	}
	return -1
}

// Next returns the class a student is promoted into. ok is false for the last class.
func (c ClassName) Next() (ClassName, bool) {
	i := c.Index()
	if i < 0 || i >= len(ClassOrder)-1 {
		return "", false
	}
	return ClassOrder[i+1], true
}

// Upper reports whether c belongs to the secondary tier (classes 9 and 10).
func (c ClassName) Upper() bool {
	return c == Class9 || c == Class10
}

// Label renders the human form, e.g. "Class 6".
func (c ClassName) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// ClassRecord is a student's enrollment in one class for one academic year.
type ClassRecord struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"studentId"`
	ClassName  ClassName `db:"class_name" json:"className"`
	RollNumber int       `db:"roll_number" json:"rollNumber"`
	Year       int       `db:"year" json:"year"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// ClassRecordDetail attaches the exam results recorded against a class record.
type ClassRecordDetail struct {
	ClassRecord
	Results []Result `json:"results"`
}

// RosterEntry is one enrolled student as offered to the add-results workflow.
type RosterEntry struct {
	StudentID     string        `db:"student_id" json:"studentId"`
	ClassRecordID string        `db:"class_record_id" json:"classRecordId"`
	Name          string        `db:"name" json:"name"`
	Status        StudentStatus `db:"status" json:"status"`
	RollNumber    int           `db:"roll_number" json:"rollNumber"`
}

// LatestClassRecord returns the most recent record by year, or nil.
func LatestClassRecord(records []ClassRecord) *ClassRecord {
	var latest *ClassRecord
	for i := range records {
		if latest == nil || records[i].Year > latest.Year ||
			(records[i].Year == latest.Year && records[i].ClassName.Index() > latest.ClassName.Index()) {
			latest = &records[i]
		}
	}
	return latest
}
