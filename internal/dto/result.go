package dto

import (
	"github.com/noah-isme/school-results-api/internal/grading"
	"github.com/noah-isme/school-results-api/internal/models"
)

// TestInfo describes the exam a batch of marks belongs to.
type TestInfo struct {
	ClassName            models.ClassName `json:"className" validate:"required,oneof=Class_6 Class_7 Class_8 Class_9 Class_10"`
	TestType             models.ExamType  `json:"testType" validate:"required,oneof=Mid_Term Final"`
	WrittenMarks         float64          `json:"writtenMarks" validate:"gte=0"`
	MCQMarks             float64          `json:"mcqMarks" validate:"gte=0"`
	TotalMarksPerSubject float64          `json:"totalMarksPerSubject" validate:"gte=0"`
	Subjects             []string         `json:"subjects"`
	Year                 int              `json:"year" validate:"omitempty,gte=2000,lte=2100"`
}

// StudentResultEntry is one student's marks in a submission.
type StudentResultEntry struct {
	StudentID   string               `json:"studentId" validate:"required"`
	StudentName string               `json:"studentName"`
	RollNumber  int                  `json:"rollNumber" validate:"gte=0"`
	Subjects    models.SubjectScores `json:"subjects"`
	TotalMarks  float64              `json:"totalMarks"`
}

// SubmitResultsRequest is the batch payload accepted by the result upsert endpoint.
type SubmitResultsRequest struct {
	TestInfo TestInfo             `json:"testInfo"`
	Results  []StudentResultEntry `json:"results" validate:"required,min=1,dive"`
}

// Outcome statuses for a submitted entry.
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
)

// ResultOutcome reports what happened to one submitted entry.
type ResultOutcome struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
	ResultID  string `json:"resultId,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// SubmitResultsResponse summarises a batch submission.
type SubmitResultsResponse struct {
	Message  string          `json:"message"`
	Created  int             `json:"created"`
	Updated  int             `json:"updated"`
	Skipped  int             `json:"skipped"`
	Outcomes []ResultOutcome `json:"outcomes"`
}

// ResultLookupQuery captures the public lookup parameters.
type ResultLookupQuery struct {
	ClassName  string
	RollNumber string
	ExamType   string
	Year       string
}

// ResultLookupResponse is the public view of one student's exam result.
type ResultLookupResponse struct {
	Student     ResultStudent      `json:"student"`
	ClassRecord models.ClassRecord `json:"classRecord"`
	Result      models.Result      `json:"result"`
	TotalMarks  float64            `json:"totalMarks"`
	MaxMarks    float64            `json:"maxMarks"`
	Percentage  float64            `json:"percentage"`
	Summary     grading.Summary    `json:"summary"`
}

// ResultStudent is the subset of student fields disclosed by the public lookup.
type ResultStudent struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	FatherName string `json:"fatherName"`
	MotherName string `json:"motherName"`
}

// ClassSheetRow is one student on a class result sheet.
type ClassSheetRow struct {
	models.ResultSheetRow
	TotalMarks float64         `json:"totalMarks"`
	Summary    grading.Summary `json:"summary"`
}

// ClassSheet is the admin view of all results for a class exam.
type ClassSheet struct {
	ClassName models.ClassName `json:"className"`
	ExamType  models.ExamType  `json:"examType"`
	Year      int              `json:"year"`
	Subjects  []string         `json:"subjects"`
	Rows      []ClassSheetRow  `json:"rows"`
}
