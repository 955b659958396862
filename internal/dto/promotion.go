package dto

import "github.com/noah-isme/school-results-api/internal/models"

// PromoteStudentRequest enrols a student into a new class record.
// RollNumber is a pointer so an explicit 0 is distinguishable from a missing field.
type PromoteStudentRequest struct {
	StudentID  string           `json:"studentId" validate:"required"`
	ClassName  models.ClassName `json:"className" validate:"required,oneof=Class_6 Class_7 Class_8 Class_9 Class_10"`
	Year       int              `json:"year" validate:"required,gte=2000,lte=2100"`
	RollNumber *int             `json:"rollNumber" validate:"required,gte=0"`
}

// PromotionChoice is one suggested next enrolment.
type PromotionChoice struct {
	ClassName  models.ClassName `json:"className"`
	Year       int              `json:"year"`
	RollNumber int              `json:"rollNumber"`
}

// PromotionOptions lists the available next enrolments for a student.
// MinYear is the earliest year the promotion form should offer; Promote does not enforce it.
type PromotionOptions struct {
	StudentID string              `json:"studentId"`
	Latest    *models.ClassRecord `json:"latest,omitempty"`
	MinYear   int                 `json:"minYear,omitempty"`
	Promote   *PromotionChoice    `json:"promote,omitempty"`
	Repeat    *PromotionChoice    `json:"repeat,omitempty"`
}
