package dto

import (
	"time"

	"github.com/noah-isme/school-results-api/internal/models"
)

// StudentProfile carries the editable biographical fields.
type StudentProfile struct {
	Name       string         `json:"name" validate:"required,max=120"`
	FatherName string         `json:"fatherName" validate:"max=120"`
	MotherName string         `json:"motherName" validate:"max=120"`
	Mobile     string         `json:"mobile" validate:"omitempty,max=20"`
	Gender     string         `json:"gender" validate:"omitempty,oneof=Male Female Other"`
	BloodGroup string         `json:"bloodGroup" validate:"omitempty,oneof=A_Positive A_Negative B_Positive B_Negative AB_Positive AB_Negative O_Positive O_Negative Unknown"`
	BirthDate  *time.Time     `json:"birthDate"`
	Address    models.Address `json:"address"`
	PhotoURL   string         `json:"photoUrl" validate:"omitempty,url"`
}

// CreateStudentRequest registers a student together with the first class record.
type CreateStudentRequest struct {
	StudentProfile
	ClassName  models.ClassName `json:"className" validate:"required,oneof=Class_6 Class_7 Class_8 Class_9 Class_10"`
	RollNumber *int             `json:"rollNumber" validate:"required,gte=0"`
	Year       int              `json:"year" validate:"omitempty,gte=2000,lte=2100"`
}

// UpdateStudentRequest replaces the biographical fields of a student.
type UpdateStudentRequest struct {
	StudentProfile
}

// UpdateStudentStatusRequest moves a student between lifecycle states.
type UpdateStudentStatusRequest struct {
	Status models.StudentStatus `json:"status" validate:"required,oneof=Active Inactive Graduated Transferred Dropped_Out"`
}

// CreateStudentResponse returns both created rows.
type CreateStudentResponse struct {
	Student     models.Student     `json:"student"`
	ClassRecord models.ClassRecord `json:"classRecord"`
}
