package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StudentStatus is the soft lifecycle state of a student.
type StudentStatus string

// Student statuses.
const (
	StudentActive      StudentStatus = "Active"
	StudentInactive    StudentStatus = "Inactive"
	StudentGraduated   StudentStatus = "Graduated"
	StudentTransferred StudentStatus = "Transferred"
	StudentDroppedOut  StudentStatus = "Dropped_Out"
)

// StudentStatuses lists every status in display order.
var StudentStatuses = []StudentStatus{StudentActive, StudentInactive, StudentGraduated, StudentTransferred, StudentDroppedOut}

// Address is stored as a JSONB document.
type Address struct {
	HouseOrRoad   string `json:"houseOrRoad,omitempty"`
	VillageOrArea string `json:"villageOrArea,omitempty"`
	PostOffice    string `json:"postOffice,omitempty"`
	Upazila       string `json:"upazila,omitempty"`
	District      string `json:"district,omitempty"`
	Division      string `json:"division,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
}

// Value implements driver.Valuer.
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Address) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = Address{}
		return nil
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("address: unsupported type %T", src)
	}
}

// Student is a learner registered with the school.
type Student struct {
	ID         string        `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	FatherName string        `db:"father_name" json:"fatherName"`
	MotherName string        `db:"mother_name" json:"motherName"`
	Mobile     string        `db:"mobile" json:"mobile"`
	Gender     string        `db:"gender" json:"gender"`
	BloodGroup string        `db:"blood_group" json:"bloodGroup"`
	BirthDate  *time.Time    `db:"birth_date" json:"birthDate,omitempty"`
	Address    Address       `db:"address" json:"address"`
	PhotoURL   string        `db:"photo_url" json:"photoUrl"`
	Status     StudentStatus `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time     `db:"updated_at" json:"updatedAt"`
}

// StudentListItem is a list row carrying the student's latest enrollment.
type StudentListItem struct {
	Student
	ClassName  *ClassName `db:"class_name" json:"className,omitempty"`
	RollNumber *int       `db:"roll_number" json:"rollNumber,omitempty"`
	Year       *int       `db:"year" json:"year,omitempty"`
}

// StudentDetail is a student with full enrollment and result history.
type StudentDetail struct {
	Student
	ClassRecords []ClassRecordDetail `json:"classRecords"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    StudentStatus
	ClassName ClassName
	Year      int
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CountRow is a generic grouped count.
type CountRow struct {
	Key   string `db:"key" json:"key"`
	Count int    `db:"count" json:"count"`
}

// DashboardSummary aggregates the admin dashboard figures.
type DashboardSummary struct {
	Year          int            `json:"year"`
	TotalStudents int            `json:"totalStudents"`
	ByStatus      map[string]int `json:"byStatus"`
	ByClass       map[string]int `json:"byClass"`
	ResultsByExam map[string]int `json:"resultsByExam"`
	System        *SystemMetrics `json:"system,omitempty"`
}
