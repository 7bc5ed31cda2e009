package model

import "time"

// DateLayout is the wire format of calendar dates (birth dates).
const DateLayout = "2006-01-02"

// Student is a person assessed by evaluators.
type Student struct {
	ID          int       `json:"id"`
	FullName    string    `json:"full_name"`
	DateOfBirth time.Time `json:"date_of_birth"`
	GradeLevel  string    `json:"grade_level"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StudentRequest is the payload for creating or updating a student.
type StudentRequest struct {
	FullName    string `json:"full_name" binding:"required,min=2,max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	GradeLevel  string `json:"grade_level" binding:"required,max=20"`
}

// ToStudent converts the request into a Student. The date has already been validated by binding.
func (r StudentRequest) ToStudent() (*Student, error) {
	dob, err := time.Parse(DateLayout, r.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return &Student{
		FullName:    r.FullName,
		DateOfBirth: dob,
		GradeLevel:  r.GradeLevel,
	}, nil
}
