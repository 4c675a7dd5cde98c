package models

import (
	"strconv"
	"time"
)

// Student represents a learner that can enroll in courses and submit assignments.
type Student struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	StudentNumber string    `gorm:"size:32;uniqueIndex;not null" json:"student_number"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Email         string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Courses       []Course  `gorm:"many2many:course_enrollments" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key returns the opaque identifier used when comparing students across submissions.
func (s Student) Key() string {
	return strconv.FormatUint(uint64(s.ID), 10)
}
