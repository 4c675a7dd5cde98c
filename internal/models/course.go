package models

import "time"

// Course groups enrolled students and the assignments published for them.
type Course struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	TeacherName string       `gorm:"size:255" json:"teacher_name"`
	Students    []Student    `gorm:"many2many:course_enrollments" json:"students"`
	Assignments []Assignment `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
