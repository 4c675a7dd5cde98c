package dto

import "github.com/noah-isme/campus-api/internal/models"

// CourseResponse summarizes a course.
type CourseResponse struct {
	ID          uint   `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	TeacherName string `json:"teacher_name"`
}

// CourseDetailResponse includes the enrollment roster.
type CourseDetailResponse struct {
	CourseResponse
	Students []StudentLite `json:"students"`
}

// NewCourseResponse converts a course model.
func NewCourseResponse(model models.Course) CourseResponse {
	return CourseResponse{
		ID:          model.ID,
		Code:        model.Code,
		Name:        model.Name,
		TeacherName: model.TeacherName,
	}
}

// NewCourseDetailResponse converts a course with its preloaded students.
func NewCourseDetailResponse(model models.Course) CourseDetailResponse {
	students := make([]StudentLite, 0, len(model.Students))
	for _, student := range model.Students {
		students = append(students, NewStudentLite(student))
	}

	return CourseDetailResponse{
		CourseResponse: NewCourseResponse(model),
		Students:       students,
	}
}
