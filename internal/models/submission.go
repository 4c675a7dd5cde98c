package models

import "time"

// Submission is a student's latest attempt at an assignment. A resubmission replaces it.
type Submission struct {
	ID           uint                   `gorm:"primaryKey" json:"id"`
	AssignmentID uint                   `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"assignment_id"`
	StudentID    uint                   `gorm:"not null;uniqueIndex:idx_submission_assignment_student" json:"student_id"`
	Notes        string                 `gorm:"type:text" json:"notes"`
	Status       string                 `gorm:"size:32;not null" json:"status"`
	Grade        *float64               `json:"grade"`
	Feedback     string                 `gorm:"type:text" json:"feedback"`
	SubmittedAt  time.Time              `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
	Assignment   Assignment             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignment"`
	Student      Student                `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
	Attachments  []SubmissionAttachment `gorm:"constraint:OnDelete:CASCADE" json:"attachments"`
}

// SubmissionAttachment is one uploaded file. Position preserves upload order.
type SubmissionAttachment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"index;not null" json:"submission_id"`
	Position     int       `gorm:"not null" json:"position"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	URL          string    `gorm:"size:512" json:"url"`
	MimeType     string    `gorm:"size:128" json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	// SubmissionStatusSubmitted indicates the submission has been uploaded but not graded.
	SubmissionStatusSubmitted = "submitted"
	// SubmissionStatusGraded indicates the submission has been evaluated.
	SubmissionStatusGraded = "graded"
)

// IsGraded reports whether the submission has a final grade.
func (s Submission) IsGraded() bool {
	return s.Status == SubmissionStatusGraded
}
