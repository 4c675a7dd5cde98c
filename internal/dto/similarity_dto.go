package dto

import (
	"time"

	"github.com/noah-isme/campus-api/internal/similarity"
)

// StudentRef identifies a student inside a similarity report.
type StudentRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PairScoreResponse is one scored pair of students.
type PairScoreResponse struct {
	A       StudentRef `json:"a"`
	B       StudentRef `json:"b"`
	Percent int        `json:"percent"`
}

// SimilarityReportResponse is the serialized similarity report of an assignment.
type SimilarityReportResponse struct {
	AssignmentID      uint                `json:"assignment_id"`
	Pairs             []PairScoreResponse `json:"pairs"`
	HighPairs         []PairScoreResponse `json:"high_pairs"`
	Groups            [][]StudentRef      `json:"groups"`
	FlaggedStudentIDs []string            `json:"flagged_student_ids"`
	Threshold         int                 `json:"threshold"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

// PlagiarismCheckResponse carries the best-match similarity of one student.
type PlagiarismCheckResponse struct {
	AssignmentID      uint `json:"assignment_id"`
	StudentID         uint `json:"student_id"`
	SimilarityPercent int  `json:"similarity_percent"`
}

// SubmissionStatsResponse summarizes submission progress for an assignment's course roster.
type SubmissionStatsResponse struct {
	AssignmentID        uint          `json:"assignment_id"`
	TotalStudents       int           `json:"total_students"`
	Submitted           int           `json:"submitted"`
	SubmittedPercent    int           `json:"submitted_percent"`
	MissingCount        int           `json:"missing_count"`
	Missing             []StudentLite `json:"missing"`
	LowRate             bool          `json:"low_rate"`
	HighSimilarityCount int           `json:"high_similarity_count"`
	Threshold           int           `json:"threshold"`
}

// NewSimilarityReportResponse converts an engine report.
func NewSimilarityReportResponse(assignmentID uint, report similarity.Report, generatedAt time.Time) SimilarityReportResponse {
	groups := make([][]StudentRef, 0, len(report.Groups))
	for _, group := range report.Groups {
		members := make([]StudentRef, 0, len(group))
		for _, student := range group {
			members = append(members, StudentRef{ID: student.ID, Name: student.Name})
		}
		groups = append(groups, members)
	}

	flagged := make([]string, 0, len(report.FlaggedStudentIDs))
	flagged = append(flagged, report.FlaggedStudentIDs...)

	return SimilarityReportResponse{
		AssignmentID:      assignmentID,
		Pairs:             newPairScoreResponses(report.Pairs),
		HighPairs:         newPairScoreResponses(report.HighPairs),
		Groups:            groups,
		FlaggedStudentIDs: flagged,
		Threshold:         report.Threshold,
		GeneratedAt:       generatedAt,
	}
}

func newPairScoreResponses(pairs []similarity.PairScore) []PairScoreResponse {
	responses := make([]PairScoreResponse, 0, len(pairs))
	for _, pair := range pairs {
		responses = append(responses, PairScoreResponse{
			A:       StudentRef{ID: pair.A.ID, Name: pair.A.Name},
			B:       StudentRef{ID: pair.B.ID, Name: pair.B.Name},
			Percent: pair.Percent,
		})
	}
	return responses
}
