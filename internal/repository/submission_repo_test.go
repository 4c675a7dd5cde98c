package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/models"
)

func TestSubmissionRepositorySaveReplacesPreviousAttempt(t *testing.T) {
	db := setupTestDB(t)
	assignments := NewAssignmentRepository(db)
	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	course := seedCourse(t, db, "CS101")
	ana := seedStudent(t, db, "S-1", "Ana")
	ben := seedStudent(t, db, "S-2", "Ben")
	assignment := models.Assignment{CourseID: course.ID, Title: "Lab", Description: "lab work", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, assignments.Create(ctx, &assignment))

	now := time.Now().UTC()
	initial := models.Submission{
		AssignmentID: assignment.ID, StudentID: ana.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now,
		Attachments: []models.SubmissionAttachment{{Position: 0, Name: "draft.pdf"}},
	}
	replaced, err := repo.Save(ctx, &initial)
	require.NoError(t, err)
	require.False(t, replaced)

	other := models.Submission{AssignmentID: assignment.ID, StudentID: ben.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now}
	_, err = repo.Save(ctx, &other)
	require.NoError(t, err)

	grade := 80.0
	initial.Grade = &grade
	initial.Status = models.SubmissionStatusGraded
	require.NoError(t, repo.Update(ctx, &initial))

	again := models.Submission{
		AssignmentID: assignment.ID, StudentID: ana.ID, Status: models.SubmissionStatusSubmitted, SubmittedAt: now.Add(time.Minute),
		Attachments: []models.SubmissionAttachment{{Position: 0, Name: "final.pdf"}, {Position: 1, Name: "appendix.pdf"}},
	}
	replaced, err = repo.Save(ctx, &again)
	require.NoError(t, err)
	require.True(t, replaced)
	require.Equal(t, initial.ID, again.ID)

	stored, err := repo.GetByAssignmentAndStudent(ctx, assignment.ID, ana.ID)
	require.NoError(t, err)
	require.Nil(t, stored.Grade)
	require.Equal(t, models.SubmissionStatusSubmitted, stored.Status)
	require.Len(t, stored.Attachments, 2)
	require.Equal(t, "final.pdf", stored.Attachments[0].Name)

	var attachmentCount int64
	require.NoError(t, db.Model(&models.SubmissionAttachment{}).Count(&attachmentCount).Error)
	require.Equal(t, int64(2), attachmentCount)

	all, err := repo.List(ctx, SubmissionFilter{AssignmentID: &assignment.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, ana.ID, all[0].StudentID, "replacement keeps the original position")
}
