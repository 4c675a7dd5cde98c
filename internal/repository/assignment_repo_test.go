package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/models"
)

func TestAssignmentRepositoryListFiltersByCourseAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)
	ctx := context.Background()

	algo := seedCourse(t, db, "CS101")
	net := seedCourse(t, db, "CS202")
	now := time.Now().UTC()

	for _, a := range []models.Assignment{
		{CourseID: algo.ID, Title: "Graph search", Description: "bfs and dfs", DueDate: now.Add(48 * time.Hour)},
		{CourseID: algo.ID, Title: "Sorting", Description: "merge sort", DueDate: now.Add(24 * time.Hour)},
		{CourseID: net.ID, Title: "Graph routing", Description: "dijkstra", DueDate: now.Add(72 * time.Hour)},
	} {
		assignment := a
		require.NoError(t, repo.Create(ctx, &assignment))
	}

	items, total, err := repo.ListWithFilter(ctx, AssignmentFilter{CourseID: &algo.ID})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, "Sorting", items[0].Title, "expected earliest due date first")

	items, total, err = repo.ListWithFilter(ctx, AssignmentFilter{Search: "GRAPH", Sort: "-due_date", PageSize: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Len(t, items, 1)
	require.Equal(t, "Graph routing", items[0].Title)
}

func TestAssignmentRepositoryGetWithSubmissionsOrdersData(t *testing.T) {
	db := setupTestDB(t)
	assignments := NewAssignmentRepository(db)
	submissions := NewSubmissionRepository(db)
	ctx := context.Background()

	course := seedCourse(t, db, "CS101")
	ana := seedStudent(t, db, "S-1", "Ana")
	ben := seedStudent(t, db, "S-2", "Ben")

	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", Description: "write", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, assignments.Create(ctx, &assignment))

	base := time.Now().UTC().Add(-time.Hour)
	first := models.Submission{
		AssignmentID: assignment.ID, StudentID: ben.ID, Status: models.SubmissionStatusSubmitted,
		SubmittedAt: base, CreatedAt: base,
		Attachments: []models.SubmissionAttachment{{Position: 1, Name: "second.pdf"}, {Position: 0, Name: "first.pdf"}},
	}
	second := models.Submission{
		AssignmentID: assignment.ID, StudentID: ana.ID, Status: models.SubmissionStatusSubmitted,
		SubmittedAt: base.Add(time.Minute), CreatedAt: base.Add(time.Minute),
	}
	_, err := submissions.Save(ctx, &first)
	require.NoError(t, err)
	_, err = submissions.Save(ctx, &second)
	require.NoError(t, err)

	loaded, err := assignments.GetWithSubmissions(ctx, assignment.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Submissions, 2)
	require.Equal(t, "Ben", loaded.Submissions[0].Student.Name)
	require.Equal(t, "Ana", loaded.Submissions[1].Student.Name)
	require.Equal(t, "first.pdf", loaded.Submissions[0].Attachments[0].Name)
	require.Equal(t, "second.pdf", loaded.Submissions[0].Attachments[1].Name)
	require.Empty(t, loaded.Submissions[1].Attachments)
}

func TestAssignmentRepositoryMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAssignmentRepository(db)

	_, err := repo.GetWithSubmissions(context.Background(), 999)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	require.ErrorIs(t, repo.Delete(context.Background(), 999), gorm.ErrRecordNotFound)
}

func TestAssignmentRepositoryDeleteRemovesSubmissions(t *testing.T) {
	db := setupTestDB(t)
	assignments := NewAssignmentRepository(db)
	submissions := NewSubmissionRepository(db)
	ctx := context.Background()

	course := seedCourse(t, db, "CS101")
	ana := seedStudent(t, db, "S-1", "Ana")
	assignment := models.Assignment{CourseID: course.ID, Title: "Essay", DueDate: time.Now().Add(time.Hour)}
	require.NoError(t, assignments.Create(ctx, &assignment))

	submission := models.Submission{
		AssignmentID: assignment.ID, StudentID: ana.ID, Status: models.SubmissionStatusSubmitted,
		SubmittedAt: time.Now().UTC(),
		Attachments: []models.SubmissionAttachment{{Position: 0, Name: "essay.pdf"}},
	}
	_, err := submissions.Save(ctx, &submission)
	require.NoError(t, err)

	require.NoError(t, assignments.Delete(ctx, assignment.ID))

	var count int64
	require.NoError(t, db.Model(&models.Submission{}).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.SubmissionAttachment{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestAssignmentOrder(t *testing.T) {
	require.Equal(t, "due_date ASC, id ASC", assignmentOrder(""))
	require.Equal(t, "due_date DESC, id ASC", assignmentOrder("-due_date"))
	require.Equal(t, "title DESC, id ASC", assignmentOrder("title.desc"))
	require.Equal(t, "updated_at ASC, id ASC", assignmentOrder("Updated_At:asc"))
	require.Equal(t, "due_date ASC, id ASC", assignmentOrder("-password"))
}
