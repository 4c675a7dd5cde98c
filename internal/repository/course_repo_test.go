package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCourseRepositoryRoster(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	course := seedCourse(t, db, "CS101")
	seedCourse(t, db, "AA100")
	zoe := seedStudent(t, db, "S-9", "Zoe")
	ana := seedStudent(t, db, "S-1", "Ana")
	seedStudent(t, db, "S-5", "Unenrolled")

	require.NoError(t, repo.Enroll(ctx, course.ID, zoe.ID, ana.ID))
	require.NoError(t, repo.Enroll(ctx, course.ID, ana.ID))

	loaded, err := repo.GetWithStudents(ctx, course.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Students, 2)
	require.Equal(t, "Ana", loaded.Students[0].Name)
	require.Equal(t, "Zoe", loaded.Students[1].Name)

	courses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	require.Equal(t, "AA100", courses[0].Code)

	require.ErrorIs(t, repo.Enroll(ctx, course.ID, 4242), gorm.ErrRecordNotFound)
	_, err = repo.GetWithStudents(ctx, 4242)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
