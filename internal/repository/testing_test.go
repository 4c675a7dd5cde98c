package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/campus-api/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
	))
	return db
}

func seedCourse(t *testing.T, db *gorm.DB, code string) models.Course {
	t.Helper()
	course := models.Course{Code: code, Name: "Course " + code}
	require.NoError(t, db.Create(&course).Error)
	return course
}

func seedStudent(t *testing.T, db *gorm.DB, number, name string) models.Student {
	t.Helper()
	student := models.Student{StudentNumber: number, Name: name, Email: strings.ToLower(number) + "@campus.test"}
	require.NoError(t, db.Create(&student).Error)
	return student
}
