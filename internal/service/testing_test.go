package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/utils"
)

var pdfContent = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestValidator() *validator.Validate {
	return utils.NewValidator()
}

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
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

func seedCourseWithStudents(t *testing.T, db *gorm.DB, code string, names ...string) (models.Course, []models.Student) {
	t.Helper()
	course := models.Course{Code: code, Name: "Course " + code}
	require.NoError(t, db.Create(&course).Error)

	students := make([]models.Student, 0, len(names))
	for i, name := range names {
		number := fmt.Sprintf("%s-%03d", code, i+1)
		student := models.Student{StudentNumber: number, Name: name, Email: strings.ToLower(number) + "@campus.test"}
		require.NoError(t, db.Create(&student).Error)
		students = append(students, student)
	}
	if len(students) > 0 {
		require.NoError(t, db.Model(&course).Association("Students").Append(students))
	}
	return course, students
}

func seedAssignment(t *testing.T, db *gorm.DB, courseID uint, title string, due time.Time) models.Assignment {
	t.Helper()
	assignment := models.Assignment{CourseID: courseID, Title: title, DueDate: due}
	require.NoError(t, db.Omit("Submissions", "Course").Create(&assignment).Error)
	return assignment
}

func seedSubmission(t *testing.T, db *gorm.DB, assignmentID, studentID uint, files ...string) models.Submission {
	t.Helper()
	attachments := make([]models.SubmissionAttachment, 0, len(files))
	for position, name := range files {
		attachments = append(attachments, models.SubmissionAttachment{
			Position: position,
			Name:     name,
			URL:      "https://files.test/" + name,
		})
	}
	submission := models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  time.Now().UTC(),
		Attachments:  attachments,
	}
	require.NoError(t, db.Omit("Assignment", "Student").Create(&submission).Error)
	return submission
}

type stubUploader struct {
	uploads int
	names   []string
}

func (s *stubUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	s.uploads++
	s.names = append(s.names, name)
	return "https://example.com/" + name, nil
}

type recordingInvalidator struct {
	calls []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, assignmentID uint) {
	r.calls = append(r.calls, assignmentID)
}

func newTestFileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	headers := newTestFileHeaders(t, map[string][]byte{name: content}, name)
	return headers[0]
}

// newTestFileHeaders builds a multipart form with files added in order.
func newTestFileHeaders(t *testing.T, contents map[string][]byte, order ...string) []*multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	size := 0
	for _, name := range order {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(contents[name])
		require.NoError(t, err)
		size += len(contents[name])
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(int64(size)+4096))
	files := req.MultipartForm.File["files"]
	require.Len(t, files, len(order))
	return files
}
