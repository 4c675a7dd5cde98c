package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/handler"
	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/router"
	"github.com/noah-isme/campus-api/internal/service"
	"github.com/noah-isme/campus-api/internal/similarity"
	"github.com/noah-isme/campus-api/internal/utils"
)

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

type testUploader struct{}

func (testUploader) Upload(_ context.Context, name string, _ io.Reader) (string, error) {
	return "https://files.test/" + name, nil
}

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

type appOptions struct {
	plagiarismLimit fiber.Handler
}

// setupApp wires the real stack on sqlite. Identity comes from X-Test-Role and X-Test-User headers.
func setupApp(t *testing.T, opts appOptions) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
	))

	validate := utils.NewValidator()
	log := zerolog.Nop()

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	similarityService := service.NewSimilarityService(assignmentRepo, courseRepo, similarity.NewEngine(), nil, 0, nil, log)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, testUploader{}, similarityService, log)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, studentRepo, validate, testUploader{}, similarityService, log)
	courseService := service.NewCourseService(courseRepo, log)

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Campus Test", JWTSecret: "secret"}, router.Dependencies{
		DB:                db,
		CourseHandler:     handler.NewCourseHandler(courseService, log),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, log),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, log),
		SimilarityHandler: handler.NewSimilarityHandler(similarityService, log),
		JWTMiddleware:     fakeAuth,
		StaffMiddleware:   middleware.RequireStaff(),
		PlagiarismLimiter: opts.plagiarismLimit,
	})

	return testEnv{app: app, db: db}
}

func fakeAuth(c *fiber.Ctx) error {
	if role := c.Get("X-Test-Role"); role != "" {
		c.Locals("user_role", role)
	}
	if user := c.Get("X-Test-User"); user != "" {
		id, err := strconv.ParseUint(user, 10, 64)
		if err == nil {
			c.Locals("user_id", uint(id))
		}
	}
	return c.Next()
}

type identity struct {
	role string
	user uint
}

var (
	teacher = identity{role: middleware.RoleTeacher, user: 900}
	anon    = identity{}
)

func studentIdentity(id uint) identity {
	return identity{role: middleware.RoleStudent, user: id}
}

func (e testEnv) do(t *testing.T, who identity, req *http.Request) *http.Response {
	t.Helper()
	if who.role != "" {
		req.Header.Set("X-Test-Role", who.role)
	}
	if who.user != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(who.user), 10))
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e testEnv) get(t *testing.T, who identity, path string) *http.Response {
	t.Helper()
	return e.do(t, who, httptest.NewRequest(http.MethodGet, path, nil))
}

func (e testEnv) seedCourse(t *testing.T, code string, names ...string) (models.Course, []models.Student) {
	t.Helper()
	course := models.Course{Code: code, Name: "Course " + code, TeacherName: "Dr. Rivera"}
	require.NoError(t, e.db.Create(&course).Error)

	students := make([]models.Student, 0, len(names))
	for i, name := range names {
		number := fmt.Sprintf("%s-%02d", code, i+1)
		student := models.Student{StudentNumber: number, Name: name, Email: strings.ToLower(number) + "@campus.test"}
		require.NoError(t, e.db.Create(&student).Error)
		students = append(students, student)
	}
	if len(students) > 0 {
		require.NoError(t, e.db.Model(&course).Association("Students").Append(students))
	}
	return course, students
}

func (e testEnv) seedAssignment(t *testing.T, courseID uint, title string) models.Assignment {
	t.Helper()
	assignment := models.Assignment{CourseID: courseID, Title: title, Description: "Write it up", DueDate: time.Now().Add(48 * time.Hour)}
	require.NoError(t, e.db.Omit("Submissions", "Course").Create(&assignment).Error)
	return assignment
}

type formFile struct {
	name    string
	content []byte
}

func multipartRequest(t *testing.T, method, path string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.name)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func (e testEnv) submit(t *testing.T, who identity, assignmentID uint, fields map[string]string, files ...formFile) *http.Response {
	t.Helper()
	path := fmt.Sprintf("/api/v2/campus/assignments/%d/submissions", assignmentID)
	return e.do(t, who, multipartRequest(t, http.MethodPost, path, fields, files...))
}

type envelope[T any] struct {
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Meta    json.RawMessage `json:"meta"`
	Details json.RawMessage `json:"details"`
	Message string          `json:"message"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(data, target))
}

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}
