package handler_test

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/handler"
)

func TestCourseHandlerListAndRoster(t *testing.T) {
	env := setupApp(t, appOptions{})
	env.seedCourse(t, "MATH200")
	course, _ := env.seedCourse(t, "CS100", "Zed", "Amy")

	resp := env.get(t, studentIdentity(1), "/api/v2/campus/courses")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed envelope[[]dto.CourseResponse]
	decodeResponse(t, resp, &listed)
	require.Len(t, listed.Data, 2)
	require.Equal(t, "CS100", listed.Data[0].Code)

	rosterPath := fmt.Sprintf("/api/v2/campus/courses/%d", course.ID)
	require.Equal(t, fiber.StatusForbidden, env.get(t, studentIdentity(1), rosterPath).StatusCode)

	resp = env.get(t, teacher, rosterPath)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var detail envelope[dto.CourseDetailResponse]
	decodeResponse(t, resp, &detail)
	require.Equal(t, "Dr. Rivera", detail.Data.TeacherName)
	require.Len(t, detail.Data.Students, 2)
	require.Equal(t, "Amy", detail.Data.Students[0].Name)

	require.Equal(t, fiber.StatusNotFound, env.get(t, teacher, "/api/v2/campus/courses/404").StatusCode)
}

func TestHealthCheckReportsDatabase(t *testing.T) {
	env := setupApp(t, appOptions{})

	resp := env.get(t, anon, "/api/v1/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "Campus Test", resp.Header.Get("X-Application"))

	var body envelope[handler.HealthResponse]
	decodeResponse(t, resp, &body)
	require.Equal(t, "ok", body.Data.Status)
	require.Equal(t, "ok", body.Data.Checks["database"])
}

func TestMetricsEndpointExposesCollectors(t *testing.T) {
	env := setupApp(t, appOptions{})
	env.get(t, anon, "/api/v2/campus/courses")

	resp := env.get(t, anon, "/metrics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
