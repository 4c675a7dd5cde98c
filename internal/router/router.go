package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/handler"
	"github.com/noah-isme/campus-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB                *gorm.DB
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	SimilarityHandler *handler.SimilarityHandler
	JWTMiddleware     fiber.Handler
	StaffMiddleware   fiber.Handler
	PlagiarismLimiter fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	guards := handler.RouteGuards{
		Staff:           deps.StaffMiddleware,
		PlagiarismLimit: deps.PlagiarismLimiter,
	}

	campus := app.Group("/api/v2/campus", jwtMiddleware)

	if deps.CourseHandler != nil {
		deps.CourseHandler.Register(campus.Group("/courses"), guards)
	}

	assignments := campus.Group("/assignments")
	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(assignments, guards)
	}
	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.RegisterAssignmentRoutes(assignments, guards)
		deps.SubmissionHandler.Register(campus.Group("/submissions"), guards)
	}
	if deps.SimilarityHandler != nil {
		deps.SimilarityHandler.Register(assignments, guards)
	}
}
