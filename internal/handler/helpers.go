package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/utils"
)

// RouteGuards carries the authorization middleware applied to privileged routes.
type RouteGuards struct {
	Staff           fiber.Handler
	PlagiarismLimit fiber.Handler
}

func (g RouteGuards) staff() fiber.Handler {
	if g.Staff == nil {
		return passThrough
	}
	return g.Staff
}

func (g RouteGuards) plagiarismLimit() fiber.Handler {
	if g.PlagiarismLimit == nil {
		return passThrough
	}
	return g.PlagiarismLimit
}

func passThrough(c *fiber.Ctx) error {
	return c.Next()
}

func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	parsed, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || parsed == 0 {
		return 0, errors.New("invalid identifier")
	}
	return uint(parsed), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return parsed, nil
}

func parseQueryUint(c *fiber.Ctx, key string) (*uint, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil, errors.New("invalid " + key)
	}
	result := uint(parsed)
	return &result, nil
}

func parseFormUint(c *fiber.Ctx, key string) (uint, bool, error) {
	value := strings.TrimSpace(c.FormValue(key))
	if value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false, errors.New("invalid " + key)
	}
	return uint(parsed), true, nil
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// validationFailure renders validator errors as a 400 with one entry per failing field.
func validationFailure(c *fiber.Ctx, err error) (bool, error) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return false, nil
	}

	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}
	return true, utils.Fail(c, fiber.StatusBadRequest, "validation failed", details)
}

func internalError(c *fiber.Ctx, logger zerolog.Logger, err error) error {
	requestLogger(logger, c).Error().Err(err).Str("path", c.Path()).Msg("internal server error")
	return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
}
