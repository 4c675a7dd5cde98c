package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/repository"
)

// ErrCourseNotFound indicates the requested course does not exist.
var ErrCourseNotFound = errors.New("course not found")

// CourseService exposes courses and their rosters.
type CourseService interface {
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Get(ctx context.Context, id uint) (dto.CourseDetailResponse, error)
}

type courseService struct {
	repo   repository.CourseRepository
	logger zerolog.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo repository.CourseRepository, logger zerolog.Logger) CourseService {
	return &courseService{
		repo:   repo,
		logger: logger.With().Str("component", "course_service").Logger(),
	}
}

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CourseResponse, 0, len(courses))
	for _, course := range courses {
		responses = append(responses, dto.NewCourseResponse(course))
	}
	return responses, nil
}

func (s *courseService) Get(ctx context.Context, id uint) (dto.CourseDetailResponse, error) {
	course, err := s.repo.GetWithStudents(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.CourseDetailResponse{}, ErrCourseNotFound
		}
		return dto.CourseDetailResponse{}, err
	}

	return dto.NewCourseDetailResponse(course), nil
}
