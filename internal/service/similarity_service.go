package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/observability"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/similarity"
)

// lowSubmissionRate is the submitted percentage under which an assignment is highlighted.
const lowSubmissionRate = 70

// SimilarityService serves plagiarism triage for assignments.
type SimilarityService interface {
	Report(ctx context.Context, assignmentID uint) (dto.SimilarityReportResponse, error)
	CheckPlagiarism(ctx context.Context, assignmentID, studentID uint) (dto.PlagiarismCheckResponse, error)
	Stats(ctx context.Context, assignmentID uint) (dto.SubmissionStatsResponse, error)
	Invalidate(ctx context.Context, assignmentID uint)
}

type similarityService struct {
	assignments repository.AssignmentRepository
	courses     repository.CourseRepository
	engine      *similarity.Engine
	cache       *redis.Client
	cacheTTL    time.Duration
	alerts      AlertPublisher
	logger      zerolog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewSimilarityService builds the similarity service. cache and alerts may be nil.
func NewSimilarityService(assignments repository.AssignmentRepository, courses repository.CourseRepository, engine *similarity.Engine, cache *redis.Client, ttl time.Duration, alerts AlertPublisher, logger zerolog.Logger) SimilarityService {
	if engine == nil {
		engine = similarity.NewEngine()
	}
	if alerts == nil {
		alerts = noopAlertPublisher{}
	}

	return &similarityService{
		assignments: assignments,
		courses:     courses,
		engine:      engine,
		cache:       cache,
		cacheTTL:    ttl,
		alerts:      alerts,
		logger:      logger.With().Str("component", "similarity_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/campus-api/internal/service/similarity"),
		now:         time.Now,
	}
}

func reportCacheKey(assignmentID uint) string {
	return fmt.Sprintf("similarity:assignment:%d", assignmentID)
}

// reportGenerationKey counts invalidations of an assignment's report. A report is only cached
// when the generation it was built under is still current.
func reportGenerationKey(assignmentID uint) string {
	return fmt.Sprintf("similarity:assignment:%d:generation", assignmentID)
}

var errStaleReport = errors.New("similarity report invalidated while building")

func (s *similarityService) Report(ctx context.Context, assignmentID uint) (dto.SimilarityReportResponse, error) {
	if cached, ok := s.cachedReport(ctx, assignmentID); ok {
		observability.SimilarityReports().WithLabelValues("cache").Inc()
		return cached, nil
	}

	generation, known := s.generation(ctx, assignmentID)
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SimilarityReportResponse{}, err
	}

	response, alertCtx := s.buildReport(ctx, assignment)
	if len(response.Groups) > 0 {
		s.publishAlert(alertCtx, assignment, response)
	}
	if known {
		s.storeReport(ctx, generation, response)
	}

	return response, nil
}

// buildReport scores the loaded submissions. It has no side effects beyond metrics and tracing.
func (s *similarityService) buildReport(ctx context.Context, assignment models.Assignment) (dto.SimilarityReportResponse, context.Context) {
	spanCtx, span := s.tracer.Start(ctx, "similarity.build_report", trace.WithAttributes(
		attribute.Int64("assignment.id", int64(assignment.ID)),
		attribute.Int("submissions.count", len(assignment.Submissions)),
	))
	defer span.End()

	started := time.Now()
	report := s.engine.BuildReport(assignment.Key(), toSimilaritySubmissions(assignment.Submissions))
	observability.SimilarityBuildDuration().Observe(time.Since(started).Seconds())
	observability.SimilarityPairsEvaluated().Observe(float64(len(report.Pairs)))
	observability.SimilarityFlaggedStudents().Observe(float64(len(report.FlaggedStudentIDs)))
	observability.SimilarityReports().WithLabelValues("computed").Inc()

	span.SetAttributes(
		attribute.Int("report.high_pairs", len(report.HighPairs)),
		attribute.Int("report.groups", len(report.Groups)),
	)

	s.logger.Info().
		Str("correlation_id", observability.CorrelationID(ctx)).
		Uint("assignment_id", assignment.ID).
		Int("submissions", len(assignment.Submissions)).
		Int("high_pairs", len(report.HighPairs)).
		Int("groups", len(report.Groups)).
		Msg("similarity report built")

	return dto.NewSimilarityReportResponse(assignment.ID, report, s.now().UTC()), spanCtx
}

func (s *similarityService) CheckPlagiarism(ctx context.Context, assignmentID, studentID uint) (dto.PlagiarismCheckResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.PlagiarismCheckResponse{}, err
	}

	studentKey := strconv.FormatUint(uint64(studentID), 10)
	percent := s.engine.BestMatch(assignment.Key(), toSimilaritySubmissions(assignment.Submissions), studentKey)

	return dto.PlagiarismCheckResponse{
		AssignmentID:      assignment.ID,
		StudentID:         studentID,
		SimilarityPercent: percent,
	}, nil
}

// Stats summarizes submission progress. It reuses a cached report when present but never
// publishes alerts or writes the cache.
func (s *similarityService) Stats(ctx context.Context, assignmentID uint) (dto.SubmissionStatsResponse, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return dto.SubmissionStatsResponse{}, err
	}

	course, err := s.courses.GetWithStudents(ctx, assignment.CourseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionStatsResponse{}, ErrCourseNotFound
		}
		return dto.SubmissionStatsResponse{}, err
	}

	report, ok := s.cachedReport(ctx, assignmentID)
	if !ok {
		report, _ = s.buildReport(ctx, assignment)
	}

	submitted := make(map[uint]struct{}, len(assignment.Submissions))
	for _, submission := range assignment.Submissions {
		submitted[submission.StudentID] = struct{}{}
	}

	missing := make([]dto.StudentLite, 0)
	for _, student := range course.Students {
		if _, ok := submitted[student.ID]; !ok {
			missing = append(missing, dto.NewStudentLite(student))
		}
	}

	total := len(course.Students)
	percent := 0
	if total > 0 {
		percent = int(math.Round(float64(len(assignment.Submissions)) / float64(total) * 100))
	}

	return dto.SubmissionStatsResponse{
		AssignmentID:        assignment.ID,
		TotalStudents:       total,
		Submitted:           len(assignment.Submissions),
		SubmittedPercent:    percent,
		MissingCount:        len(missing),
		Missing:             missing,
		LowRate:             percent < lowSubmissionRate,
		HighSimilarityCount: len(report.FlaggedStudentIDs),
		Threshold:           report.Threshold,
	}, nil
}

// Invalidate bumps the assignment's report generation and drops the cached report. A report
// still being built under the previous generation is then never stored.
func (s *similarityService) Invalidate(ctx context.Context, assignmentID uint) {
	if s.cache == nil {
		return
	}
	_, err := s.cache.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, reportGenerationKey(assignmentID))
		pipe.Del(ctx, reportCacheKey(assignmentID))
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to invalidate similarity cache")
	}
}

// generation reads the current report generation. known is false when caching is disabled or
// the generation cannot be read, in which case the report must not be stored.
func (s *similarityService) generation(ctx context.Context, assignmentID uint) (string, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return "", false
	}

	value, err := s.cache.Get(ctx, reportGenerationKey(assignmentID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "0", true
	case err != nil:
		s.logger.Warn().Err(err).Uint("assignment_id", assignmentID).Msg("failed to read similarity cache generation")
		return "", false
	}
	return value, true
}

func (s *similarityService) loadAssignment(ctx context.Context, assignmentID uint) (models.Assignment, error) {
	assignment, err := s.assignments.GetWithSubmissions(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Assignment{}, ErrAssignmentNotFound
		}
		return models.Assignment{}, err
	}
	return assignment, nil
}

func (s *similarityService) cachedReport(ctx context.Context, assignmentID uint) (dto.SimilarityReportResponse, bool) {
	if s.cache == nil {
		return dto.SimilarityReportResponse{}, false
	}

	cached, err := s.cache.Get(ctx, reportCacheKey(assignmentID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Msg("failed to read similarity cache")
		}
		return dto.SimilarityReportResponse{}, false
	}

	var response dto.SimilarityReportResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		s.logger.Warn().Err(err).Msg("discarding malformed similarity cache entry")
		return dto.SimilarityReportResponse{}, false
	}

	s.logger.Debug().Uint("assignment_id", assignmentID).Msg("similarity cache hit")
	return response, true
}

func (s *similarityService) storeReport(ctx context.Context, generation string, response dto.SimilarityReportResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	generationKey := reportGenerationKey(response.AssignmentID)
	err = s.cache.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, generationKey).Result()
		switch {
		case errors.Is(err, redis.Nil):
			current = "0"
		case err != nil:
			return err
		}
		if current != generation {
			return errStaleReport
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, reportCacheKey(response.AssignmentID), payload, s.cacheTTL)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleReport), errors.Is(err, redis.TxFailedErr):
		s.logger.Debug().Uint("assignment_id", response.AssignmentID).Msg("skipping cache of invalidated similarity report")
	default:
		s.logger.Warn().Err(err).Msg("failed to store similarity cache")
	}
}

func (s *similarityService) publishAlert(ctx context.Context, assignment models.Assignment, response dto.SimilarityReportResponse) {
	groups := make([][]string, 0, len(response.Groups))
	for _, group := range response.Groups {
		ids := make([]string, 0, len(group))
		for _, member := range group {
			ids = append(ids, member.ID)
		}
		groups = append(groups, ids)
	}

	alert := SimilarityAlert{
		AssignmentID:      assignment.ID,
		CourseID:          assignment.CourseID,
		Threshold:         response.Threshold,
		Groups:            groups,
		FlaggedStudentIDs: response.FlaggedStudentIDs,
		GeneratedAt:       response.GeneratedAt,
	}

	err := s.alerts.PublishSimilarityAlert(ctx, alert)
	if errors.Is(err, ErrAlertThrottled) {
		observability.SimilarityAlerts().WithLabelValues("throttled").Inc()
		s.logger.Debug().Uint("assignment_id", assignment.ID).Msg("similarity alert throttled")
		return
	}
	if err != nil {
		observability.SimilarityAlerts().WithLabelValues("failed").Inc()
		s.logger.Warn().
			Err(err).
			Str("correlation_id", observability.CorrelationID(ctx)).
			Uint("assignment_id", assignment.ID).
			Msg("failed to publish similarity alert")
		return
	}
	observability.SimilarityAlerts().WithLabelValues("published").Inc()
}

func toSimilaritySubmissions(submissions []models.Submission) []similarity.Submission {
	converted := make([]similarity.Submission, 0, len(submissions))
	for _, submission := range submissions {
		attachments := make([]similarity.Attachment, 0, len(submission.Attachments))
		for _, attachment := range submission.Attachments {
			attachments = append(attachments, similarity.Attachment{Name: attachment.Name, URL: attachment.URL})
		}

		name := submission.Student.Name
		converted = append(converted, similarity.Submission{
			StudentID:   strconv.FormatUint(uint64(submission.StudentID), 10),
			StudentName: name,
			Attachments: attachments,
		})
	}
	return converted
}
