package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/campus-api/internal/dto"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/repository"
)

const maxSubmissionFiles = 10

var (
	// ErrSubmissionNotFound indicates a submission could not be found.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrStudentNotFound indicates the submitting student does not exist.
	ErrStudentNotFound = errors.New("student not found")
	// ErrAssignmentClosed indicates the assignment deadline has passed.
	ErrAssignmentClosed = errors.New("assignment is past due")
	// ErrInvalidAttachment indicates an upload was rejected before storage.
	ErrInvalidAttachment = errors.New("invalid attachment")
	// ErrGradeRequired indicates a submission was marked graded without a grade.
	ErrGradeRequired = errors.New("grade is required when marking as graded")
)

var allowedSubmissionTypes = []string{
	"application/pdf",
	"application/zip",
	"application/x-zip-compressed",
	"text/plain",
	"image/png",
	"image/jpeg",
}

// SubmissionService orchestrates submission workflows.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error)
	Submit(ctx context.Context, payload dto.SubmissionCreateRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error)
	Update(ctx context.Context, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	assignments repository.AssignmentRepository
	students    repository.StudentRepository
	validator   *validator.Validate
	uploader    FileUploader
	invalidator ReportInvalidator
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance. invalidator may be nil.
func NewSubmissionService(subRepo repository.SubmissionRepository, assignmentRepo repository.AssignmentRepository, studentRepo repository.StudentRepository, validate *validator.Validate, uploader FileUploader, invalidator ReportInvalidator, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: subRepo,
		assignments: assignmentRepo,
		students:    studentRepo,
		validator:   validate,
		uploader:    uploader,
		invalidator: invalidator,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		AssignmentID: filter.AssignmentID,
		StudentID:    filter.StudentID,
		Status:       filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListForAssignment(ctx context.Context, assignmentID uint) ([]dto.SubmissionResponse, error) {
	if _, err := s.assignments.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}

	return s.List(ctx, dto.SubmissionFilter{AssignmentID: &assignmentID})
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmissionCreateRequest, files []*multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	if len(files) > maxSubmissionFiles {
		return dto.SubmissionResponse{}, fmt.Errorf("%w: at most %d files can be attached", ErrInvalidAttachment, maxSubmissionFiles)
	}

	assignment, err := s.assignments.GetByID(ctx, payload.AssignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrAssignmentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	now := s.now()
	if assignment.IsPastDue(now) {
		return dto.SubmissionResponse{}, ErrAssignmentClosed
	}

	if _, err := s.students.GetByID(ctx, payload.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrStudentNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	attachments := make([]models.SubmissionAttachment, 0, len(files))
	for position, file := range files {
		attachment, err := s.storeAttachment(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		attachment.Position = position
		attachments = append(attachments, attachment)
	}

	submission := models.Submission{
		AssignmentID: payload.AssignmentID,
		StudentID:    payload.StudentID,
		Notes:        strings.TrimSpace(s.sanitizer.Sanitize(payload.Notes)),
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  now.UTC(),
		Attachments:  attachments,
	}

	replaced, err := s.submissions.Save(ctx, &submission)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, payload.AssignmentID)
	}

	saved, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().
		Uint("submission_id", saved.ID).
		Uint("assignment_id", saved.AssignmentID).
		Uint("student_id", saved.StudentID).
		Int("attachments", len(saved.Attachments)).
		Bool("replaced", replaced).
		Msg("submission stored")

	return dto.NewSubmissionResponse(saved), nil
}

func (s *submissionService) Update(ctx context.Context, id uint, payload dto.SubmissionUpdateRequest) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	if payload.Status != nil {
		status := strings.ToLower(*payload.Status)
		if status == models.SubmissionStatusGraded && payload.Grade == nil && submission.Grade == nil {
			return dto.SubmissionResponse{}, ErrGradeRequired
		}
		submission.Status = status
	}

	if payload.Grade != nil {
		submission.Grade = payload.Grade
		submission.Status = models.SubmissionStatusGraded
	}

	if payload.Feedback != nil {
		submission.Feedback = strings.TrimSpace(s.sanitizer.Sanitize(*payload.Feedback))
	}

	if err := s.submissions.Update(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	updated, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.logger.Info().Uint("submission_id", submission.ID).Str("status", updated.Status).Msg("submission updated")

	return dto.NewSubmissionResponse(updated), nil
}

func (s *submissionService) storeAttachment(ctx context.Context, file *multipart.FileHeader) (models.SubmissionAttachment, error) {
	mime, err := detectFileType(file)
	if err != nil {
		return models.SubmissionAttachment{}, err
	}

	reader, err := file.Open()
	if err != nil {
		return models.SubmissionAttachment{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	url, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return models.SubmissionAttachment{}, fmt.Errorf("failed to upload file: %w", err)
	}

	return models.SubmissionAttachment{
		Name:     file.Filename,
		URL:      url,
		MimeType: mime,
		Size:     file.Size,
	}, nil
}

func detectFileType(file *multipart.FileHeader) (string, error) {
	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}

	for _, allowed := range allowedSubmissionTypes {
		if mime.Is(allowed) {
			return allowed, nil
		}
	}

	return "", fmt.Errorf("%w: unsupported file type: %s", ErrInvalidAttachment, mime.String())
}
