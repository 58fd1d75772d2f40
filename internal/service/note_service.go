package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type noteRepository interface {
	List(ctx context.Context, skaterID int64) ([]models.Note, error)
	Prepend(ctx context.Context, skaterID int64, note *models.Note) error
}

// AddNoteRequest holds payload for writing a progress note.
type AddNoteRequest struct {
	Title       string             `json:"title" validate:"required"`
	Content     string             `json:"content" validate:"required"`
	SessionType models.SessionType `json:"session_type" validate:"omitempty,oneof=TechnicalTraining RampTraining StreetTraining Evaluation Competition"`
}

// NoteService records instructor notes about skaters.
type NoteService struct {
	repo       noteRepository
	skaters    skaterFinder
	instructor instructorNamer
	validator  *validator.Validate
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewNoteService constructs the note service.
func NewNoteService(repo noteRepository, skaters skaterFinder, instructor instructorNamer, validate *validator.Validate, notifier Notifier, loc *time.Location, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{
		repo:       repo,
		skaters:    skaters,
		instructor: instructor,
		validator:  validate,
		notifier:   notifier,
		logger:     logger,
		now:        clockIn(loc),
	}
}

// Add prepends a note dated today and signed by the instructor.
func (s *NoteService) Add(ctx context.Context, skaterID int64, req AddNoteRequest) (*models.Note, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "title and content are required")
	}
	if _, err := s.skaters.FindByID(ctx, skaterID); err != nil {
		return nil, storeError(err, "skater not found", "failed to load skater")
	}

	note := &models.Note{
		Date:        today(s.now()),
		Title:       req.Title,
		Content:     req.Content,
		SessionType: req.SessionType,
	}
	if s.instructor != nil {
		name, err := s.instructor.Name(ctx)
		if err != nil {
			return nil, err
		}
		note.Instructor = name
	}

	if err := s.repo.Prepend(ctx, skaterID, note); err != nil {
		return nil, storeError(err, "skater not found", "failed to save note")
	}
	s.notifier.Notify(ctx, Notification{
		Event:   "note.added",
		Message: "Note added successfully",
		Fields:  map[string]string{"skater_id": strconv.FormatInt(skaterID, 10)},
	})
	return note, nil
}

// List returns a skater's notes newest first.
func (s *NoteService) List(ctx context.Context, skaterID int64) ([]models.Note, error) {
	if _, err := s.skaters.FindByID(ctx, skaterID); err != nil {
		return nil, storeError(err, "skater not found", "failed to load skater")
	}
	notes, err := s.repo.List(ctx, skaterID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notes")
	}
	return notes, nil
}
