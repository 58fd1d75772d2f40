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

type sessionRepository interface {
	List(ctx context.Context) ([]models.Session, error)
	FindByID(ctx context.Context, id int64) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) error
	Update(ctx context.Context, id int64, mutate func(*models.Session) error) (*models.Session, error)
}

type instructorNamer interface {
	Name(ctx context.Context) (string, error)
}

// Capacity is a session capacity decoded leniently: numbers and numeric
// strings are accepted, anything else decodes as zero.
type Capacity int

// UnmarshalJSON implements json.Unmarshaler.
func (c *Capacity) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		*c = Capacity(n)
		return nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
		*c = Capacity(int(f))
		return nil
	}
	*c = 0
	return nil
}

// CreateSessionRequest holds payload for scheduling sessions.
type CreateSessionRequest struct {
	Title       string             `json:"title" validate:"required"`
	SessionType models.SessionType `json:"session_type" validate:"omitempty,oneof=TechnicalTraining RampTraining StreetTraining Evaluation Competition"`
	Location    string             `json:"location"`
	Level       models.SkillLevel  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	DateTime    string             `json:"date_time" validate:"required"`
	MaxSkaters  Capacity           `json:"max_skaters"`
	Instructor  string             `json:"instructor"`
	Notes       string             `json:"notes"`
}

// UpdateSessionRequest holds a partial session edit. The enrolled count is
// not editable.
type UpdateSessionRequest struct {
	Title       *string             `json:"title"`
	SessionType *models.SessionType `json:"session_type"`
	Location    *string             `json:"location"`
	Level       *models.SkillLevel  `json:"level"`
	DateTime    *string             `json:"date_time"`
	MaxSkaters  *Capacity           `json:"max_skaters"`
	Instructor  *string             `json:"instructor"`
	Notes       *string             `json:"notes"`
}

// SessionServiceParams groups constructor dependencies.
type SessionServiceParams struct {
	Repo            sessionRepository
	Instructor      instructorNamer
	Validator       *validator.Validate
	Notifier        Notifier
	Location        *time.Location
	DefaultCapacity int
	Logger          *zap.Logger
}

// SessionService handles scheduling of training sessions.
type SessionService struct {
	repo            sessionRepository
	instructor      instructorNamer
	validator       *validator.Validate
	notifier        Notifier
	loc             *time.Location
	defaultCapacity int
	logger          *zap.Logger
}

// NewSessionService constructs the session service.
func NewSessionService(params SessionServiceParams) *SessionService {
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	notifier := params.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	capacity := params.DefaultCapacity
	if capacity <= 0 {
		capacity = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:            params.Repo,
		instructor:      params.Instructor,
		validator:       validate,
		notifier:        notifier,
		loc:             loc,
		defaultCapacity: capacity,
		logger:          logger,
	}
}

// List returns every session in creation order.
func (s *SessionService) List(ctx context.Context) ([]models.Session, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}
	return sessions, nil
}

// ListByDate returns sessions scheduled on the calendar day given as YYYY-MM-DD.
func (s *SessionService) ListByDate(ctx context.Context, date string) ([]models.Session, error) {
	day, err := time.ParseInLocation(models.DateLayout, strings.TrimSpace(date), s.loc)
	if err != nil {
		return nil, appErrors.Validation(err, "date must be YYYY-MM-DD")
	}
	sessions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	matches := make([]models.Session, 0)
	for _, session := range sessions {
		if session.OnDay(day) {
			matches = append(matches, session)
		}
	}
	return matches, nil
}

// Get returns a session by id.
func (s *SessionService) Get(ctx context.Context, id int64) (*models.Session, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "session not found", "failed to load session")
	}
	return session, nil
}

// Create schedules a new session with no enrolled skaters.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.DateTime = strings.TrimSpace(req.DateTime)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid session payload")
	}
	when, err := s.parseDateTime(req.DateTime)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		Title:       req.Title,
		SessionType: req.SessionType,
		Location:    strings.TrimSpace(req.Location),
		Level:       req.Level,
		DateTime:    when,
		MaxSkaters:  int(req.MaxSkaters),
		Instructor:  strings.TrimSpace(req.Instructor),
		Notes:       req.Notes,
	}
	if session.SessionType == "" {
		session.SessionType = models.SessionTechnical
	}
	if session.Level == "" {
		session.Level = models.LevelBeginner
	}
	if session.MaxSkaters <= 0 {
		session.MaxSkaters = s.defaultCapacity
	}
	if session.Instructor == "" && s.instructor != nil {
		name, err := s.instructor.Name(ctx)
		if err != nil {
			return nil, err
		}
		session.Instructor = name
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Internal(err, "failed to create session")
	}
	s.notifier.Notify(ctx, Notification{
		Event:   "session.created",
		Message: "Session scheduled successfully",
		Fields:  map[string]string{"session_id": strconv.FormatInt(session.ID, 10)},
	})
	return session, nil
}

// Update edits the descriptive fields of a session.
func (s *SessionService) Update(ctx context.Context, id int64, req UpdateSessionRequest) (*models.Session, error) {
	req.Title = trimPtr(req.Title)
	if req.Title != nil && *req.Title == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "title cannot be empty")
	}
	if req.SessionType != nil && !req.SessionType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported session_type")
	}
	if req.Level != nil && !req.Level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be Beginner, Intermediate or Advanced")
	}
	if req.MaxSkaters != nil && *req.MaxSkaters <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "max_skaters must be a positive number")
	}

	var when *time.Time
	if req.DateTime != nil {
		parsed, err := s.parseDateTime(strings.TrimSpace(*req.DateTime))
		if err != nil {
			return nil, err
		}
		when = &parsed
	}

	session, err := s.repo.Update(ctx, id, func(session *models.Session) error {
		if when != nil {
			session.DateTime = *when
		}
		if req.Title != nil {
			session.Title = *req.Title
		}
		if req.SessionType != nil {
			session.SessionType = *req.SessionType
		}
		if req.Location != nil {
			session.Location = strings.TrimSpace(*req.Location)
		}
		if req.Level != nil {
			session.Level = *req.Level
		}
		if req.MaxSkaters != nil {
			session.MaxSkaters = int(*req.MaxSkaters)
		}
		if req.Instructor != nil {
			session.Instructor = strings.TrimSpace(*req.Instructor)
		}
		if req.Notes != nil {
			session.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "session not found", "failed to update session")
	}
	return session, nil
}

var sessionDateTimeLayouts = []string{"2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04"}

// parseDateTime accepts RFC3339 or a local date-time in the configured zone.
func (s *SessionService) parseDateTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_time is required")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range sessionDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, s.loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date_time must be RFC3339 or YYYY-MM-DDTHH:MM")
}
