package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type skaterRepository interface {
	List(ctx context.Context) ([]models.Skater, error)
	FindByID(ctx context.Context, id int64) (*models.Skater, error)
	Create(ctx context.Context, skater *models.Skater) error
	Update(ctx context.Context, id int64, mutate func(*models.Skater) error) (*models.Skater, error)
	Delete(ctx context.Context, id int64) error
}

// CreateSkaterRequest holds payload for registering skaters.
type CreateSkaterRequest struct {
	Name             string            `json:"name" validate:"required"`
	NationalID       string            `json:"national_id" validate:"required"`
	PostalCode       string            `json:"postal_code"`
	Gender           string            `json:"gender"`
	Phone            string            `json:"phone"`
	MotherName       string            `json:"mother_name"`
	FatherName       string            `json:"father_name"`
	HealthCardNumber string            `json:"health_card_number"`
	Level            models.SkillLevel `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Photo            string            `json:"photo"`
	EnrollmentDate   string            `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateSkaterRequest holds a partial skater update. Nil fields are kept.
type UpdateSkaterRequest struct {
	Name             *string            `json:"name"`
	NationalID       *string            `json:"national_id"`
	PostalCode       *string            `json:"postal_code"`
	Gender           *string            `json:"gender"`
	Phone            *string            `json:"phone"`
	MotherName       *string            `json:"mother_name"`
	FatherName       *string            `json:"father_name"`
	HealthCardNumber *string            `json:"health_card_number"`
	Level            *models.SkillLevel `json:"level"`
	Photo            *string            `json:"photo"`
	EnrollmentDate   *string            `json:"enrollment_date"`
}

// SkaterService handles skater use-cases.
type SkaterService struct {
	repo      skaterRepository
	validator *validator.Validate
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewSkaterService constructs the skater service.
func NewSkaterService(repo skaterRepository, validate *validator.Validate, notifier Notifier, loc *time.Location, logger *zap.Logger) *SkaterService {
	if validate == nil {
		validate = validator.New()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SkaterService{repo: repo, validator: validate, notifier: notifier, logger: logger, now: clockIn(loc)}
}

// List returns every skater in registration order.
func (s *SkaterService) List(ctx context.Context) ([]models.Skater, error) {
	skaters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skaters")
	}
	return skaters, nil
}

// Search matches the query case-insensitively against names and as a plain
// substring against phone and national id. An empty query lists everyone.
func (s *SkaterService) Search(ctx context.Context, query string) ([]models.Skater, error) {
	skaters, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return skaters, nil
	}
	lowered := strings.ToLower(query)
	matches := make([]models.Skater, 0)
	for _, skater := range skaters {
		if strings.Contains(strings.ToLower(skater.Name), lowered) ||
			strings.Contains(skater.Phone, query) ||
			strings.Contains(skater.NationalID, query) {
			matches = append(matches, skater)
		}
	}
	return matches, nil
}

// Get returns a skater by id.
func (s *SkaterService) Get(ctx context.Context, id int64) (*models.Skater, error) {
	skater, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "skater not found", "failed to load skater")
	}
	return skater, nil
}

// Create registers a new skater.
func (s *SkaterService) Create(ctx context.Context, req CreateSkaterRequest) (*models.Skater, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.NationalID = strings.TrimSpace(req.NationalID)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid skater payload")
	}

	now := s.now()
	skater := &models.Skater{
		Name:             req.Name,
		NationalID:       req.NationalID,
		PostalCode:       strings.TrimSpace(req.PostalCode),
		Gender:           req.Gender,
		Phone:            strings.TrimSpace(req.Phone),
		MotherName:       req.MotherName,
		FatherName:       req.FatherName,
		HealthCardNumber: req.HealthCardNumber,
		Level:            req.Level,
		Photo:            req.Photo,
		EnrollmentDate:   req.EnrollmentDate,
		CreatedAt:        now,
	}
	if skater.Level == "" {
		skater.Level = models.LevelBeginner
	}
	if skater.EnrollmentDate == "" {
		skater.EnrollmentDate = today(now)
	}

	if err := s.repo.Create(ctx, skater); err != nil {
		return nil, appErrors.Internal(err, "failed to create skater")
	}
	s.notifier.Notify(ctx, Notification{
		Event:   "skater.created",
		Message: "Skater registered successfully",
		Fields:  map[string]string{"skater_id": strconv.FormatInt(skater.ID, 10)},
	})
	return skater, nil
}

// Update merges the provided fields into an existing skater.
func (s *SkaterService) Update(ctx context.Context, id int64, req UpdateSkaterRequest) (*models.Skater, error) {
	req.Name = trimPtr(req.Name)
	req.NationalID = trimPtr(req.NationalID)
	if req.Name != nil && *req.Name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
	}
	if req.NationalID != nil && *req.NationalID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "national_id cannot be empty")
	}
	if req.Level != nil && !req.Level.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "level must be Beginner, Intermediate or Advanced")
	}
	if req.EnrollmentDate != nil {
		if err := s.validator.Var(*req.EnrollmentDate, "datetime=2006-01-02"); err != nil {
			return nil, appErrors.Validation(err, "enrollment_date must be YYYY-MM-DD")
		}
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	skater, err := s.repo.Update(ctx, id, func(skater *models.Skater) error {
		assign(&skater.Name, req.Name)
		assign(&skater.NationalID, req.NationalID)
		assign(&skater.PostalCode, req.PostalCode)
		assign(&skater.Gender, req.Gender)
		assign(&skater.Phone, req.Phone)
		assign(&skater.MotherName, req.MotherName)
		assign(&skater.FatherName, req.FatherName)
		assign(&skater.HealthCardNumber, req.HealthCardNumber)
		assign(&skater.Photo, req.Photo)
		assign(&skater.EnrollmentDate, req.EnrollmentDate)
		if req.Level != nil {
			skater.Level = *req.Level
		}
		return nil
	})
	if err != nil {
		return nil, storeError(err, "skater not found", "failed to update skater")
	}
	return skater, nil
}

// Delete removes a skater and their notes. Skaters still enrolled in any
// session cannot be removed.
func (s *SkaterService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrRecordReferenced) {
			return appErrors.Clone(appErrors.ErrConflict, "skater is still enrolled in a session")
		}
		return storeError(err, "skater not found", "failed to delete skater")
	}
	s.logger.Info("skater deleted", zap.Int64("skater_id", id))
	s.notifier.Notify(ctx, Notification{
		Event:   "skater.deleted",
		Message: "Skater removed",
		Fields:  map[string]string{"skater_id": strconv.FormatInt(id, 10)},
	})
	return nil
}
