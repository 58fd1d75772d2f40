package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type instructorRepository interface {
	Get(ctx context.Context, defaults models.InstructorProfile) (*models.InstructorProfile, error)
	Update(ctx context.Context, defaults models.InstructorProfile, mutate func(*models.InstructorProfile) error) (*models.InstructorProfile, error)
}

// UpdateInstructorRequest carries the profile fields to change. Nil fields
// are left untouched.
type UpdateInstructorRequest struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	NationalID    *string `json:"national_id"`
	Specialty     *string `json:"specialty"`
	Experience    *string `json:"experience"`
	Certification *string `json:"certification"`
	Photo         *string `json:"photo"`
	JoinDate      *string `json:"join_date"`
}

// InstructorService manages the singleton instructor profile.
type InstructorService struct {
	repo        instructorRepository
	defaultName string
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewInstructorService constructs the service.
func NewInstructorService(repo instructorRepository, defaultName string, validate *validator.Validate, logger *zap.Logger) *InstructorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstructorService{repo: repo, defaultName: defaultName, validator: validate, logger: logger}
}

// Get returns the profile, creating the default one on first read.
func (s *InstructorService) Get(ctx context.Context) (*models.InstructorProfile, error) {
	profile, err := s.repo.Get(ctx, models.DefaultInstructorProfile(s.defaultName))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load instructor profile")
	}
	return profile, nil
}

// Update merges the provided fields into the stored profile.
func (s *InstructorService) Update(ctx context.Context, req UpdateInstructorRequest) (*models.InstructorProfile, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "name cannot be empty")
	}
	if req.Email != nil && *req.Email != "" {
		if err := s.validator.Var(*req.Email, "email"); err != nil {
			return nil, appErrors.Validation(err, "invalid email")
		}
	}
	if req.JoinDate != nil && *req.JoinDate != "" {
		if err := s.validator.Var(*req.JoinDate, "datetime=2006-01-02"); err != nil {
			return nil, appErrors.Validation(err, "join_date must be YYYY-MM-DD")
		}
	}

	assign := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	profile, err := s.repo.Update(ctx, models.DefaultInstructorProfile(s.defaultName), func(profile *models.InstructorProfile) error {
		assign(&profile.Name, req.Name)
		assign(&profile.Email, req.Email)
		assign(&profile.Phone, req.Phone)
		assign(&profile.NationalID, req.NationalID)
		assign(&profile.Specialty, req.Specialty)
		assign(&profile.Experience, req.Experience)
		assign(&profile.Certification, req.Certification)
		assign(&profile.Photo, req.Photo)
		assign(&profile.JoinDate, req.JoinDate)
		return nil
	})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save instructor profile")
	}
	s.logger.Info("instructor profile updated", zap.String("name", profile.Name))
	return profile, nil
}

// Name returns the instructor's display name.
func (s *InstructorService) Name(ctx context.Context) (string, error) {
	profile, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return profile.Name, nil
}
