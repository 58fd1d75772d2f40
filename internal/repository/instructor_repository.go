package repository

import (
	"context"

	"github.com/noah-isme/skateflow-api/internal/models"
)

// InstructorRepository persists the singleton instructor profile.
type InstructorRepository struct {
	store *EntityStore
}

// NewInstructorRepository constructs the repository.
func NewInstructorRepository(store *EntityStore) *InstructorRepository {
	return &InstructorRepository{store: store}
}

// Get returns the stored profile, persisting defaults when none exists yet.
func (r *InstructorRepository) Get(ctx context.Context, defaults models.InstructorProfile) (*models.InstructorProfile, error) {
	var profile models.InstructorProfile
	ok, err := LoadValue(ctx, r.store, CollectionInstructor, &profile)
	if err != nil {
		return nil, err
	}
	if ok {
		return &profile, nil
	}

	err = r.store.Update(ctx, func(tx *Tx) error {
		found, err := LoadValue(ctx, tx, CollectionInstructor, &profile)
		if err != nil || found {
			return err
		}
		profile = defaults
		return tx.Put(CollectionInstructor, profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update applies mutate to the stored profile, or to defaults when none is
// stored yet, inside one transaction.
func (r *InstructorRepository) Update(ctx context.Context, defaults models.InstructorProfile, mutate func(*models.InstructorProfile) error) (*models.InstructorProfile, error) {
	var profile models.InstructorProfile
	err := r.store.Update(ctx, func(tx *Tx) error {
		found, err := LoadValue(ctx, tx, CollectionInstructor, &profile)
		if err != nil {
			return err
		}
		if !found {
			profile = defaults
		}
		if err := mutate(&profile); err != nil {
			return err
		}
		return tx.Put(CollectionInstructor, profile)
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
