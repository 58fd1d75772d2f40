package repository

import (
	"context"
	"time"

	"github.com/noah-isme/skateflow-api/internal/models"
)

// SkaterRepository persists skaters in the skaters collection.
type SkaterRepository struct {
	store *EntityStore
	now   func() time.Time
}

// NewSkaterRepository constructs the repository.
func NewSkaterRepository(store *EntityStore) *SkaterRepository {
	return &SkaterRepository{store: store, now: time.Now}
}

// List returns every skater in insertion order.
func (r *SkaterRepository) List(ctx context.Context) ([]models.Skater, error) {
	return LoadCollection[models.Skater](ctx, r.store, CollectionSkaters)
}

// FindByID returns a skater by id.
func (r *SkaterRepository) FindByID(ctx context.Context, id int64) (*models.Skater, error) {
	skaters, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range skaters {
		if skaters[i].ID == id {
			return &skaters[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// Create assigns a fresh id and appends the skater.
func (r *SkaterRepository) Create(ctx context.Context, skater *models.Skater) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		skaters, err := LoadCollection[models.Skater](ctx, tx, CollectionSkaters)
		if err != nil {
			return err
		}
		now := r.now()
		skater.ID = nextID(now, func(id int64) bool {
			for _, existing := range skaters {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		if skater.CreatedAt.IsZero() {
			skater.CreatedAt = now
		}
		skaters = append(skaters, *skater)
		return tx.Put(CollectionSkaters, skaters)
	})
}

// Update applies mutate to the stored skater inside one transaction and
// returns the result. The id and creation timestamp cannot be changed.
func (r *SkaterRepository) Update(ctx context.Context, id int64, mutate func(*models.Skater) error) (*models.Skater, error) {
	var updated models.Skater
	err := r.store.Update(ctx, func(tx *Tx) error {
		skaters, err := LoadCollection[models.Skater](ctx, tx, CollectionSkaters)
		if err != nil {
			return err
		}
		for i := range skaters {
			if skaters[i].ID != id {
				continue
			}
			current := skaters[i]
			if err := mutate(&current); err != nil {
				return err
			}
			current.ID = skaters[i].ID
			current.CreatedAt = skaters[i].CreatedAt
			skaters[i] = current
			updated = current
			return tx.Put(CollectionSkaters, skaters)
		}
		return ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a skater and their notes. It refuses while any session's
// enrollment set still references the skater.
func (r *SkaterRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		skaters, err := LoadCollection[models.Skater](ctx, tx, CollectionSkaters)
		if err != nil {
			return err
		}
		idx := -1
		for i := range skaters {
			if skaters[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrRecordNotFound
		}

		sessions, err := LoadCollection[models.Session](ctx, tx, CollectionSessions)
		if err != nil {
			return err
		}
		for _, session := range sessions {
			ids, err := LoadCollection[int64](ctx, tx, SessionSkatersKey(session.ID))
			if err != nil {
				return err
			}
			for _, enrolled := range ids {
				if enrolled == id {
					return ErrRecordReferenced
				}
			}
		}

		skaters = append(skaters[:idx], skaters[idx+1:]...)
		if err := tx.Put(CollectionSkaters, skaters); err != nil {
			return err
		}
		tx.Delete(SkaterNotesKey(id))
		return nil
	})
}
