package repository

import (
	"context"
	"time"

	"github.com/noah-isme/skateflow-api/internal/models"
)

// SessionRepository persists sessions in the sessions collection. The
// enrolled count is owned by EnrollmentRepository and never written here.
type SessionRepository struct {
	store *EntityStore
	now   func() time.Time
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(store *EntityStore) *SessionRepository {
	return &SessionRepository{store: store, now: time.Now}
}

// List returns every session in insertion order.
func (r *SessionRepository) List(ctx context.Context) ([]models.Session, error) {
	return LoadCollection[models.Session](ctx, r.store, CollectionSessions)
}

// FindByID returns a session by id.
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*models.Session, error) {
	sessions, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].ID == id {
			return &sessions[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// Create assigns a fresh id, zeroes the enrolled count and appends.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		sessions, err := LoadCollection[models.Session](ctx, tx, CollectionSessions)
		if err != nil {
			return err
		}
		session.ID = nextID(r.now(), func(id int64) bool {
			for _, existing := range sessions {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		session.EnrolledCount = 0
		sessions = append(sessions, *session)
		return tx.Put(CollectionSessions, sessions)
	})
}

// Update applies mutate to the stored session inside one transaction. The
// id and enrolled count are restored after mutate runs.
func (r *SessionRepository) Update(ctx context.Context, id int64, mutate func(*models.Session) error) (*models.Session, error) {
	var updated models.Session
	err := r.store.Update(ctx, func(tx *Tx) error {
		sessions, err := LoadCollection[models.Session](ctx, tx, CollectionSessions)
		if err != nil {
			return err
		}
		for i := range sessions {
			if sessions[i].ID != id {
				continue
			}
			current := sessions[i]
			if err := mutate(&current); err != nil {
				return err
			}
			current.ID = sessions[i].ID
			current.EnrolledCount = sessions[i].EnrolledCount
			sessions[i] = current
			updated = current
			return tx.Put(CollectionSessions, sessions)
		}
		return ErrRecordNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
