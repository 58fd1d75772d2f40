package repository

import (
	"context"
	"time"

	"github.com/noah-isme/skateflow-api/internal/models"
)

// NoteRepository persists per-skater notes, newest first.
type NoteRepository struct {
	store *EntityStore
	now   func() time.Time
}

// NewNoteRepository constructs the repository.
func NewNoteRepository(store *EntityStore) *NoteRepository {
	return &NoteRepository{store: store, now: time.Now}
}

// List returns a skater's notes as stored.
func (r *NoteRepository) List(ctx context.Context, skaterID int64) ([]models.Note, error) {
	return LoadCollection[models.Note](ctx, r.store, SkaterNotesKey(skaterID))
}

// Prepend assigns a fresh id and stores the note ahead of existing ones.
// The skater must exist at commit time.
func (r *NoteRepository) Prepend(ctx context.Context, skaterID int64, note *models.Note) error {
	return r.store.Update(ctx, func(tx *Tx) error {
		skaters, err := LoadCollection[models.Skater](ctx, tx, CollectionSkaters)
		if err != nil {
			return err
		}
		found := false
		for _, skater := range skaters {
			if skater.ID == skaterID {
				found = true
				break
			}
		}
		if !found {
			return ErrRecordNotFound
		}

		key := SkaterNotesKey(skaterID)
		notes, err := LoadCollection[models.Note](ctx, tx, key)
		if err != nil {
			return err
		}
		note.ID = nextID(r.now(), func(id int64) bool {
			for _, existing := range notes {
				if existing.ID == id {
					return true
				}
			}
			return false
		})
		notes = append([]models.Note{*note}, notes...)
		return tx.Put(key, notes)
	})
}
