package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skateflow-api/internal/models"
)

func TestNoteRepositoryPrependNewestFirst(t *testing.T) {
	store, _ := newTestStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, CollectionSkaters, []models.Skater{{ID: 1, Name: "Ana"}}))
	repo := NewNoteRepository(store)

	first := &models.Note{Title: "Ollie", Content: "Clean pop"}
	second := &models.Note{Title: "Kickflip", Content: "Almost there"}
	require.NoError(t, repo.Prepend(ctx, 1, first))
	require.NoError(t, repo.Prepend(ctx, 1, second))
	assert.NotEqual(t, first.ID, second.ID)

	notes, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "Kickflip", notes[0].Title)
	assert.Equal(t, "Ollie", notes[1].Title)
}

func TestNoteRepositoryRequiresSkater(t *testing.T) {
	store, _ := newTestStore()
	repo := NewNoteRepository(store)

	err := repo.Prepend(context.Background(), 5, &models.Note{Title: "x", Content: "y"})
	require.ErrorIs(t, err, ErrRecordNotFound)

	notes, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, notes)
}
