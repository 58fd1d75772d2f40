package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	n, err := store.SaveStream("photos/a.png", strings.NewReader("png-bytes"), 64)
	require.NoError(t, err)
	require.EqualValues(t, 9, n)

	file, err := store.Open("photos/a.png")
	require.NoError(t, err)
	body, err := io.ReadAll(file)
	require.NoError(t, file.Close())
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(body))

	require.NoError(t, store.Delete("photos/a.png"))
	_, err = store.Open("photos/a.png")
	require.Error(t, err)
	require.NoError(t, store.Delete("photos/a.png"))
}

func TestLocalStorageRejectsOversizeStream(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("photos/big.jpg", strings.NewReader("0123456789"), 4)
	require.ErrorIs(t, err, ErrTooLarge)
	_, err = store.Open("photos/big.jpg")
	require.Error(t, err)
}

func TestLocalStorageRejectsEscapingPaths(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.SaveStream("../outside.txt", strings.NewReader("x"), 0)
	require.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Open("/etc/passwd")
	require.ErrorIs(t, err, ErrInvalidPath)
}
