package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := Open(dbPath, 5*time.Second, logger)
	require.NoError(t, err, "Failed to open test store")
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpenCreatesSchema(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Every table must exist and be queryable right after Open
	_, err := st.AllNews(ctx)
	require.NoError(t, err)
	_, err = st.AllGenres(ctx)
	require.NoError(t, err)
	_, err = st.AllAlbums(ctx)
	require.NoError(t, err)
	_, err = st.AllSongs(ctx)
	require.NoError(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	dbPath := filepath.Join(t.TempDir(), "test.db")

	st, err := Open(dbPath, 5*time.Second, logger)
	require.NoError(t, err)

	_, err = st.AddGenre(context.Background(), "Rock")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	// Reopening against the same file must keep existing data
	st2, err := Open(dbPath, 5*time.Second, logger)
	require.NoError(t, err)
	defer st2.Close()

	genres, err := st2.AllGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	require.Equal(t, "Rock", genres[0].Name)
}
