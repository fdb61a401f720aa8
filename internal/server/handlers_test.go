package server

import (
	"testing"
	"time"

	"yourtune/internal/store"

	"github.com/stretchr/testify/require"
)

func TestSortNewsByDateDesc(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []store.NewsPost{
		{ID: 1, NewsDate: base},
		{ID: 2, NewsDate: base.Add(2 * time.Hour)},
		{ID: 3, NewsDate: base.Add(time.Hour)},
	}

	sortNewsByDateDesc(posts)
	require.Equal(t, []int{2, 3, 1}, []int{posts[0].ID, posts[1].ID, posts[2].ID})
}

func TestSortAlbumsByDateDesc(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	albums := []store.Album{
		{ID: 1, CreatedAt: base.Add(time.Hour)},
		{ID: 2, CreatedAt: base},
	}

	sortAlbumsByDateDesc(albums)
	require.Equal(t, 1, albums[0].ID)
	require.Equal(t, 2, albums[1].ID)
}

func TestFirstAlbums(t *testing.T) {
	albums := make([]store.Album, 7)

	require.Len(t, firstAlbums(albums, 5), 5)
	require.Len(t, firstAlbums(albums, 10), 7)
	require.Len(t, firstAlbums(albums, 0), 7)
	require.Empty(t, firstAlbums(nil, 5))
}
