package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NewsPost is the plain record handed to handlers and views. Nullable
// columns surface as empty strings.
type NewsPost struct {
	ID           int
	Title        string
	Brief        string
	Body         string
	NewsDate     time.Time
	FeatureImage string
}

// AddNews inserts a news post and returns its id. The publication date is
// always stamped with the current server time; any caller-supplied date is
// ignored. Empty title/brief/body become NULL, while FeatureImage is stored
// verbatim (it is the already-resolved upload URL, "" when no file was
// attached).
func (s *Store) AddNews(ctx context.Context, post NewsPost) (int, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, `
		INSERT INTO news (title, brief, body, news_date, feature_image)
		VALUES (?, ?, ?, ?, ?)`,
		nullIfEmpty(post.Title), nullIfEmpty(post.Brief), nullIfEmpty(post.Body),
		time.Now().UTC(), post.FeatureImage)
	if err != nil {
		s.logger.WithError(err).Error("Failed to insert news post")
		return 0, fmt.Errorf("failed to insert news post: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get news insert ID: %w", err)
	}
	return int(id), nil
}

// AllNews returns every news post. No ordering is guaranteed; listing
// handlers sort by date themselves.
func (s *Store) AllNews(ctx context.Context) ([]NewsPost, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, brief, body, news_date, feature_image FROM news`)
	if err != nil {
		return nil, fmt.Errorf("failed to query news: %w", err)
	}
	defer rows.Close()
	return scanNewsRows(rows)
}

// NewsSince returns posts published at or after the given time.
func (s *Store) NewsSince(ctx context.Context, since time.Time) ([]NewsPost, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, title, brief, body, news_date, feature_image
		FROM news WHERE news_date >= ?`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query news since %s: %w", since, err)
	}
	defer rows.Close()
	return scanNewsRows(rows)
}

// NewsByID returns a single post, or ErrNotFound.
func (s *Store) NewsByID(ctx context.Context, id int) (*NewsPost, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.conn.QueryRowContext(ctx, `
		SELECT id, title, brief, body, news_date, feature_image
		FROM news WHERE id = ?`, id)

	post, err := scanNewsRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("news post %d: %w", id, ErrNotFound)
	}
	if err != nil {
		s.logger.WithError(err).WithField("news_id", id).Error("Failed to get news post")
		return nil, fmt.Errorf("failed to get news post %d: %w", id, err)
	}
	return post, nil
}

// DeleteNewsByID removes a post. Deleting a missing id fails with
// ErrNotFound rather than silently succeeding.
func (s *Store) DeleteNewsByID(ctx context.Context, id int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	result, err := s.conn.ExecContext(ctx, "DELETE FROM news WHERE id = ?", id)
	if err != nil {
		s.logger.WithError(err).WithField("news_id", id).Error("Failed to delete news post")
		return fmt.Errorf("failed to delete news post %d: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for news delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("news post %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanNewsRows(rows *sql.Rows) ([]NewsPost, error) {
	var posts []NewsPost
	for rows.Next() {
		post, err := scanNewsRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	return posts, rows.Err()
}

func scanNewsRow(scan func(dest ...any) error) (*NewsPost, error) {
	var post NewsPost
	var title, brief, body, image sql.NullString
	if err := scan(&post.ID, &title, &brief, &body, &post.NewsDate, &image); err != nil {
		return nil, err
	}
	post.Title = title.String
	post.Brief = brief.String
	post.Body = body.String
	post.FeatureImage = image.String
	return &post, nil
}
