// Package library stores per-user favorites and watch progress.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

var ErrNotFound = errors.New("record not found")

// Favorite is a saved title. Title, poster and overview are copied from
// the catalog at save time so the list renders without extra lookups.
type Favorite struct {
	ID         string            `json:"id"`
	UserID     string            `json:"-"`
	TmdbID     int               `json:"tmdb_id"`
	MediaType  catalog.MediaType `json:"media_type"`
	Title      string            `json:"title"`
	PosterPath string            `json:"poster_path"`
	Overview   string            `json:"overview"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Favorites is the favorites store.
type Favorites struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewFavorites creates the favorites store.
func NewFavorites(db *sql.DB, logger zerolog.Logger) *Favorites {
	return &Favorites{
		db:     db,
		logger: logger.With().Str("component", "favorites").Logger(),
	}
}

// List returns a user's favorites, newest first.
func (f *Favorites) List(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := f.db.QueryContext(ctx,
		`SELECT id, user_id, tmdb_id, media_type, title, poster_path, overview, created_at
		 FROM favorites WHERE user_id = ? ORDER BY created_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var fav Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.TmdbID, &fav.MediaType,
			&fav.Title, &fav.PosterPath, &fav.Overview, &fav.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	return favorites, rows.Err()
}

// Add saves a title to a user's favorites. Saving an existing favorite
// is a no-op that returns the stored row.
func (f *Favorites) Add(ctx context.Context, fav Favorite) (*Favorite, error) {
	if !fav.MediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", fav.MediaType)
	}

	fav.ID = uuid.NewString()
	fav.CreatedAt = time.Now().UTC()

	_, err := f.db.ExecContext(ctx,
		`INSERT INTO favorites (id, user_id, tmdb_id, media_type, title, poster_path, overview, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fav.ID, fav.UserID, fav.TmdbID, fav.MediaType, fav.Title, fav.PosterPath, fav.Overview, fav.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return f.get(ctx, fav.UserID, fav.TmdbID, fav.MediaType)
		}
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}

	f.logger.Debug().
		Str("user_id", fav.UserID).
		Int("tmdb_id", fav.TmdbID).
		Str("media_type", string(fav.MediaType)).
		Msg("favorite added")
	return &fav, nil
}

// Remove deletes a favorite by its catalog key. Removing a title that
// is not saved returns ErrNotFound.
func (f *Favorites) Remove(ctx context.Context, userID string, tmdbID int, mediaType catalog.MediaType) error {
	res, err := f.db.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = ? AND tmdb_id = ? AND media_type = ?`,
		userID, tmdbID, mediaType)
	if err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFavorite reports whether a title is in a user's favorites.
func (f *Favorites) IsFavorite(ctx context.Context, userID string, tmdbID int, mediaType catalog.MediaType) (bool, error) {
	var one int
	err := f.db.QueryRowContext(ctx,
		`SELECT 1 FROM favorites WHERE user_id = ? AND tmdb_id = ? AND media_type = ?`,
		userID, tmdbID, mediaType).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return true, nil
}

func (f *Favorites) get(ctx context.Context, userID string, tmdbID int, mediaType catalog.MediaType) (*Favorite, error) {
	var fav Favorite
	err := f.db.QueryRowContext(ctx,
		`SELECT id, user_id, tmdb_id, media_type, title, poster_path, overview, created_at
		 FROM favorites WHERE user_id = ? AND tmdb_id = ? AND media_type = ?`,
		userID, tmdbID, mediaType).
		Scan(&fav.ID, &fav.UserID, &fav.TmdbID, &fav.MediaType,
			&fav.Title, &fav.PosterPath, &fav.Overview, &fav.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite: %w", err)
	}
	return &fav, nil
}
