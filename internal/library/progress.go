package library

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Kayushan/JSTREAM/internal/catalog"
)

// WatchProgress is one continue-watching row. Season and episode are 0
// for movies; together with the title key they identify the row.
type WatchProgress struct {
	ID            string            `json:"id"`
	UserID        string            `json:"-"`
	TmdbID        int               `json:"tmdb_id"`
	MediaType     catalog.MediaType `json:"media_type"`
	Title         string            `json:"title"`
	PosterPath    string            `json:"poster_path"`
	Progress      float64           `json:"progress"`
	LastWatched   time.Time         `json:"last_watched"`
	SeasonNumber  int               `json:"season_number"`
	EpisodeNumber int               `json:"episode_number"`
	EpisodeID     int               `json:"episode_id"`
}

// Progress is the continue-watching store.
type Progress struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewProgress creates the continue-watching store.
func NewProgress(db *sql.DB, logger zerolog.Logger) *Progress {
	return &Progress{
		db:     db,
		logger: logger.With().Str("component", "progress").Logger(),
	}
}

// List returns a user's continue-watching rows, most recent first.
func (p *Progress) List(ctx context.Context, userID string) ([]WatchProgress, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, user_id, tmdb_id, media_type, title, poster_path, progress,
		        last_watched, season_number, episode_number, episode_id
		 FROM continue_watching WHERE user_id = ? ORDER BY last_watched DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list watch progress: %w", err)
	}
	defer rows.Close()

	records := []WatchProgress{}
	for rows.Next() {
		var rec WatchProgress
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TmdbID, &rec.MediaType,
			&rec.Title, &rec.PosterPath, &rec.Progress, &rec.LastWatched,
			&rec.SeasonNumber, &rec.EpisodeNumber, &rec.EpisodeID); err != nil {
			return nil, fmt.Errorf("failed to scan watch progress: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert writes progress for a title. The conflict target is the
// composite key, so concurrent writers for the same title collapse to
// one row and the last write's progress wins.
func (p *Progress) Upsert(ctx context.Context, rec WatchProgress) (*WatchProgress, error) {
	if !rec.MediaType.Valid() {
		return nil, fmt.Errorf("invalid media type %q", rec.MediaType)
	}
	if rec.Progress < 0 {
		rec.Progress = 0
	}
	if rec.Progress > 100 {
		rec.Progress = 100
	}

	rec.ID = uuid.NewString()
	rec.LastWatched = time.Now().UTC()

	_, err := p.db.ExecContext(ctx,
		`INSERT INTO continue_watching
		   (id, user_id, tmdb_id, media_type, title, poster_path, progress,
		    last_watched, season_number, episode_number, episode_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, tmdb_id, media_type, season_number, episode_number)
		 DO UPDATE SET
		   title = excluded.title,
		   poster_path = excluded.poster_path,
		   progress = excluded.progress,
		   last_watched = excluded.last_watched,
		   episode_id = excluded.episode_id`,
		rec.ID, rec.UserID, rec.TmdbID, rec.MediaType, rec.Title, rec.PosterPath,
		rec.Progress, rec.LastWatched, rec.SeasonNumber, rec.EpisodeNumber, rec.EpisodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert watch progress: %w", err)
	}

	stored, err := p.get(ctx, rec)
	if err != nil {
		return nil, err
	}

	p.logger.Debug().
		Str("user_id", rec.UserID).
		Int("tmdb_id", rec.TmdbID).
		Float64("progress", stored.Progress).
		Msg("watch progress saved")
	return stored, nil
}

// Remove deletes one continue-watching row by its composite key.
func (p *Progress) Remove(ctx context.Context, userID string, tmdbID int, mediaType catalog.MediaType, season, episode int) error {
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM continue_watching
		 WHERE user_id = ? AND tmdb_id = ? AND media_type = ? AND season_number = ? AND episode_number = ?`,
		userID, tmdbID, mediaType, season, episode)
	if err != nil {
		return fmt.Errorf("failed to remove watch progress: %w", err)
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

// PruneStale deletes rows not touched for the given duration and
// returns the number removed.
func (p *Progress) PruneStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res, err := p.db.ExecContext(ctx,
		`DELETE FROM continue_watching WHERE last_watched < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune watch progress: %w", err)
	}
	return res.RowsAffected()
}

func (p *Progress) get(ctx context.Context, key WatchProgress) (*WatchProgress, error) {
	var rec WatchProgress
	err := p.db.QueryRowContext(ctx,
		`SELECT id, user_id, tmdb_id, media_type, title, poster_path, progress,
		        last_watched, season_number, episode_number, episode_id
		 FROM continue_watching
		 WHERE user_id = ? AND tmdb_id = ? AND media_type = ? AND season_number = ? AND episode_number = ?`,
		key.UserID, key.TmdbID, key.MediaType, key.SeasonNumber, key.EpisodeNumber).
		Scan(&rec.ID, &rec.UserID, &rec.TmdbID, &rec.MediaType, &rec.Title,
			&rec.PosterPath, &rec.Progress, &rec.LastWatched,
			&rec.SeasonNumber, &rec.EpisodeNumber, &rec.EpisodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load watch progress: %w", err)
	}
	return &rec, nil
}
