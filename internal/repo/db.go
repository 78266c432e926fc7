// Package repo reads the album-structure metadata the strict storage
// layout is validated against. It is a read-only oracle from the
// storage layer's perspective: declared disc counts and per-disc track
// counts per album id, backed by SQLite.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/phonolite/phonolite/internal/provider"
)

// ErrUnknownAlbum reports an album id with no declared structure.
var ErrUnknownAlbum = errors.New("album not declared in repository")

type DB struct {
	*sqlx.DB
}

// Open opens (and if needed initializes) the repository database.
func Open(dsn string) (*DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open repo db: %w", err)
	}

	// Pragmas for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping repo db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db}, nil
}

type albumRow struct {
	AlbumID   string `db:"album_id"`
	Title     string `db:"title"`
	Artist    string `db:"artist"`
	DiscCount int    `db:"disc_count"`
}

// AlbumInfo returns the declared structure of one album.
func (db *DB) AlbumInfo(ctx context.Context, albumID string) (provider.AlbumInfo, error) {
	var row albumRow
	err := db.GetContext(ctx, &row, "SELECT album_id, title, artist, disc_count FROM albums WHERE album_id = ?", albumID)
	if err == sql.ErrNoRows {
		return provider.AlbumInfo{}, fmt.Errorf("%w: %s", ErrUnknownAlbum, albumID)
	}
	if err != nil {
		return provider.AlbumInfo{}, err
	}

	var counts []int
	err = db.SelectContext(ctx, &counts,
		"SELECT track_count FROM discs WHERE album_id = ? ORDER BY disc_index", albumID)
	if err != nil {
		return provider.AlbumInfo{}, err
	}
	if len(counts) != row.DiscCount {
		return provider.AlbumInfo{}, fmt.Errorf("album %s declares %d discs but has %d disc rows", albumID, row.DiscCount, len(counts))
	}

	return provider.AlbumInfo{
		AlbumID:     row.AlbumID,
		Title:       row.Title,
		Artist:      row.Artist,
		DiscCount:   row.DiscCount,
		TrackCounts: counts,
	}, nil
}

// Albums lists every declared album id.
func (db *DB) Albums(ctx context.Context) ([]string, error) {
	var ids []string
	if err := db.SelectContext(ctx, &ids, "SELECT album_id FROM albums ORDER BY album_id"); err != nil {
		return nil, err
	}
	return ids, nil
}

// PutAlbum declares or replaces the structure of one album.
func (db *DB) PutAlbum(ctx context.Context, info provider.AlbumInfo) error {
	if info.DiscCount != len(info.TrackCounts) {
		return fmt.Errorf("album %s: disc count %d does not match %d track counts", info.AlbumID, info.DiscCount, len(info.TrackCounts))
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO albums (album_id, title, artist, disc_count) VALUES (?, ?, ?, ?)
		ON CONFLICT(album_id) DO UPDATE SET title = excluded.title, artist = excluded.artist, disc_count = excluded.disc_count
	`, info.AlbumID, info.Title, info.Artist, info.DiscCount)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM discs WHERE album_id = ?", info.AlbumID); err != nil {
		return err
	}
	for i, count := range info.TrackCounts {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO discs (album_id, disc_index, track_count) VALUES (?, ?, ?)",
			info.AlbumID, i+1, count)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}
