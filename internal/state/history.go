package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/deck/internal/db"
	"github.com/llehouerou/deck/internal/media"
)

// HistoryEntry is one item of the play history with its aggregated
// statistics.
type HistoryEntry struct {
	Item         media.Item
	PlayCount    int
	LastPosition time.Duration
	LastPlayedAt time.Time
}

// RecordPlay logs a play of item and bumps its play count. position is
// where playback starts.
func (m *Manager) RecordPlay(ctx context.Context, item media.Item, position time.Duration) error {
	now := time.Now().Unix()
	return dbutil.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO play_history (session_id, item_id, played_at)
			VALUES (?, ?, ?)
		`, m.session, item.ID, now)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO item_stats (item_id, uri, title, artist, album, kind, duration_ms,
				play_count, last_position_ms, last_played_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				uri = excluded.uri,
				title = excluded.title,
				artist = excluded.artist,
				album = excluded.album,
				kind = excluded.kind,
				duration_ms = excluded.duration_ms,
				play_count = item_stats.play_count + 1,
				last_position_ms = excluded.last_position_ms,
				last_played_at = excluded.last_played_at
		`, item.ID, item.URI, item.Title, dbutil.NullString(item.Artist), dbutil.NullString(item.Album), int(item.Kind),
			item.Duration.Milliseconds(), position.Milliseconds(), now)
		return err
	})
}

// RecordPosition stores the position playback of item stopped at.
// Items that were never played are ignored.
func (m *Manager) RecordPosition(ctx context.Context, item media.Item, position time.Duration) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE item_stats SET last_position_ms = ? WHERE item_id = ?
	`, position.Milliseconds(), item.ID)
	return err
}

// Recent returns the most recently played items, newest first.
func (m *Manager) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT item_id, uri, title, artist, album, kind, duration_ms,
			play_count, last_position_ms, last_played_at
		FROM item_stats
		ORDER BY last_played_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var artist, album sql.NullString
		var kind int
		var durationMS, positionMS, playedAt int64

		err := rows.Scan(&e.Item.ID, &e.Item.URI, &e.Item.Title, &artist, &album, &kind,
			&durationMS, &e.PlayCount, &positionMS, &playedAt)
		if err != nil {
			return nil, err
		}

		e.Item.Artist = dbutil.NullStringValue(artist)
		e.Item.Album = dbutil.NullStringValue(album)
		e.Item.Kind = media.Kind(kind)
		e.Item.Duration = time.Duration(durationMS) * time.Millisecond
		e.LastPosition = time.Duration(positionMS) * time.Millisecond
		e.LastPlayedAt = time.Unix(playedAt, 0)
		e.Item.PlayCount = e.PlayCount
		e.Item.LastPosition = e.LastPosition
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Annotate returns a copy of items with PlayCount and LastPosition
// filled from the recorded statistics.
func (m *Manager) Annotate(ctx context.Context, items []media.Item) ([]media.Item, error) {
	stmt, err := m.db.PrepareContext(ctx, `
		SELECT play_count, last_position_ms FROM item_stats WHERE item_id = ?
	`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	out := make([]media.Item, len(items))
	for i, it := range items {
		var count int
		var positionMS int64
		err := stmt.QueryRowContext(ctx, it.ID).Scan(&count, &positionMS)
		switch {
		case err == nil:
			it.PlayCount = count
			it.LastPosition = time.Duration(positionMS) * time.Millisecond
		case !errors.Is(err, sql.ErrNoRows):
			return nil, err
		}
		out[i] = it
	}
	return out, nil
}
