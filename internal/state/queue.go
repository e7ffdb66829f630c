package state

import (
	"context"
	"database/sql"
	"errors"
	"time"

	dbutil "github.com/llehouerou/deck/internal/db"
	"github.com/llehouerou/deck/internal/media"
	"github.com/llehouerou/deck/internal/playlist"
)

// QueueState is the saved playback session.
type QueueState struct {
	Items        []media.Item
	CurrentIndex int
	Position     time.Duration
	RepeatMode   playlist.RepeatMode
	Shuffle      bool
}

func getQueue(db *sql.DB) (*QueueState, error) {
	// Get queue state
	var currentIndex, repeatMode int
	var positionMS int64
	var shuffle bool
	row := db.QueryRow(`SELECT current_index, repeat_mode, shuffle, position_ms FROM queue_state WHERE id = 1`)
	err := row.Scan(&currentIndex, &repeatMode, &shuffle, &positionMS)
	if errors.Is(err, sql.ErrNoRows) {
		return &QueueState{CurrentIndex: -1}, nil
	}
	if err != nil {
		return nil, err
	}

	// Get items
	rows, err := db.Query(`
		SELECT item_id, uri, title, artist, album, kind, duration_ms, artwork, subtitle
		FROM queue_items
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []media.Item
	for rows.Next() {
		var it media.Item
		var artist, album, artwork, subtitle sql.NullString
		var kind int
		var durationMS int64

		err := rows.Scan(&it.ID, &it.URI, &it.Title, &artist, &album, &kind, &durationMS, &artwork, &subtitle)
		if err != nil {
			return nil, err
		}

		it.Artist = dbutil.NullStringValue(artist)
		it.Album = dbutil.NullStringValue(album)
		it.Artwork = dbutil.NullStringValue(artwork)
		it.Subtitle = dbutil.NullStringValue(subtitle)
		it.Kind = media.Kind(kind)
		it.Duration = time.Duration(durationMS) * time.Millisecond
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if currentIndex >= len(items) {
		currentIndex = len(items) - 1
	}
	return &QueueState{
		Items:        items,
		CurrentIndex: currentIndex,
		Position:     time.Duration(positionMS) * time.Millisecond,
		RepeatMode:   playlist.RepeatMode(repeatMode),
		Shuffle:      shuffle,
	}, nil
}

func saveQueue(sqlDB *sql.DB, state QueueState) error {
	return dbutil.WithTx(context.Background(), sqlDB, func(tx *sql.Tx) error {
		// Clear existing queue
		_, err := tx.Exec(`DELETE FROM queue_items`)
		if err != nil {
			return err
		}

		// Save queue state
		_, err = tx.Exec(`
			INSERT INTO queue_state (id, current_index, repeat_mode, shuffle, position_ms)
			VALUES (1, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				current_index = excluded.current_index,
				repeat_mode = excluded.repeat_mode,
				shuffle = excluded.shuffle,
				position_ms = excluded.position_ms
		`, state.CurrentIndex, int(state.RepeatMode), state.Shuffle, state.Position.Milliseconds())
		if err != nil {
			return err
		}

		// Insert items
		stmt, err := tx.Prepare(`
			INSERT INTO queue_items (position, item_id, uri, title, artist, album, kind, duration_ms, artwork, subtitle)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, it := range state.Items {
			_, err = stmt.Exec(i, it.ID, it.URI, it.Title, dbutil.NullString(it.Artist), dbutil.NullString(it.Album),
				int(it.Kind), it.Duration.Milliseconds(), dbutil.NullString(it.Artwork), dbutil.NullString(it.Subtitle))
			if err != nil {
				return err
			}
		}
		return nil
	})
}
