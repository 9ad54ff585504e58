package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SavedSession is the persisted bearer token and the identity it was issued to.
type SavedSession struct {
	Token    string
	UserID   int64
	Username string
	Origin   string
	SavedAt  time.Time
}

// LoadSession returns the persisted session, or nil if none is stored.
func (db *DB) LoadSession() (*SavedSession, error) {
	var s SavedSession
	var saved sql.NullTime
	err := db.QueryRow("SELECT token, user_id, username, origin, saved_at FROM session WHERE id = 1").Scan(
		&s.Token,
		&s.UserID,
		&s.Username,
		&s.Origin,
		&saved,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if saved.Valid {
		s.SavedAt = saved.Time
	}
	return &s, nil
}

// SaveSession replaces the persisted session.
func (db *DB) SaveSession(s *SavedSession) error {
	_, err := db.Exec(`
		INSERT INTO session (id, token, user_id, username, origin, saved_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			token = excluded.token,
			user_id = excluded.user_id,
			username = excluded.username,
			origin = excluded.origin,
			saved_at = excluded.saved_at
	`, s.Token, s.UserID, s.Username, s.Origin, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// ClearSession removes the persisted session.
func (db *DB) ClearSession() error {
	if _, err := db.Exec("DELETE FROM session WHERE id = 1"); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
