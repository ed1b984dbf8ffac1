package store

import (
	"database/sql"
	"time"
)

// KeyPress is one accepted key press and the buffer contents after it.
type KeyPress struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	FrameSeq  int64     `json:"frameSeq"`
	Row       int       `json:"row"`
	Col       int       `json:"col"`
	Label     string    `json:"label"`
	TextAfter string    `json:"textAfter"`
	CreatedAt time.Time `json:"createdAt"`
}

// KeyPressRepository provides access to the key press transcript.
type KeyPressRepository struct {
	db *sql.DB
}

// KeyPresses returns the key press repository for this store.
func (s *Store) KeyPresses() *KeyPressRepository {
	return &KeyPressRepository{db: s.db}
}

// Create appends a key press and sets its ID.
func (r *KeyPressRepository) Create(k *KeyPress) error {
	if k.CreatedAt.IsZero() {
		k.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO key_presses (session_id, frame_seq, key_row, key_col, label, text_after, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.SessionID, k.FrameSeq, k.Row, k.Col, k.Label, k.TextAfter, k.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	k.ID = id
	return nil
}

// ListBySession returns a session's key presses in the order they happened.
func (r *KeyPressRepository) ListBySession(sessionID string) ([]*KeyPress, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_seq, key_row, key_col, label, text_after, created_at
		 FROM key_presses WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presses []*KeyPress
	for rows.Next() {
		k := &KeyPress{}
		if err := rows.Scan(&k.ID, &k.SessionID, &k.FrameSeq, &k.Row, &k.Col, &k.Label, &k.TextAfter, &k.CreatedAt); err != nil {
			return nil, err
		}
		presses = append(presses, k)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presses, nil
}

// CountBySession returns how many keys were pressed in a session.
func (r *KeyPressRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM key_presses WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
