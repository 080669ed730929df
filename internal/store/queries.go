package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordSwitch inserts a switch event and fills in its assigned ID.
func (s *Store) RecordSwitch(event *SwitchEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO switch_events (from_version, to_version, formula, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.Exec(query,
		event.FromVersion,
		event.ToVersion,
		event.Formula,
		event.Outcome,
		event.Detail,
		event.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record switch to %s: %w", event.ToVersion, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get switch event ID: %w", err)
	}
	event.ID = id

	return nil
}

// RecentEvents returns the most recent switch events, newest first.
// A limit of 0 or less returns all events.
func (s *Store) RecentEvents(limit int) ([]*SwitchEvent, error) {
	query := `
		SELECT id, from_version, to_version, formula, outcome, detail, created_at
		FROM switch_events
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list switch events: %w", err)
	}
	defer rows.Close()

	var events []*SwitchEvent
	for rows.Next() {
		var event SwitchEvent
		var createdAt string

		err := rows.Scan(
			&event.ID,
			&event.FromVersion,
			&event.ToVersion,
			&event.Formula,
			&event.Outcome,
			&event.Detail,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan switch event row: %w", err)
		}

		// Parse created_at timestamp
		event.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for event %d: %w", event.ID, err)
		}

		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating switch events: %w", err)
	}

	return events, nil
}

// LastEvent returns the most recent switch event.
// Returns nil if no events have been recorded.
func (s *Store) LastEvent() (*SwitchEvent, error) {
	query := `
		SELECT id, from_version, to_version, formula, outcome, detail, created_at
		FROM switch_events
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var event SwitchEvent
	var createdAt string

	err := s.db.QueryRow(query).Scan(
		&event.ID,
		&event.FromVersion,
		&event.ToVersion,
		&event.Formula,
		&event.Outcome,
		&event.Detail,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last switch event: %w", err)
	}

	event.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at for event %d: %w", event.ID, err)
	}

	return &event, nil
}

// EventCount returns the total number of switch events recorded.
func (s *Store) EventCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM switch_events").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get event count: %w", err)
	}
	return count, nil
}
