package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Preference is a locally stored key/value pair
type Preference struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPreference saves or updates a preference
func (d *DB) SetPreference(ctx context.Context, key, value string) error {
	_, err := d.ExecContext(ctx, `
        INSERT INTO preferences (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            updated_at = CURRENT_TIMESTAMP
    `, key, value)
	if err != nil {
		return fmt.Errorf("saving preference %q: %w", key, err)
	}
	return nil
}

// GetPreference returns the value stored under key. ok is false when the key is unset.
func (d *DB) GetPreference(ctx context.Context, key string) (value string, ok bool, err error) {
	err = d.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting preference %q: %w", key, err)
	}
	return value, true, nil
}

// DeletePreference removes a preference
func (d *DB) DeletePreference(ctx context.Context, key string) error {
	if _, err := d.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}

// ListPreferences returns every stored preference ordered by key
func (d *DB) ListPreferences(ctx context.Context) ([]Preference, error) {
	rows, err := d.QueryContext(ctx, "SELECT key, value, updated_at FROM preferences ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("listing preferences: %w", err)
	}
	defer rows.Close()

	var prefs []Preference
	for rows.Next() {
		var p Preference
		if err := rows.Scan(&p.Key, &p.Value, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning preference: %w", err)
		}
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}
