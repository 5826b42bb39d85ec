package store

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const readingColumns = "id, taken_at, device, percentage, millivolts, is_charging, is_connected"

// InsertReadings stores readings in a single transaction.
func (db *DB) InsertReadings(readings []Reading) error {
	if len(readings) == 0 {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO readings
		(taken_at, device, percentage, millivolts, is_charging, is_connected)
		VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range readings {
		if _, err := stmt.Exec(
			r.TakenAt.UTC().Format(timeLayout), r.Device, r.Percentage,
			r.Millivolts, r.IsCharging, r.IsConnected,
		); err != nil {
			return fmt.Errorf("inserting reading for %s: %w", r.Device, err)
		}
	}

	return tx.Commit()
}

// RecentReadings returns up to limit readings for device, newest first.
func (db *DB) RecentReadings(device string, limit int) ([]Reading, error) {
	rows, err := db.conn.Query(
		"SELECT "+readingColumns+" FROM readings WHERE device = ? ORDER BY taken_at DESC, id DESC LIMIT ?",
		device, limit,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var readings []Reading
	for rows.Next() {
		r, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, *r)
	}
	return readings, rows.Err()
}

// LatestReading returns the newest reading for device, or nil if none exist.
func (db *DB) LatestReading(device string) (*Reading, error) {
	row := db.conn.QueryRow(
		"SELECT "+readingColumns+" FROM readings WHERE device = ? ORDER BY taken_at DESC, id DESC LIMIT 1",
		device,
	)
	r, err := scanReading(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// Devices returns every device with at least one reading, sorted by name.
func (db *DB) Devices() ([]string, error) {
	rows, err := db.conn.Query("SELECT DISTINCT device FROM readings ORDER BY device")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var devices []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

// PruneBefore deletes readings taken before cutoff and returns how many
// were removed.
func (db *DB) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := db.conn.Exec(
		"DELETE FROM readings WHERE taken_at < ?",
		cutoff.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*Reading, error) {
	var r Reading
	var takenAt string
	if err := row.Scan(
		&r.ID, &takenAt, &r.Device, &r.Percentage,
		&r.Millivolts, &r.IsCharging, &r.IsConnected,
	); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, takenAt)
	if err != nil {
		return nil, fmt.Errorf("reading %d: parsing taken_at %q: %w", r.ID, takenAt, err)
	}
	r.TakenAt = t
	return &r, nil
}
