// Package store provides SQLite storage for recorded battery readings.
package store

import "time"

// Reading is one device's battery state at a point in time.
type Reading struct {
	ID          int64     `json:"id"`
	TakenAt     time.Time `json:"taken_at"`
	Device      string    `json:"device"`
	Percentage  float64   `json:"percentage"`
	Millivolts  int       `json:"millivolts"`
	IsCharging  bool      `json:"is_charging"`
	IsConnected bool      `json:"is_connected"`
}
