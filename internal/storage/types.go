package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Entry records one applied status. Keep it compact and schema-stable.
type Entry struct {
	ID    string    `json:"id"`
	At    time.Time `json:"at"`
	Index int       `json:"index"`
	Raw   string    `json:"raw"`
	Text  string    `json:"text"`
}
