// Package session keeps a Garmin Connect login alive across runs.
//
// A successful credential login is saved as a Record under the session
// directory. Later runs reuse it as long as it is younger than MaxAge and a
// cheap authenticated call still succeeds; otherwise they log in again and
// overwrite it. The raw file can be exported as base64 text for headless
// environments and imported there unchanged.
package session

import (
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/fitsync/fitsync/client/garmin"
)

const (
	// FileName is the session file inside the session directory.
	FileName = "session.json"
	// RecordVersion is the schema version written by this package.
	RecordVersion = 1
	// MaxAge is how long a saved session is trusted before a fresh login is
	// forced without asking Garmin.
	MaxAge = 360 * 24 * time.Hour
)

// Record is the persisted session.
type Record struct {
	Version   int           `json:"version"`
	ID        uuid.UUID     `json:"id"`
	Tokens    garmin.Tokens `json:"tokens"`
	CreatedAt time.Time     `json:"created_at"`
	Account   string        `json:"account,omitempty"`
}

// NewRecord stamps tokens obtained at now.
func NewRecord(tokens garmin.Tokens, account string, now time.Time) Record {
	return Record{
		Version:   RecordVersion,
		ID:        uuid.New(),
		Tokens:    tokens,
		CreatedAt: now.UTC(),
		Account:   account,
	}
}

// Age is the time elapsed since the record was created.
func (r Record) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// Expired reports whether the record is older than MaxAge.
func (r Record) Expired(now time.Time) bool {
	return r.Age(now) > MaxAge
}

// Encode renders the record as indented JSON.
func (r Record) Encode() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Decode parses and checks a session file. Any problem is reported as
// ErrSessionInvalid.
func Decode(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSessionInvalid, err)
	}
	switch {
	case r.Version != RecordVersion:
		return nil, fmt.Errorf("%w: unsupported version %d", ErrSessionInvalid, r.Version)
	case r.CreatedAt.IsZero():
		return nil, fmt.Errorf("%w: missing created_at", ErrSessionInvalid)
	case !r.Tokens.Valid():
		return nil, fmt.Errorf("%w: missing tokens", ErrSessionInvalid)
	}
	return &r, nil
}

// IsStale reports whether err means the stored session cannot be reused and
// a fresh login is needed.
func IsStale(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrSessionInvalid)
}
