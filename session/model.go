package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidUserID is returned when a record is requested for an empty user id.
var ErrInvalidUserID = errors.New("invalid user id")

// Record maps an opaque session identifier to the user that owns it.
type Record struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRecord generates a fresh random (v4) session id for userID stamped with now.
func NewRecord(userID string, now time.Time) (Record, error) {
	if userID == "" {
		return Record{}, ErrInvalidUserID
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return Record{}, err
	}

	return Record{
		SessionID: id.String(),
		UserID:    userID,
		CreatedAt: now,
	}, nil
}

// Filter selects records in a [Repository]. Empty fields match anything.
type Filter struct {
	SessionID string
	UserID    string
}

// Match reports whether rec satisfies every non-empty field of f.
func (f Filter) Match(rec Record) bool {
	if f.SessionID != "" && f.SessionID != rec.SessionID {
		return false
	}
	if f.UserID != "" && f.UserID != rec.UserID {
		return false
	}
	return true
}
