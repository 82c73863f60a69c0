package session

import (
	"errors"

	"github.com/fitsync/fitsync/internal/config"
)

var (
	// ErrNoSession means there is no session file to export or reuse.
	ErrNoSession = errors.New("no session file exists, login first")
	// ErrSessionExpired means the session is older than MaxAge.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionInvalid means the session file is unreadable or Garmin
	// rejected its tokens.
	ErrSessionInvalid = errors.New("session invalid")
	// ErrCredentialsRequired means a fresh login was needed but no email or
	// password was configured.
	ErrCredentialsRequired error = &config.Error{Missing: []string{"GARMIN_EMAIL", "GARMIN_PASSWORD"}}
	// ErrInvalidEncoding means imported session text is not valid base64.
	ErrInvalidEncoding = errors.New("session data is not valid base64")
)
