package notion

import apierrors "github.com/fitsync/fitsync/client/internal/errors"

// ClassifiedError is returned for every non-2xx response and network failure.
type ClassifiedError = apierrors.ClassifiedError

// IsUnauthorized reports whether the API rejected the integration token.
func IsUnauthorized(err error) bool {
	return apierrors.StatusCode(err) == 401
}

// IsRecoverable reports whether err is worth retrying.
func IsRecoverable(err error) bool { return apierrors.IsRecoverable(err) }
