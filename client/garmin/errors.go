package garmin

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	apierrors "github.com/fitsync/fitsync/client/internal/errors"
)

// ErrAuthentication means Garmin rejected the credentials or tokens.
var ErrAuthentication = errors.New("garmin: authentication failed")

// ErrMFARequired means the account needs a second factor, which this client
// does not support.
var ErrMFARequired = fmt.Errorf("%w: multi-factor authentication required", ErrAuthentication)

// IsAuthenticationError reports whether err is (or wraps) ErrAuthentication.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// classify turns a transport error or non-2xx status into a package error.
// 401 and 403 become ErrAuthentication, as does a rejected token refresh.
func classify(operation string, status int, body string, err error) error {
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return fmt.Errorf("%w: %s: token refresh rejected: %v", ErrAuthentication, operation, re)
		}
		return apierrors.NewNetworkError(operation, err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrAuthentication, apierrors.NewHTTPError(status, body, operation))
	}
	if status < 200 || status >= 300 {
		return apierrors.NewHTTPError(status, body, operation)
	}
	return nil
}
